package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rl1809/food-inventory/internal/core/domain"
	"github.com/rl1809/food-inventory/internal/core/service"
	"github.com/rl1809/food-inventory/internal/core/validation"
)

const (
	maxBatchBodyBytes = 4 << 20
	healthTimeout     = 2 * time.Second
)

type HTTPHandler struct {
	foodService *service.FoodService
	logger      *slog.Logger
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorsResponse struct {
	Errors []validation.Violation `json:"errors"`
}

type BatchErrorsResponse struct {
	Errors map[int][]validation.Violation `json:"errors"`
}

func NewHTTPHandler(foodService *service.FoodService, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{foodService: foodService, logger: logger}
}

// Routes returns the HTTP API wrapped in request ID and access log middleware.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/api/food/list", h.List)
	mux.HandleFunc("/api/food/add", h.Add)
	mux.HandleFunc("/api/food", h.Remove)
	return withRequestID(h.logger, mux)
}

func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	filter := q.Get("filter")
	if filter == "" {
		filter = q.Get("name")
	}

	foods, err := h.foodService.List(r.Context(), service.ListQuery{
		Type:       q.Get("type"),
		NameFilter: filter,
		Unit:       q.Get("unit"),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidType):
			writeJSON(w, http.StatusBadRequest, ErrorsResponse{Errors: []validation.Violation{validation.TypeViolation()}})
		case errors.Is(err, domain.ErrInvalidUnit):
			writeJSON(w, http.StatusBadRequest, ErrorsResponse{Errors: []validation.Violation{validation.UnitViolation()}})
		default:
			writeJSON(w, http.StatusInternalServerError, StatusResponse{Status: "failed", Message: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, foods)
}

func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBatchBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, StatusResponse{Status: "failed", Message: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, StatusResponse{Status: "failed", Message: "invalid request body"})
		return
	}

	items, err := validation.ParseBatch(body)
	if err != nil {
		var pe *validation.ParseError
		if errors.As(err, &pe) {
			writeJSON(w, http.StatusBadRequest, ErrorsResponse{Errors: []validation.Violation{pe.Violation()}})
			return
		}
		writeJSON(w, http.StatusBadRequest, StatusResponse{Status: "failed", Message: "invalid request body"})
		return
	}

	result, err := h.foodService.AddBatch(r.Context(), items)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, StatusResponse{Status: "failed", Message: "unable to save food"})
		return
	}
	if !result.Accepted() {
		writeJSON(w, http.StatusBadRequest, BatchErrorsResponse{Errors: result.Errors})
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "success"})
}

func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	removed, err := h.foodService.Remove(r.Context(), q.Get("name"), q.Get("type"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidType):
			writeJSON(w, http.StatusBadRequest, ErrorsResponse{Errors: []validation.Violation{validation.TypeViolation()}})
		case errors.Is(err, service.ErrEmptyName):
			writeJSON(w, http.StatusBadRequest, ErrorsResponse{Errors: []validation.Violation{{
				Property: validation.PropertyName,
				Message:  "This value should not be blank.",
				Code:     validation.CodeEmptyField,
			}}})
		default:
			writeJSON(w, http.StatusInternalServerError, StatusResponse{Status: "failed", Message: "internal error"})
		}
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, StatusResponse{Status: "failed", Message: "food not found"})
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "success"})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.foodService.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "health check failed", slog.Any("error", err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
