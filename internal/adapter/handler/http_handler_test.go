package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/food-inventory/internal/adapter/storage"
	"github.com/rl1809/food-inventory/internal/core/service"
	"github.com/rl1809/food-inventory/internal/core/validation"
	"github.com/rl1809/food-inventory/internal/logging"
)

func newTestService(t *testing.T) (*service.FoodService, *storage.SQLAdapter) {
	t.Helper()
	ctx := context.Background()
	store, err := storage.Open(ctx, storage.Options{Driver: "sqlite", DSN: ":memory:"}, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { store.Close() })
	return service.NewFoodService(store, nil, logging.Discard()), store
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newTestService(t)
	return NewHTTPHandler(svc, logging.Discard()).Routes()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func listFoods(t *testing.T, h http.Handler, target string) []service.FoodView {
	t.Helper()
	rec := do(t, h, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var foods []service.FoodView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &foods))
	return foods
}

func TestAdd_ThenListInKilograms(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/food/add",
		`[{"name":"Apple","quantity":2,"unit":"kg","type":"Fruit"},{"name":"Carrot","quantity":500,"type":"vegetable"}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())

	foods := listFoods(t, h, "/api/food/list?type=Fruit&unit=kg")
	require.Len(t, foods, 1)
	assert.Equal(t, service.FoodView{Name: "Apple", Quantity: 2, Unit: "kg", Type: "fruit"}, foods[0])

	foods = listFoods(t, h, "/api/food/list?type=vegetable")
	require.Len(t, foods, 1)
	assert.Equal(t, 500.0, foods[0].Quantity)
	assert.Equal(t, "g", foods[0].Unit)
}

func TestAdd_UpsertOverwrites(t *testing.T) {
	h := newTestRouter(t)

	for _, q := range []string{"5000", "3000"} {
		rec := do(t, h, http.MethodPost, "/api/food/add", `[{"name":"Apple","quantity":`+q+`,"unit":"g","type":"Fruit"}]`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	foods := listFoods(t, h, "/api/food/list?type=Fruit")
	require.Len(t, foods, 1)
	assert.Equal(t, 3000.0, foods[0].Quantity)
}

func TestAdd_InvalidItemRejectsBatch(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/food/add",
		`[{"name":"Apple","quantity":1,"type":"Fruit"},{"name":"Steak","quantity":1,"type":"meat"}]`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors map[string][]validation.Violation `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Errors, "1")
	assert.NotContains(t, resp.Errors, "0")
	assert.Equal(t, validation.PropertyType, resp.Errors["1"][0].Property)
	assert.Equal(t, validation.CodeInvalidChoice, resp.Errors["1"][0].Code)

	// Nothing from the batch was written
	assert.Empty(t, listFoods(t, h, "/api/food/list?type=fruit"))
}

func TestAdd_ReportsEveryViolation(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/food/add", `[{"name":"","quantity":0,"unit":"lb","type":"x"}]`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors map[string][]validation.Violation `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	var properties []string
	for _, v := range resp.Errors["0"] {
		properties = append(properties, v.Property)
	}
	assert.Equal(t, []string{"name", "quantity", "unit", "type"}, properties)
}

func TestAdd_MalformedBody(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name     string
		body     string
		property string
	}{
		{"not json", `{`, ""},
		{"object instead of array", `{"name":"Apple"}`, ""},
		{"quantity as string", `[{"name":"Apple","quantity":"many","type":"fruit"}]`, "[0].quantity"},
		{"unknown field", `[{"name":"Apple","quantity":1,"type":"fruit","color":"red"}]`, "[0].color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/food/add", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorsResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, validation.CodeMalformed, resp.Errors[0].Code)
			if tt.property != "" {
				assert.Equal(t, tt.property, resp.Errors[0].Property)
			}
		})
	}
}

func TestAdd_BodyTooLarge(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/food/add", "["+strings.Repeat(" ", maxBatchBodyBytes)+"]")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAdd_EmptyBatch(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/food/add", `[]`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestList_Filter(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/food/add",
		`[{"name":"Apple","quantity":1,"type":"fruit"},{"name":"Banana","quantity":1,"type":"fruit"}]`)
	require.Equal(t, http.StatusOK, rec.Code)

	foods := listFoods(t, h, "/api/food/list?type=fruit&filter=app")
	require.Len(t, foods, 1)
	assert.Equal(t, "Apple", foods[0].Name)

	foods = listFoods(t, h, "/api/food/list?type=fruit&name=BAN")
	require.Len(t, foods, 1)
	assert.Equal(t, "Banana", foods[0].Name)

	rec = do(t, h, http.MethodGet, "/api/food/list?type=fruit&filter=xyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestList_InvalidParameters(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		target   string
		property string
	}{
		{"/api/food/list?type=meat", validation.PropertyType},
		{"/api/food/list", validation.PropertyType},
		{"/api/food/list?type=fruit&unit=lb", validation.PropertyUnit},
	}
	for _, tt := range tests {
		rec := do(t, h, http.MethodGet, tt.target, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, tt.target)

		var resp ErrorsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, tt.property, resp.Errors[0].Property, tt.target)
		assert.Equal(t, validation.CodeInvalidChoice, resp.Errors[0].Code)
	}
}

func TestList_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/food/list?type=fruit", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRemove(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/food/add", `[{"name":"Apple","quantity":1,"type":"fruit"}]`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/food?name=Apple&type=fruit", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/food?name=Apple&type=fruit", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/food?name=&type=fruit", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/food?name=Apple&type=meat", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestID(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestHealthCheck(t *testing.T) {
	svc, store := newTestService(t)
	h := NewHTTPHandler(svc, logging.Discard()).Routes()

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	store.Close()
	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
