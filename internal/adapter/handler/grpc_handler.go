package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/food-inventory/internal/adapter/handler/pb"
	"github.com/rl1809/food-inventory/internal/core/domain"
	"github.com/rl1809/food-inventory/internal/core/service"
	"github.com/rl1809/food-inventory/internal/core/validation"
)

type GRPCHandler struct {
	foodService *service.FoodService
}

var _ pb.FoodServiceServer = (*GRPCHandler)(nil)

func NewGRPCHandler(foodService *service.FoodService) *GRPCHandler {
	return &GRPCHandler{foodService: foodService}
}

func (h *GRPCHandler) List(ctx context.Context, req *pb.ListRequest) (*pb.ListResponse, error) {
	foods, err := h.foodService.List(ctx, service.ListQuery{
		Type:       req.Type,
		NameFilter: req.NameFilter,
		Unit:       req.Unit,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidType) || errors.Is(err, domain.ErrInvalidUnit) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, "internal error")
	}

	items := make([]pb.FoodItem, len(foods))
	for i, f := range foods {
		items[i] = pb.FoodItem{Name: f.Name, Quantity: f.Quantity, Unit: f.Unit, Type: f.Type}
	}
	return &pb.ListResponse{Items: items}, nil
}

func (h *GRPCHandler) Add(ctx context.Context, req *pb.AddRequest) (*pb.AddResponse, error) {
	items, err := validation.ParseBatch(req.Items)
	if err != nil {
		var pe *validation.ParseError
		if errors.As(err, &pe) {
			if v := pe.Violation(); v.Property != "" {
				return nil, status.Errorf(codes.InvalidArgument, "%s: %s", v.Property, v.Message)
			}
			return nil, status.Error(codes.InvalidArgument, pe.Message)
		}
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}

	result, err := h.foodService.AddBatch(ctx, items)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to save food")
	}
	if !result.Accepted() {
		errs := make(map[int][]pb.Violation, len(result.Errors))
		for idx, vs := range result.Errors {
			for _, v := range vs {
				errs[idx] = append(errs[idx], pb.Violation{Property: v.Property, Message: v.Message, Code: string(v.Code)})
			}
		}
		return &pb.AddResponse{Status: "failed", Errors: errs}, nil
	}

	return &pb.AddResponse{Status: "success"}, nil
}

func (h *GRPCHandler) Remove(ctx context.Context, req *pb.RemoveRequest) (*pb.RemoveResponse, error) {
	removed, err := h.foodService.Remove(ctx, req.Name, req.Type)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidType) || errors.Is(err, service.ErrEmptyName) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, "internal error")
	}
	if !removed {
		return nil, status.Error(codes.NotFound, "food not found")
	}
	return &pb.RemoveResponse{Removed: true}, nil
}
