package port

import (
	"context"

	"github.com/rl1809/food-inventory/internal/core/domain"
)

type ListCache interface {
	// Generation returns the current cache generation of a food type
	Generation(ctx context.Context, foodType domain.FoodType) (int64, error)

	// Get returns cached foods for a listing made at generation gen
	Get(ctx context.Context, foodType domain.FoodType, gen int64, nameFilter string) ([]domain.Food, bool, error)

	// Set stores a listing under generation gen
	Set(ctx context.Context, foodType domain.FoodType, gen int64, nameFilter string, foods []domain.Food) error

	// Invalidate bumps the generation of each type so older listings are never read again
	Invalidate(ctx context.Context, foodTypes ...domain.FoodType) error
}
