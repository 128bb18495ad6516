package port

import (
	"context"

	"github.com/rl1809/food-inventory/internal/core/domain"
)

type FoodRepository interface {
	// UpsertBatch inserts or updates every food in one transaction, keyed by (name, type)
	UpsertBatch(ctx context.Context, foods []domain.Food) error

	// FindByType returns foods of the given type whose name contains nameFilter, case-insensitively.
	// An empty filter matches every name.
	FindByType(ctx context.Context, foodType domain.FoodType, nameFilter string) ([]domain.Food, error)

	// Remove deletes the food with the given natural key, returns false if none existed
	Remove(ctx context.Context, key domain.FoodKey) (bool, error)

	// Ping checks the store is reachable
	Ping(ctx context.Context) error
}
