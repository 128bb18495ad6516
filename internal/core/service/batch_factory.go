package service

import (
	"fmt"

	"github.com/rl1809/food-inventory/internal/core/domain"
	"github.com/rl1809/food-inventory/internal/core/validation"
)

// BatchResult holds either every constructed food or, per batch index, the
// violations that blocked the batch. Never both.
type BatchResult struct {
	Foods  []domain.Food
	Errors map[int][]validation.Violation
}

func (r BatchResult) Accepted() bool { return len(r.Errors) == 0 }

// BuildBatch validates every item and converts them to foods. One invalid item
// rejects the whole batch. The returned error is only set for internal defects
// (ErrUnknownType), never for user input.
func BuildBatch(items []validation.RawItem) (BatchResult, error) {
	errs := make(map[int][]validation.Violation)
	for i, item := range items {
		if vs := validation.Validate(item); len(vs) > 0 {
			errs[i] = vs
		}
	}
	if len(errs) > 0 {
		return BatchResult{Errors: errs}, nil
	}

	foods := make([]domain.Food, 0, len(items))
	for i, item := range items {
		food, err := newFood(item)
		if err != nil {
			return BatchResult{}, fmt.Errorf("build item %d: %w", i, err)
		}
		foods = append(foods, food)
	}
	return BatchResult{Foods: foods}, nil
}

func newFood(item validation.RawItem) (domain.Food, error) {
	foodType, err := domain.ParseFoodType(*item.Type)
	if err != nil {
		return domain.Food{}, fmt.Errorf("%w: %q", domain.ErrUnknownType, *item.Type)
	}
	unit, err := domain.ParseUnit(item.UnitOrDefault())
	if err != nil {
		return domain.Food{}, err
	}
	return domain.NewFood(*item.Name, domain.ToGrams(*item.Quantity, unit), foodType)
}
