package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rl1809/food-inventory/internal/core/domain"
	"github.com/rl1809/food-inventory/internal/core/validation"
	"github.com/rl1809/food-inventory/internal/port"
)

var ErrEmptyName = errors.New("food name is empty")

// ListQuery is an unvalidated listing request. Unit defaults to grams.
type ListQuery struct {
	Type       string
	NameFilter string
	Unit       string
}

// FoodView is a food presented in the caller's unit.
type FoodView struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Type     string  `json:"type"`
}

type FoodService struct {
	repo   port.FoodRepository
	cache  port.ListCache
	logger *slog.Logger
}

// NewFoodService wires the service. cache may be nil to disable caching.
func NewFoodService(repo port.FoodRepository, cache port.ListCache, logger *slog.Logger) *FoodService {
	if cache == nil {
		cache = noCache{}
	}
	return &FoodService{repo: repo, cache: cache, logger: logger}
}

// List returns foods of q.Type whose name contains q.NameFilter, converted to q.Unit.
// Type and unit are checked before the store is touched.
func (s *FoodService) List(ctx context.Context, q ListQuery) ([]FoodView, error) {
	foodType, err := domain.ParseFoodType(q.Type)
	if err != nil {
		return nil, err
	}
	unitLabel := q.Unit
	if unitLabel == "" {
		unitLabel = string(domain.UnitGram)
	}
	unit, err := domain.ParseUnit(unitLabel)
	if err != nil {
		return nil, err
	}

	foods, err := s.lookup(ctx, foodType, q.NameFilter)
	if err != nil {
		s.logger.ErrorContext(ctx, "list foods failed",
			slog.String("type", foodType.String()), slog.Any("error", err))
		return nil, err
	}

	views := make([]FoodView, len(foods))
	for i, f := range foods {
		views[i] = FoodView{
			Name:     f.Name(),
			Quantity: f.Quantity(unit),
			Unit:     unit.String(),
			Type:     f.Type().String(),
		}
	}
	return views, nil
}

func (s *FoodService) lookup(ctx context.Context, foodType domain.FoodType, nameFilter string) ([]domain.Food, error) {
	gen, err := s.cache.Generation(ctx, foodType)
	if err != nil {
		s.logger.WarnContext(ctx, "cache generation unavailable", slog.Any("error", err))
		return s.repo.FindByType(ctx, foodType, nameFilter)
	}

	foods, hit, err := s.cache.Get(ctx, foodType, gen, nameFilter)
	if err != nil {
		s.logger.WarnContext(ctx, "cache read failed", slog.Any("error", err))
	}
	if hit {
		return foods, nil
	}

	foods, err = s.repo.FindByType(ctx, foodType, nameFilter)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, foodType, gen, nameFilter, foods); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", slog.Any("error", err))
	}
	return foods, nil
}

// AddBatch validates items and upserts them as one batch. A rejected batch is
// reported through the result with a nil error; nothing is written.
func (s *FoodService) AddBatch(ctx context.Context, items []validation.RawItem) (BatchResult, error) {
	result, err := BuildBatch(items)
	if err != nil {
		s.logger.ErrorContext(ctx, "batch construction defect", slog.Any("error", err))
		return BatchResult{}, err
	}
	if !result.Accepted() {
		s.logger.InfoContext(ctx, "batch rejected",
			slog.Int("items", len(items)), slog.Int("invalid_items", len(result.Errors)))
		return result, nil
	}
	if len(result.Foods) == 0 {
		return result, nil
	}

	if err := s.repo.UpsertBatch(ctx, result.Foods); err != nil {
		attrs := []any{slog.Int("items", len(result.Foods)), slog.Any("error", err)}
		var pe *domain.PersistenceError
		if errors.As(err, &pe) {
			attrs = append(attrs, slog.String("cause", string(pe.Cause)))
		}
		s.logger.ErrorContext(ctx, "batch upsert failed", attrs...)
		return BatchResult{}, err
	}

	s.invalidate(ctx, typesOf(result.Foods)...)
	s.logger.InfoContext(ctx, "batch upserted", slog.Int("items", len(result.Foods)))
	return result, nil
}

// Remove deletes one food by natural key. It returns false when nothing matched.
func (s *FoodService) Remove(ctx context.Context, name, typeLabel string) (bool, error) {
	foodType, err := domain.ParseFoodType(typeLabel)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(name) == "" {
		return false, ErrEmptyName
	}

	removed, err := s.repo.Remove(ctx, domain.FoodKey{Name: name, Type: foodType})
	if err != nil {
		s.logger.ErrorContext(ctx, "remove food failed", slog.String("name", name), slog.Any("error", err))
		return false, fmt.Errorf("remove food: %w", err)
	}
	if removed {
		s.invalidate(ctx, foodType)
	}
	return removed, nil
}

// Ping checks the backing store.
func (s *FoodService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *FoodService) invalidate(ctx context.Context, types ...domain.FoodType) {
	if err := s.cache.Invalidate(ctx, types...); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", slog.Any("error", err))
	}
}

func typesOf(foods []domain.Food) []domain.FoodType {
	var types []domain.FoodType
	seen := make(map[domain.FoodType]bool)
	for _, f := range foods {
		if !seen[f.Type()] {
			seen[f.Type()] = true
			types = append(types, f.Type())
		}
	}
	return types
}

type noCache struct{}

func (noCache) Generation(context.Context, domain.FoodType) (int64, error) { return 0, nil }

func (noCache) Get(context.Context, domain.FoodType, int64, string) ([]domain.Food, bool, error) {
	return nil, false, nil
}

func (noCache) Set(context.Context, domain.FoodType, int64, string, []domain.Food) error {
	return nil
}

func (noCache) Invalidate(context.Context, ...domain.FoodType) error { return nil }
