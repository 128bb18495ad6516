package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/rl1809/food-inventory/internal/core/domain"
)

const (
	generationKeyPrefix = "food:gen:"
	listKeyPrefix       = "food:list:"
	defaultListTTL      = 5 * time.Minute
)

type cachedFood struct {
	Name  string `msgpack:"n"`
	Grams int64  `msgpack:"g"`
	Type  string `msgpack:"t"`
}

// RedisAdapter caches food listings. Each food type has a generation counter;
// listings are stored under the generation they were read at, so bumping the
// counter hides every older listing until it expires.
type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	if ttl <= 0 {
		ttl = defaultListTTL
	}
	return &RedisAdapter{client: client, ttl: ttl}
}

func (r *RedisAdapter) Generation(ctx context.Context, foodType domain.FoodType) (int64, error) {
	gen, err := r.client.Get(ctx, generationKeyPrefix+foodType.String()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get generation: %w", err)
	}
	return gen, nil
}

func (r *RedisAdapter) Get(ctx context.Context, foodType domain.FoodType, gen int64, nameFilter string) ([]domain.Food, bool, error) {
	data, err := r.client.Get(ctx, listKey(foodType, gen, nameFilter)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get listing: %w", err)
	}

	var cached []cachedFood
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("decode listing: %w", err)
	}
	foods := make([]domain.Food, 0, len(cached))
	for _, c := range cached {
		f, err := domain.NewFood(c.Name, c.Grams, domain.FoodType(c.Type))
		if err != nil {
			return nil, false, fmt.Errorf("decode listing: %w", err)
		}
		foods = append(foods, f)
	}
	return foods, true, nil
}

func (r *RedisAdapter) Set(ctx context.Context, foodType domain.FoodType, gen int64, nameFilter string, foods []domain.Food) error {
	cached := make([]cachedFood, len(foods))
	for i, f := range foods {
		cached[i] = cachedFood{Name: f.Name(), Grams: f.QuantityGrams(), Type: f.Type().String()}
	}
	data, err := msgpack.Marshal(cached)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	return r.client.Set(ctx, listKey(foodType, gen, nameFilter), data, r.ttl).Err()
}

func (r *RedisAdapter) Invalidate(ctx context.Context, foodTypes ...domain.FoodType) error {
	if len(foodTypes) == 0 {
		return nil
	}
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, t := range foodTypes {
			p.Incr(ctx, generationKeyPrefix+t.String())
		}
		return nil
	})
	return err
}

// listKey embeds the filter verbatim; an empty filter is the unfiltered listing.
func listKey(foodType domain.FoodType, gen int64, nameFilter string) string {
	return listKeyPrefix + foodType.String() + ":" + strconv.FormatInt(gen, 10) + ":" + nameFilter
}
