package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/food-inventory/internal/core/domain"
)

func getRedisAdapter(t *testing.T) (*RedisAdapter, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisAdapter(client, time.Minute), m
}

func TestGeneration_StartsAtZero(t *testing.T) {
	adapter, _ := getRedisAdapter(t)

	gen, err := adapter.Generation(context.Background(), domain.FoodTypeFruit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen != 0 {
		t.Errorf("expected generation 0, got %d", gen)
	}
}

func TestListing_RoundTrip(t *testing.T) {
	adapter, m := getRedisAdapter(t)
	ctx := context.Background()

	apple := mustFood(t, "Apple", 2000, domain.FoodTypeFruit)
	if err := adapter.Set(ctx, domain.FoodTypeFruit, 0, "app", []domain.Food{apple}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	foods, hit, err := adapter.Get(ctx, domain.FoodTypeFruit, 0, "app")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v", hit, err)
	}
	if len(foods) != 1 || foods[0] != apple {
		t.Errorf("unexpected listing: %v", names(foods))
	}

	// Filters are cached separately
	if _, hit, _ := adapter.Get(ctx, domain.FoodTypeFruit, 0, ""); hit {
		t.Error("unfiltered listing should miss")
	}

	if ttl := m.TTL(listKey(domain.FoodTypeFruit, 0, "app")); ttl != time.Minute {
		t.Errorf("expected ttl 1m, got %v", ttl)
	}
}

func TestListing_EmptyIsCached(t *testing.T) {
	adapter, _ := getRedisAdapter(t)
	ctx := context.Background()

	if err := adapter.Set(ctx, domain.FoodTypeVegetable, 0, "xyz", []domain.Food{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	foods, hit, err := adapter.Get(ctx, domain.FoodTypeVegetable, 0, "xyz")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v", hit, err)
	}
	if foods == nil || len(foods) != 0 {
		t.Errorf("expected empty non-nil listing, got %v", foods)
	}
}

func TestInvalidate_HidesOlderListings(t *testing.T) {
	adapter, _ := getRedisAdapter(t)
	ctx := context.Background()

	apple := mustFood(t, "Apple", 1, domain.FoodTypeFruit)
	adapter.Set(ctx, domain.FoodTypeFruit, 0, "", []domain.Food{apple})

	if err := adapter.Invalidate(ctx, domain.FoodTypeFruit); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	gen, _ := adapter.Generation(ctx, domain.FoodTypeFruit)
	if gen != 1 {
		t.Fatalf("expected generation 1, got %d", gen)
	}
	if _, hit, _ := adapter.Get(ctx, domain.FoodTypeFruit, gen, ""); hit {
		t.Error("listing from generation 0 should not be visible")
	}

	// Other types are untouched
	vegGen, _ := adapter.Generation(ctx, domain.FoodTypeVegetable)
	if vegGen != 0 {
		t.Errorf("expected vegetable generation 0, got %d", vegGen)
	}
}

func TestGet_CorruptEntry(t *testing.T) {
	adapter, m := getRedisAdapter(t)

	m.Set(listKey(domain.FoodTypeFruit, 0, ""), "not msgpack")

	_, hit, err := adapter.Get(context.Background(), domain.FoodTypeFruit, 0, "")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if hit {
		t.Error("corrupt entry must not count as a hit")
	}
}

func TestRedisUnavailable(t *testing.T) {
	adapter, m := getRedisAdapter(t)
	m.Close()

	if _, err := adapter.Generation(context.Background(), domain.FoodTypeFruit); err == nil {
		t.Error("expected error when redis is down")
	}
}
