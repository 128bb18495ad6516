package domain

import (
	"fmt"
	"strings"
)

type FoodType string

const (
	FoodTypeFruit     FoodType = "fruit"
	FoodTypeVegetable FoodType = "vegetable"
)

// FoodTypes lists every type in declaration order.
var FoodTypes = []FoodType{FoodTypeFruit, FoodTypeVegetable}

// MaxTypeLength bounds the stored type column.
const MaxTypeLength = len(FoodTypeVegetable)

const (
	// MaxNameLength bounds the stored name column, in characters.
	MaxNameLength = 255
	// MaxQuantityGrams is the largest value the quantity column holds.
	MaxQuantityGrams = 1<<31 - 1
)

// ParseFoodType accepts a type label case-insensitively ("Fruit", "fruit").
func ParseFoodType(s string) (FoodType, error) {
	t := FoodType(strings.ToLower(s))
	switch t {
	case FoodTypeFruit, FoodTypeVegetable:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t FoodType) String() string { return string(t) }

// Food is a stored inventory item. It is identified by (Name, Type) and its
// quantity is always held in grams.
type Food struct {
	name          string
	quantityGrams int64
	foodType      FoodType
}

func NewFood(name string, quantityGrams int64, foodType FoodType) (Food, error) {
	switch foodType {
	case FoodTypeFruit, FoodTypeVegetable:
	default:
		return Food{}, fmt.Errorf("%w: %q", ErrUnknownType, string(foodType))
	}
	if name == "" {
		return Food{}, fmt.Errorf("food name is empty")
	}
	if quantityGrams < 0 || quantityGrams > MaxQuantityGrams {
		return Food{}, fmt.Errorf("food quantity %d out of range", quantityGrams)
	}
	return Food{name: name, quantityGrams: quantityGrams, foodType: foodType}, nil
}

func (f Food) Name() string { return f.name }
func (f Food) QuantityGrams() int64 { return f.quantityGrams }
func (f Food) Type() FoodType { return f.foodType }
func (f Food) Key() FoodKey { return FoodKey{Name: f.name, Type: f.foodType} }
func (f Food) Quantity(u Unit) float64 { return FromGrams(f.quantityGrams, u) }

// FoodKey is the natural key of a Food.
type FoodKey struct {
	Name string
	Type FoodType
}
