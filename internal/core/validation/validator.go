// Package validation checks raw batch items before they become domain values.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rl1809/food-inventory/internal/core/domain"
)

type Code string

const (
	CodeEmptyField    Code = "EmptyField"
	CodeMissingField  Code = "MissingField"
	CodeNotPositive   Code = "NotPositive"
	CodeInvalidChoice Code = "InvalidChoice"
	CodeTooLarge      Code = "TooLarge"
	CodeTooLong       Code = "TooLong"
	CodeMalformed     Code = "MalformedRequest"
)

const (
	PropertyName     = "name"
	PropertyQuantity = "quantity"
	PropertyUnit     = "unit"
	PropertyType     = "type"
)

// Violation is a single field-level failure.
type Violation struct {
	Property string `json:"property"`
	Message  string `json:"message"`
	Code     Code   `json:"code"`
}

// RawItem is an unvalidated batch item. A nil Unit means grams.
type RawItem struct {
	Name     *string
	Quantity *float64
	Unit     *string
	Type     *string
}

// UnitOrDefault returns the item unit, or grams when none was given.
func (r RawItem) UnitOrDefault() string {
	if r.Unit == nil {
		return string(domain.UnitGram)
	}
	return *r.Unit
}

// Validate runs every rule against item and returns all violations in field
// order. An empty result means the item is valid.
func Validate(item RawItem) []Violation {
	var vs []Violation
	add := func(property, message string, code Code) {
		vs = append(vs, Violation{Property: property, Message: message, Code: code})
	}

	switch {
	case item.Name == nil || strings.TrimSpace(*item.Name) == "":
		add(PropertyName, "This value should not be blank.", CodeEmptyField)
	case utf8.RuneCountInString(*item.Name) > domain.MaxNameLength:
		add(PropertyName, fmt.Sprintf("This value is too long. It should have %d characters or less.", domain.MaxNameLength), CodeTooLong)
	}

	unit, unitErr := domain.ParseUnit(item.UnitOrDefault())

	switch {
	case item.Quantity == nil:
		add(PropertyQuantity, "This value should not be null.", CodeMissingField)
	case *item.Quantity <= 0:
		add(PropertyQuantity, "This value should be positive.", CodeNotPositive)
	case unitErr == nil && exceedsColumn(*item.Quantity, unit):
		add(PropertyQuantity, fmt.Sprintf("This value should be %d grams or less.", domain.MaxQuantityGrams), CodeTooLarge)
	case unitErr == nil && domain.ToGrams(*item.Quantity, unit) == 0:
		add(PropertyQuantity, "This value should be at least 1 gram.", CodeNotPositive)
	}

	if unitErr != nil {
		vs = append(vs, UnitViolation())
	}

	if item.Type == nil {
		vs = append(vs, TypeViolation())
	} else if _, err := domain.ParseFoodType(*item.Type); err != nil {
		vs = append(vs, TypeViolation())
	}

	return vs
}

// exceedsColumn decides on the stored gram count. The float comparison runs
// first so the int64 conversion in ToGrams cannot overflow.
func exceedsColumn(quantity float64, unit domain.Unit) bool {
	grams := quantity
	if unit == domain.UnitKilogram {
		grams *= domain.GramsPerKilogram
	}
	if grams >= domain.MaxQuantityGrams+1 {
		return true
	}
	return domain.ToGrams(quantity, unit) > domain.MaxQuantityGrams
}

func choiceMessage[T ~string](choices ...T) string {
	quoted := make([]string, len(choices))
	for i, c := range choices {
		quoted[i] = fmt.Sprintf("%q", string(c))
	}
	return "The value you selected is not a valid choice. Choose one of " + strings.Join(quoted, ", ") + "."
}

// TypeViolation is reported when a food type is not one of the known choices.
func TypeViolation() Violation {
	return Violation{Property: PropertyType, Message: choiceMessage(domain.FoodTypeFruit, domain.FoodTypeVegetable), Code: CodeInvalidChoice}
}

// UnitViolation is reported when a unit is not one of the known choices.
func UnitViolation() Violation {
	return Violation{Property: PropertyUnit, Message: choiceMessage(domain.UnitGram, domain.UnitKilogram), Code: CodeInvalidChoice}
}
