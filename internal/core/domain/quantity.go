package domain

import (
	"fmt"
	"math"
)

type Unit string

const (
	UnitGram     Unit = "g"
	UnitKilogram Unit = "kg"
)

const GramsPerKilogram = 1000

// truncTolerance absorbs float representation error (4.35*1000 = 4349.999...)
// before truncating toward zero.
const truncTolerance = 1e-6

func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitGram, UnitKilogram:
		return Unit(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
}

func (u Unit) String() string { return string(u) }

// ToGrams converts quantity in unit to whole grams, truncating toward zero.
func ToGrams(quantity float64, unit Unit) int64 {
	v := quantity
	if unit == UnitKilogram {
		v = quantity * GramsPerKilogram
	}
	if v >= 0 {
		return int64(math.Floor(v + truncTolerance))
	}
	return int64(math.Ceil(v - truncTolerance))
}

// FromGrams converts a stored gram count to unit.
func FromGrams(grams int64, unit Unit) float64 {
	if unit == UnitKilogram {
		return float64(grams) / GramsPerKilogram
	}
	return float64(grams)
}
