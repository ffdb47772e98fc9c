package validate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/filecabinet/filecabinet/internal/record"
)

// Profile names accepted by ProfileRules.
const (
	ProfileDefault = "default"
	ProfileCustom  = "custom"
)

// Length bounds a name in characters.
type Length struct {
	Min, Max int
}

// DateRange bounds a date of birth. A zero To means today.
type DateRange struct {
	From, To time.Time
}

type HeightRange struct {
	Min, Max int16
}

type WeightRange struct {
	Min, Max decimal.Decimal
}

// Rules configures the field validators built by New.
type Rules struct {
	FirstName   Length
	LastName    Length
	DateOfBirth DateRange
	Genders     string
	Height      HeightRange
	Weight      WeightRange
}

// DefaultRules returns the rules of the default profile.
func DefaultRules() Rules {
	return Rules{
		FirstName:   Length{Min: 2, Max: 60},
		LastName:    Length{Min: 2, Max: 60},
		DateOfBirth: DateRange{From: record.Date(1950, time.January, 1)},
		Genders:     "mf",
		Height:      HeightRange{Min: 50, Max: 250},
		Weight:      WeightRange{Min: decimal.NewFromInt(2), Max: decimal.NewFromInt(500)},
	}
}

// CustomRules returns the more permissive rules of the custom profile.
func CustomRules() Rules {
	return Rules{
		FirstName:   Length{Min: 1, Max: 60},
		LastName:    Length{Min: 1, Max: 60},
		DateOfBirth: DateRange{From: record.Date(1900, time.January, 1)},
		Genders:     "mfx",
		Height:      HeightRange{Min: 30, Max: 300},
		Weight:      WeightRange{Min: decimal.NewFromInt(1), Max: decimal.NewFromInt(700)},
	}
}

// ProfileRules returns the rules for a named profile.
func ProfileRules(name string) (Rules, error) {
	switch name {
	case ProfileDefault, "":
		return DefaultRules(), nil
	case ProfileCustom:
		return CustomRules(), nil
	default:
		return Rules{}, fmt.Errorf("validate: unknown profile %q", name)
	}
}
