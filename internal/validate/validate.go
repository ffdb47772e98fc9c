// Package validate checks record field values before they are stored.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/filecabinet/filecabinet/internal/record"
)

// ErrValidation is wrapped by every *Error.
var ErrValidation = errors.New("validate: invalid record")

// Error describes the first field of a record that failed validation.
type Error struct {
	Field  record.Field
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrValidation
}

func invalid(f record.Field, format string, args ...any) error {
	return &Error{Field: f, Reason: fmt.Sprintf(format, args...)}
}

// Validator accepts or rejects the field values of a record. It has no side effects.
type Validator interface {
	Validate(d record.Data) error
}

// Func adapts a plain function to Validator.
type Func func(d record.Data) error

func (f Func) Validate(d record.Data) error { return f(d) }

// Chain runs validators in order and returns the first error.
type Chain []Validator

func (c Chain) Validate(d record.Data) error {
	for _, v := range c {
		if err := v.Validate(d); err != nil {
			return err
		}
	}
	return nil
}

// New builds the validator chain for r.
func New(r Rules) Validator {
	return Chain{
		nameValidator{field: record.FieldFirstName, limits: r.FirstName},
		nameValidator{field: record.FieldLastName, limits: r.LastName},
		dateValidator{limits: r.DateOfBirth},
		genderValidator{allowed: r.Genders},
		heightValidator{limits: r.Height},
		weightValidator{limits: r.Weight},
	}
}

type nameValidator struct {
	field  record.Field
	limits Length
}

func (v nameValidator) Validate(d record.Data) error {
	name := d.FirstName
	if v.field == record.FieldLastName {
		name = d.LastName
	}
	if strings.TrimSpace(name) == "" {
		return invalid(v.field, "must not be empty")
	}
	if strings.ContainsRune(name, 0) {
		return invalid(v.field, "must not contain NUL")
	}
	n := utf8.RuneCountInString(name)
	if n < v.limits.Min || n > v.limits.Max {
		return invalid(v.field, "must be %d to %d characters long, got %d", v.limits.Min, v.limits.Max, n)
	}
	if len(name) > record.MaxNameBytes {
		return invalid(v.field, "must fit in %d bytes, got %d", record.MaxNameBytes, len(name))
	}
	return nil
}

type dateValidator struct {
	limits DateRange
}

func (v dateValidator) Validate(d record.Data) error {
	to := v.limits.To
	if to.IsZero() {
		now := time.Now().UTC()
		to = record.Date(now.Year(), now.Month(), now.Day())
	}
	dob := d.DateOfBirth
	if dob.IsZero() {
		return invalid(record.FieldDateOfBirth, "must be set")
	}
	if dob.Before(v.limits.From) || dob.After(to) {
		return invalid(record.FieldDateOfBirth, "must be between %s and %s, got %s",
			v.limits.From.Format(record.DateLayout), to.Format(record.DateLayout), dob.Format(record.DateLayout))
	}
	return nil
}

type genderValidator struct {
	allowed string
}

func (v genderValidator) Validate(d record.Data) error {
	if d.Gender < 0 || d.Gender > unicode.MaxASCII {
		return invalid(record.FieldGender, "must be an ASCII character, got %q", d.Gender)
	}
	if !strings.ContainsRune(v.allowed, d.Gender) {
		return invalid(record.FieldGender, "must be one of %q, got %q", v.allowed, d.Gender)
	}
	return nil
}

type heightValidator struct {
	limits HeightRange
}

func (v heightValidator) Validate(d record.Data) error {
	if d.Height < v.limits.Min || d.Height > v.limits.Max {
		return invalid(record.FieldHeight, "must be between %d and %d, got %d", v.limits.Min, v.limits.Max, d.Height)
	}
	return nil
}

type weightValidator struct {
	limits WeightRange
}

func (v weightValidator) Validate(d record.Data) error {
	if d.Weight.LessThan(v.limits.Min) || d.Weight.GreaterThan(v.limits.Max) {
		return invalid(record.FieldWeight, "must be between %s and %s, got %s",
			v.limits.Min, v.limits.Max, d.Weight)
	}
	return nil
}

