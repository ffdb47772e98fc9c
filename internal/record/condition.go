package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrInvalidField is returned for a condition whose field is unknown or whose
// value does not have the field's type.
var ErrInvalidField = errors.New("record: invalid condition field")

// Field identifies one record field in a condition.
type Field int

const (
	FieldID Field = iota + 1
	FieldFirstName
	FieldLastName
	FieldDateOfBirth
	FieldGender
	FieldHeight
	FieldWeight
)

var fieldNames = map[Field]string{
	FieldID:          "id",
	FieldFirstName:   "firstname",
	FieldLastName:    "lastname",
	FieldDateOfBirth: "dateofbirth",
	FieldGender:      "gender",
	FieldHeight:      "height",
	FieldWeight:      "weight",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// ParseField resolves a field name, ignoring case.
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidField, name)
}

// Union combines a list of conditions.
type Union int

const (
	And Union = iota
	Or
)

func (u Union) String() string {
	switch u {
	case And:
		return "and"
	case Or:
		return "or"
	default:
		return fmt.Sprintf("union(%d)", int(u))
	}
}

// Condition pairs a field with a value of that field's type. Build conditions
// with the By* constructors so the value type always matches the field.
type Condition struct {
	Field Field
	Value any
}

func ByID(id int) Condition                 { return Condition{Field: FieldID, Value: id} }
func ByFirstName(name string) Condition     { return Condition{Field: FieldFirstName, Value: name} }
func ByLastName(name string) Condition      { return Condition{Field: FieldLastName, Value: name} }
func ByDateOfBirth(dob time.Time) Condition { return Condition{Field: FieldDateOfBirth, Value: dob} }
func ByGender(g rune) Condition             { return Condition{Field: FieldGender, Value: g} }
func ByHeight(h int16) Condition            { return Condition{Field: FieldHeight, Value: h} }
func ByWeight(w decimal.Decimal) Condition  { return Condition{Field: FieldWeight, Value: w} }

// ParseCondition builds a condition from a field name and its textual value.
func ParseCondition(field, value string) (Condition, error) {
	f, err := ParseField(field)
	if err != nil {
		return Condition{}, err
	}
	value = strings.TrimSpace(value)

	switch f {
	case FieldID:
		id, err := strconv.Atoi(value)
		if err != nil {
			return Condition{}, fmt.Errorf("record: parse id %q: %w", value, err)
		}
		return ByID(id), nil
	case FieldFirstName:
		return ByFirstName(value), nil
	case FieldLastName:
		return ByLastName(value), nil
	case FieldDateOfBirth:
		dob, err := time.Parse(DateLayout, value)
		if err != nil {
			return Condition{}, fmt.Errorf("record: parse date of birth %q: %w", value, err)
		}
		return ByDateOfBirth(dob), nil
	case FieldGender:
		if utf8.RuneCountInString(value) != 1 {
			return Condition{}, fmt.Errorf("record: gender must be a single character, got %q", value)
		}
		g, _ := utf8.DecodeRuneInString(value)
		return ByGender(g), nil
	case FieldHeight:
		h, err := strconv.ParseInt(value, 10, 16)
		if err != nil {
			return Condition{}, fmt.Errorf("record: parse height %q: %w", value, err)
		}
		return ByHeight(int16(h)), nil
	case FieldWeight:
		w, err := decimal.NewFromString(value)
		if err != nil {
			return Condition{}, fmt.Errorf("record: parse weight %q: %w", value, err)
		}
		return ByWeight(w), nil
	}
	return Condition{}, fmt.Errorf("%w: %s", ErrInvalidField, f)
}

// String renders the condition as field=value.
func (c Condition) String() string {
	switch v := c.Value.(type) {
	case time.Time:
		return c.Field.String() + "=" + v.Format(DateLayout)
	case rune:
		return c.Field.String() + "=" + string(v)
	case decimal.Decimal:
		return c.Field.String() + "=" + v.String()
	default:
		return fmt.Sprintf("%s=%v", c.Field, v)
	}
}
