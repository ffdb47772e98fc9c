// Package match evaluates record conditions.
//
// An empty condition list matches every record. With And, evaluation stops at
// the first condition that fails; with Or, at the first condition that holds.
// Names compare case-insensitively using Unicode case folding, every other
// field compares by exact equality.
package match

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/filecabinet/filecabinet/internal/record"
)

// Check reports whether every condition names a known field with a value of
// that field's type, and whether union is known.
func Check(conds []record.Condition, union record.Union) error {
	if union != record.And && union != record.Or {
		return fmt.Errorf("%w: unknown union %s", record.ErrInvalidField, union)
	}
	for _, c := range conds {
		if err := checkCondition(c); err != nil {
			return err
		}
	}
	return nil
}

// IsMatch reports whether rec satisfies conds combined with union. Malformed
// conditions fail before any of them is evaluated.
func IsMatch(rec record.Record, conds []record.Condition, union record.Union) (bool, error) {
	if err := Check(conds, union); err != nil {
		return false, err
	}
	if len(conds) == 0 {
		return true, nil
	}

	m := matcher{fold: cases.Fold()}
	if union == record.And {
		for _, c := range conds {
			if !m.equal(rec, c) {
				return false, nil
			}
		}
		return true, nil
	}

	for _, c := range conds {
		if m.equal(rec, c) {
			return true, nil
		}
	}
	return false, nil
}

func checkCondition(c record.Condition) error {
	var ok bool
	switch c.Field {
	case record.FieldID:
		_, ok = c.Value.(int)
	case record.FieldFirstName, record.FieldLastName:
		_, ok = c.Value.(string)
	case record.FieldDateOfBirth:
		_, ok = c.Value.(time.Time)
	case record.FieldGender:
		_, ok = c.Value.(rune)
	case record.FieldHeight:
		_, ok = c.Value.(int16)
	case record.FieldWeight:
		_, ok = c.Value.(decimal.Decimal)
	default:
		return fmt.Errorf("%w: %s", record.ErrInvalidField, c.Field)
	}
	if !ok {
		return fmt.Errorf("%w: %s cannot hold %T", record.ErrInvalidField, c.Field, c.Value)
	}
	return nil
}

type matcher struct {
	fold cases.Caser
}

// equal assumes c passed checkCondition.
func (m *matcher) equal(rec record.Record, c record.Condition) bool {
	switch c.Field {
	case record.FieldID:
		return rec.ID == c.Value.(int)
	case record.FieldFirstName:
		return m.sameName(rec.FirstName, c.Value.(string))
	case record.FieldLastName:
		return m.sameName(rec.LastName, c.Value.(string))
	case record.FieldDateOfBirth:
		return sameDate(rec.DateOfBirth, c.Value.(time.Time))
	case record.FieldGender:
		return rec.Gender == c.Value.(rune)
	case record.FieldHeight:
		return rec.Height == c.Value.(int16)
	case record.FieldWeight:
		return rec.Weight.Equal(c.Value.(decimal.Decimal))
	}
	return false
}

func (m *matcher) sameName(a, b string) bool {
	return m.fold.String(a) == m.fold.String(b)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
