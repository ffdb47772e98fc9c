// Package record defines the person record stored by the file cabinet and the
// conditions used to select records.
package record

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxNameBytes is the stored width of a first or last name in bytes.
const MaxNameBytes = 60

// DateLayout is the textual form of DateOfBirth used in logs, conditions and config.
const DateLayout = "2006-01-02"

// Record is a stored person. Identity is ID.
type Record struct {
	ID          int
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      rune
	Height      int16
	Weight      decimal.Decimal
}

// Data holds the fields of a record without its ID. It is the payload of
// create and update operations.
type Data struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      rune
	Height      int16
	Weight      decimal.Decimal
}

// Data returns the record's fields without the ID.
func (r Record) Data() Data {
	return Data{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: r.DateOfBirth,
		Gender:      r.Gender,
		Height:      r.Height,
		Weight:      r.Weight,
	}
}

// WithID builds a full record from d and id.
func (d Data) WithID(id int) Record {
	return Record{
		ID:          id,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		DateOfBirth: d.DateOfBirth,
		Gender:      d.Gender,
		Height:      d.Height,
		Weight:      d.Weight,
	}
}

// Date returns a UTC midnight time for the given calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (r Record) String() string {
	return fmt.Sprintf("#%d %s %s %s %c %d %s",
		r.ID, r.FirstName, r.LastName, r.DateOfBirth.Format(DateLayout), r.Gender, r.Height, r.Weight.String())
}
