package match

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecabinet/filecabinet/internal/record"
)

func jane() record.Record {
	return record.Record{
		ID:          7,
		FirstName:   "Jane",
		LastName:    "Doe",
		DateOfBirth: record.Date(1990, time.January, 1),
		Gender:      'f',
		Height:      170,
		Weight:      decimal.RequireFromString("60.5"),
	}
}

func TestIsMatch_EmptyConditions(t *testing.T) {
	for _, union := range []record.Union{record.And, record.Or} {
		ok, err := IsMatch(jane(), nil, union)
		require.NoError(t, err)
		assert.True(t, ok, union.String())
	}
}

func TestIsMatch_EachField(t *testing.T) {
	tests := []struct {
		name string
		cond record.Condition
		want bool
	}{
		{"id", record.ByID(7), true},
		{"id mismatch", record.ByID(8), false},
		{"first name folded", record.ByFirstName("JANE"), true},
		{"first name mismatch", record.ByFirstName("John"), false},
		{"last name folded", record.ByLastName("doe"), true},
		{"date of birth", record.ByDateOfBirth(record.Date(1990, time.January, 1)), true},
		{"date of birth other zone", record.ByDateOfBirth(time.Date(1990, time.January, 1, 12, 0, 0, 0, time.Local)), true},
		{"date of birth mismatch", record.ByDateOfBirth(record.Date(1990, time.January, 2)), false},
		{"gender", record.ByGender('f'), true},
		{"gender is case sensitive", record.ByGender('F'), false},
		{"height", record.ByHeight(170), true},
		{"weight numeric equality", record.ByWeight(decimal.RequireFromString("60.50")), true},
		{"weight mismatch", record.ByWeight(decimal.RequireFromString("60")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := IsMatch(jane(), []record.Condition{tt.cond}, record.And)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestIsMatch_ContradictoryAnd(t *testing.T) {
	conds := []record.Condition{record.ByHeight(170), record.ByHeight(180)}

	ok, err := IsMatch(jane(), conds, record.And)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsMatch(jane(), conds, record.Or)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsMatch_OrNoneMatch(t *testing.T) {
	conds := []record.Condition{record.ByHeight(150), record.ByFirstName("Ann")}
	ok, err := IsMatch(jane(), conds, record.Or)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsMatch_InvalidFieldAlwaysFails(t *testing.T) {
	// The bad condition sits after one that would short-circuit.
	bad := record.Condition{Field: record.Field(99), Value: 1}

	_, err := IsMatch(jane(), []record.Condition{record.ByID(7), bad}, record.Or)
	assert.ErrorIs(t, err, record.ErrInvalidField)

	_, err = IsMatch(jane(), []record.Condition{record.ByID(8), bad}, record.And)
	assert.ErrorIs(t, err, record.ErrInvalidField)
}

func TestIsMatch_MistypedValue(t *testing.T) {
	bad := record.Condition{Field: record.FieldHeight, Value: 170}
	_, err := IsMatch(jane(), []record.Condition{bad}, record.And)
	assert.ErrorIs(t, err, record.ErrInvalidField)
}

func TestCheck_UnknownUnion(t *testing.T) {
	err := Check(nil, record.Union(5))
	assert.ErrorIs(t, err, record.ErrInvalidField)
}
