package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocator_StartsAtOne(t *testing.T) {
	a := New()
	assert.Equal(t, 1, a.Next())
	assert.Equal(t, 2, a.Next())
	assert.Equal(t, 3, a.Peek())
}

func TestAllocator_SkipAhead(t *testing.T) {
	a := New()
	a.Skip(100)
	assert.Equal(t, 101, a.Next())
	assert.Equal(t, 102, a.Next())
}

func TestAllocator_SkipBehindIsIgnored(t *testing.T) {
	a := New()
	for i := 0; i < 5; i++ {
		a.Next()
	}
	a.Skip(2)
	assert.Equal(t, 6, a.Next())
}

func TestAllocator_SkipCurrent(t *testing.T) {
	a := New()
	a.Skip(1)
	assert.Equal(t, 2, a.Next())
}

func TestAllocator_Independent(t *testing.T) {
	a, b := New(), New()
	a.Skip(50)
	assert.Equal(t, 51, a.Next())
	assert.Equal(t, 1, b.Next())
}
