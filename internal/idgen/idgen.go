// Package idgen issues monotonically increasing record ids.
package idgen

// Allocator hands out ids starting at 1. It never issues an id that was
// previously issued or skipped past. The zero value is not usable; call New.
type Allocator struct {
	next int
}

// New returns an allocator whose first id is 1.
func New() *Allocator {
	return &Allocator{next: 1}
}

// Next returns the current id and advances the counter.
func (a *Allocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Skip moves the counter past id so later calls to Next never return it.
// Ids below the counter are ignored.
func (a *Allocator) Skip(id int) {
	if id+1 > a.next {
		a.next = id + 1
	}
}

// Peek returns the id the next call to Next will issue.
func (a *Allocator) Peek() int {
	return a.next
}
