package store

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/filecabinet/filecabinet/internal/idgen"
	"github.com/filecabinet/filecabinet/internal/match"
	"github.com/filecabinet/filecabinet/internal/record"
	"github.com/filecabinet/filecabinet/internal/snapshot"
)

// MemoryStore keeps active records in insertion order. Deleting a record
// removes it outright, so Stat never reports deleted records and Purge has
// nothing to reclaim. Find results are memoized until the next mutation.
type MemoryStore struct {
	records []record.Record
	cache   map[string][]record.Record
	alloc   *idgen.Allocator
	opts    Options
}

var _ Store = (*MemoryStore)(nil)

// NewMemory creates an empty memory store.
func NewMemory(opts Options) *MemoryStore {
	return &MemoryStore{
		cache: make(map[string][]record.Record),
		alloc: idgen.New(),
		opts:  opts.withDefaults(BackendMemory),
	}
}

func (s *MemoryStore) Create(d record.Data) (id int, err error) {
	defer func() { observe(BackendMemory, "create", err) }()

	if err := s.opts.Validator.Validate(d); err != nil {
		return 0, err
	}
	id = s.alloc.Next()
	for s.indexOf(id) >= 0 {
		id = s.alloc.Next()
	}
	s.records = append(s.records, d.WithID(id))
	s.invalidate()

	s.opts.Logger.Debug("record created", zap.Int("id", id))
	return id, nil
}

func (s *MemoryStore) Insert(r record.Record) (err error) {
	defer func() { observe(BackendMemory, "insert", err) }()

	if err := s.opts.Validator.Validate(r.Data()); err != nil {
		return err
	}
	if s.indexOf(r.ID) >= 0 {
		return fmt.Errorf("%w: %d", ErrDuplicateID, r.ID)
	}
	s.alloc.Skip(r.ID)
	s.records = append(s.records, r)
	s.invalidate()

	s.opts.Logger.Debug("record inserted", zap.Int("id", r.ID))
	return nil
}

func (s *MemoryStore) Update(id int, d record.Data) (err error) {
	defer func() { observe(BackendMemory, "update", err) }()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := s.opts.Validator.Validate(d); err != nil {
		return err
	}
	s.records[i] = d.WithID(id)
	s.invalidate()

	s.opts.Logger.Debug("record updated", zap.Int("id", id))
	return nil
}

func (s *MemoryStore) Delete(id int) (err error) {
	defer func() { observe(BackendMemory, "delete", err) }()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	s.records = slices.Delete(s.records, i, i+1)
	s.invalidate()

	s.opts.Logger.Debug("record deleted", zap.Int("id", id))
	return nil
}

func (s *MemoryStore) Find(conds []record.Condition, union record.Union) (found []record.Record, err error) {
	timer := prometheus.NewTimer(findDuration.WithLabelValues(BackendMemory))
	defer func() {
		timer.ObserveDuration()
		observe(BackendMemory, "find", err)
	}()

	if err := match.Check(conds, union); err != nil {
		return nil, err
	}

	key := signature(conds, union)
	if cached, ok := s.cache[key]; ok {
		findCacheTotal.WithLabelValues("hit").Inc()
		return slices.Clone(cached), nil
	}
	findCacheTotal.WithLabelValues("miss").Inc()

	for _, r := range s.records {
		ok, err := match.IsMatch(r, conds, union)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, r)
		}
	}
	s.cache[key] = found
	return slices.Clone(found), nil
}

func (s *MemoryStore) Exists(id int) (bool, error) {
	return s.indexOf(id) >= 0, nil
}

func (s *MemoryStore) Stat() (Stat, error) {
	return Stat{Active: len(s.records)}, nil
}

// Purge is a no-op: deleted records are already gone.
func (s *MemoryStore) Purge() (int, error) {
	observe(BackendMemory, "purge", nil)
	return 0, nil
}

func (s *MemoryStore) MakeSnapshot() (*snapshot.Snapshot, error) {
	observe(BackendMemory, "snapshot", nil)
	return snapshot.New(s.records), nil
}

func (s *MemoryStore) Restore(snap *snapshot.Snapshot) (res RestoreResult, err error) {
	defer func() { observe(BackendMemory, "restore", err) }()
	return restore(s, s.opts.Validator, s.alloc, snap, s.opts.Logger)
}

// Close drops all records.
func (s *MemoryStore) Close() error {
	s.records = nil
	s.invalidate()
	return nil
}

func (s *MemoryStore) indexOf(id int) int {
	return slices.IndexFunc(s.records, func(r record.Record) bool { return r.ID == id })
}

func (s *MemoryStore) invalidate() {
	clear(s.cache)
}

// signature identifies a query by its union and its conditions in order.
func signature(conds []record.Condition, union record.Union) string {
	var b strings.Builder
	b.WriteString(union.String())
	for _, c := range conds {
		b.WriteByte('|')
		// Runes are keyed by code point; invalid ones all print as U+FFFD.
		if g, ok := c.Value.(rune); ok {
			fmt.Fprintf(&b, "%s=%d", c.Field, g)
			continue
		}
		b.WriteString(strconv.Quote(c.String()))
	}
	return b.String()
}
