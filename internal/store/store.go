// Package store implements the person record store on two interchangeable
// backends: MemoryStore keeps records in a slice, FileStore keeps them in a
// fixed-width binary log with tombstones and compaction.
//
// Stores are single-owner: operations run synchronously and must not be
// called from several goroutines at once.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/filecabinet/filecabinet/internal/binlog"
	"github.com/filecabinet/filecabinet/internal/record"
	"github.com/filecabinet/filecabinet/internal/snapshot"
	"github.com/filecabinet/filecabinet/internal/validate"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
)

var (
	// ErrNotFound indicates an update or delete of an id with no active record.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicateID indicates an insert of an id that already has an active record.
	ErrDuplicateID = errors.New("store: duplicate record id")
)

// Store is the contract shared by both backends.
type Store interface {
	// Create validates d, assigns a new id and stores the record.
	Create(d record.Data) (int, error)
	// Insert stores r under its own id, which must not be active.
	Insert(r record.Record) error
	// Update overwrites the active record with the given id.
	Update(id int, d record.Data) error
	// Delete removes the active record with the given id.
	Delete(id int) error
	// Find returns active records matching conds in the backend's natural order.
	Find(conds []record.Condition, union record.Union) ([]record.Record, error)
	// Exists reports whether id has an active record.
	Exists(id int) (bool, error)
	// Stat counts active and deleted records.
	Stat() (Stat, error)
	// Purge reclaims the space of deleted records and returns how many were dropped.
	Purge() (int, error)
	// MakeSnapshot copies all active records in natural order.
	MakeSnapshot() (*snapshot.Snapshot, error)
	// Restore applies every valid record of snap, updating ids that are
	// active and inserting the rest. Invalid records are collected in the
	// result instead of stopping the restore.
	Restore(snap *snapshot.Snapshot) (RestoreResult, error)
	// Close releases the store's resources.
	Close() error
}

// Stat is the record count of a store.
type Stat struct {
	Active  int
	Deleted int
}

// Options configures a store.
type Options struct {
	// Validator checks every record before it is written. Nil means the
	// default validation rules.
	Validator validate.Validator
	// Logger receives operation logs. Nil disables logging.
	Logger *zap.Logger
	// SyncWrites fsyncs the file store after every mutation.
	SyncWrites bool
}

func (o Options) withDefaults(backend string) Options {
	if o.Validator == nil {
		o.Validator = validate.New(validate.DefaultRules())
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	o.Logger = o.Logger.With(zap.String("backend", backend))
	return o
}

// RestoreResult reports the outcome of Restore. A restore is fully applied
// when Failures is empty.
type RestoreResult struct {
	Applied  int
	Failures map[int]string
}

// Err returns an *ImportError describing the failures, or nil.
func (r RestoreResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	failures := make(map[int]string, len(r.Failures))
	for id, msg := range r.Failures {
		failures[id] = msg
	}
	return &ImportError{Failures: failures}
}

// FailedIDs returns the ids of rejected records in ascending order.
func (r RestoreResult) FailedIDs() []int {
	return sortedIDs(r.Failures)
}

func sortedIDs(failures map[int]string) []int {
	ids := make([]int, 0, len(failures))
	for id := range failures {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ImportError carries every record that a restore rejected, keyed by id.
type ImportError struct {
	Failures map[int]string
}

func (e *ImportError) Error() string {
	ids := sortedIDs(e.Failures)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d: %s", id, e.Failures[id])
	}
	return fmt.Sprintf("store: %d records not imported: %s", len(ids), strings.Join(parts, "; "))
}

// isRecordError reports whether err concerns the record's contents rather
// than the storage underneath.
func isRecordError(err error) bool {
	return errors.Is(err, validate.ErrValidation) ||
		errors.Is(err, binlog.ErrFieldOverflow) ||
		errors.Is(err, ErrDuplicateID)
}
