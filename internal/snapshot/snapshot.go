// Package snapshot holds point-in-time copies of a store's active records and
// persists them to a directory so they can be restored later.
package snapshot

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/filecabinet/filecabinet/internal/record"
)

const fileExt = ".snap"

// ErrInvalidID indicates a snapshot id that is not a UUID.
var ErrInvalidID = errors.New("snapshot: invalid id")

// Snapshot is an immutable ordered list of records. The order is the natural
// order of the store it was taken from.
type Snapshot struct {
	id        string
	createdAt time.Time
	records   []record.Record
}

// New copies records into a new snapshot with a fresh id.
func New(records []record.Record) *Snapshot {
	return &Snapshot{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		records:   append([]record.Record(nil), records...),
	}
}

// ID returns the snapshot id.
func (s *Snapshot) ID() string { return s.id }

// CreatedAt returns when the snapshot was taken.
func (s *Snapshot) CreatedAt() time.Time { return s.createdAt }

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.records) }

// At returns record i.
func (s *Snapshot) At(i int) record.Record { return s.records[i] }

// Records returns a copy of the records in order.
func (s *Snapshot) Records() []record.Record {
	return append([]record.Record(nil), s.records...)
}

// file is the gob form of a snapshot on disk.
type file struct {
	ID        string
	CreatedAt time.Time
	Records   []record.Record
}

// Meta describes a snapshot without loading the full data.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
	FilePath  string    `json:"file_path"`
}

// Manager handles snapshot CRUD backed by a directory on disk.
type Manager struct {
	dir string
}

// NewManager creates a Manager that stores snapshots in dir.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: mkdir %s: %w", dir, err)
	}
	return &Manager{dir: dir}, nil
}

// Dir returns the directory snapshots are written to.
func (m *Manager) Dir() string { return m.dir }

// Save serialises snap to disk and returns its metadata.
func (m *Manager) Save(snap *Snapshot) (Meta, error) {
	path := m.path(snap.id)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return Meta{}, fmt.Errorf("snapshot: create file: %w", err)
	}

	enc := gob.NewEncoder(f)
	if err := enc.Encode(file{ID: snap.id, CreatedAt: snap.createdAt, Records: snap.records}); err != nil {
		f.Close()
		os.Remove(tmp)
		return Meta{}, fmt.Errorf("snapshot: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return Meta{}, fmt.Errorf("snapshot: close: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return Meta{}, fmt.Errorf("snapshot: rename: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Meta{}, fmt.Errorf("snapshot: stat: %w", err)
	}
	return Meta{
		ID:        snap.id,
		CreatedAt: snap.createdAt,
		SizeBytes: info.Size(),
		FilePath:  path,
	}, nil
}

// List returns metadata for all snapshots, sorted newest first.
func (m *Manager) List() ([]Meta, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot: list dir: %w", err)
	}

	var metas []Meta
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		id := strings.TrimSuffix(e.Name(), fileExt)
		metas = append(metas, Meta{
			ID:        id,
			CreatedAt: info.ModTime(),
			SizeBytes: info.Size(),
			FilePath:  filepath.Join(m.dir, e.Name()),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

// Load reads and decodes a snapshot from disk by ID.
func (m *Manager) Load(id string) (*Snapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	f, err := os.Open(m.path(id))
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", id, err)
	}
	defer f.Close()

	var data file
	dec := gob.NewDecoder(f)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", id, err)
	}
	return &Snapshot{id: data.ID, createdAt: data.CreatedAt, records: data.Records}, nil
}

// Delete removes a snapshot file by ID.
func (m *Manager) Delete(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if err := os.Remove(m.path(id)); err != nil {
		return fmt.Errorf("snapshot: delete %s: %w", id, err)
	}
	return nil
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.dir, id+fileExt)
}
