package store

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/filecabinet/filecabinet/internal/binlog"
	"github.com/filecabinet/filecabinet/internal/idgen"
	"github.com/filecabinet/filecabinet/internal/match"
	"github.com/filecabinet/filecabinet/internal/record"
	"github.com/filecabinet/filecabinet/internal/snapshot"
)

// FileStore keeps records in a binlog. Updates overwrite the record's slot in
// place, deletes only set the slot's tombstone bit, and Purge compacts the
// file. Lookups are linear scans in on-disk order.
type FileStore struct {
	slots *binlog.Log
	alloc *idgen.Allocator
	opts  Options
}

var _ Store = (*FileStore)(nil)

// OpenFile opens or creates the store file at path. Every id already in the
// file, deleted or not, is reserved so it is never issued again.
func OpenFile(path string, opts Options) (*FileStore, error) {
	opts = opts.withDefaults(BackendFile)

	l, err := binlog.Open(path, opts.SyncWrites)
	if err != nil {
		return nil, fmt.Errorf("store: failed to open %s: %w", path, err)
	}

	s := &FileStore{slots: l, alloc: idgen.New(), opts: opts}
	err = l.Scan(func(_ int, slot binlog.Slot) error {
		s.alloc.Skip(slot.Record.ID)
		return nil
	})
	if err != nil {
		l.Close()
		return nil, fmt.Errorf("store: failed to load %s: %w", path, err)
	}

	if n := l.Truncated(); n > 0 {
		opts.Logger.Warn("dropped partial trailing slot", zap.String("path", path), zap.Int64("bytes", n))
	}
	opts.Logger.Info("file store opened",
		zap.String("path", path),
		zap.Int("slots", l.Len()),
		zap.Int("next_id", s.alloc.Peek()))
	return s, nil
}

// Size returns the store file size in bytes.
func (s *FileStore) Size() (int64, error) {
	return s.slots.Size()
}

func (s *FileStore) Create(d record.Data) (id int, err error) {
	defer func() { observe(BackendFile, "create", err) }()

	if err := s.opts.Validator.Validate(d); err != nil {
		return 0, err
	}
	// The id is only taken once the slot is written.
	for {
		id = s.alloc.Peek()
		_, found, err := s.lookup(id)
		if err != nil {
			return 0, err
		}
		if !found {
			break
		}
		s.alloc.Skip(id)
	}
	if _, err := s.slots.Append(binlog.Slot{Record: d.WithID(id)}); err != nil {
		return 0, err
	}
	s.alloc.Skip(id)

	s.opts.Logger.Debug("record created", zap.Int("id", id))
	return id, nil
}

func (s *FileStore) Insert(r record.Record) (err error) {
	defer func() { observe(BackendFile, "insert", err) }()

	if err := s.opts.Validator.Validate(r.Data()); err != nil {
		return err
	}
	_, found, err := s.lookup(r.ID)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: %d", ErrDuplicateID, r.ID)
	}
	if _, err := s.slots.Append(binlog.Slot{Record: r}); err != nil {
		return err
	}
	s.alloc.Skip(r.ID)

	s.opts.Logger.Debug("record inserted", zap.Int("id", r.ID))
	return nil
}

func (s *FileStore) Update(id int, d record.Data) (err error) {
	defer func() { observe(BackendFile, "update", err) }()

	i, found, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := s.opts.Validator.Validate(d); err != nil {
		return err
	}
	if err := s.slots.Write(i, binlog.Slot{Record: d.WithID(id)}); err != nil {
		return err
	}

	s.opts.Logger.Debug("record updated", zap.Int("id", id), zap.Int("slot", i))
	return nil
}

func (s *FileStore) Delete(id int) (err error) {
	defer func() { observe(BackendFile, "delete", err) }()

	i, found, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := s.slots.MarkDeleted(i); err != nil {
		return err
	}

	s.opts.Logger.Debug("record deleted", zap.Int("id", id), zap.Int("slot", i))
	return nil
}

func (s *FileStore) Find(conds []record.Condition, union record.Union) (found []record.Record, err error) {
	timer := prometheus.NewTimer(findDuration.WithLabelValues(BackendFile))
	defer func() {
		timer.ObserveDuration()
		observe(BackendFile, "find", err)
	}()

	if err := match.Check(conds, union); err != nil {
		return nil, err
	}
	err = s.slots.Scan(func(_ int, slot binlog.Slot) error {
		if slot.Deleted() {
			return nil
		}
		ok, err := match.IsMatch(slot.Record, conds, union)
		if ok {
			found = append(found, slot.Record)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *FileStore) Exists(id int) (bool, error) {
	_, found, err := s.lookup(id)
	return found, err
}

func (s *FileStore) Stat() (Stat, error) {
	var st Stat
	err := s.slots.Scan(func(_ int, slot binlog.Slot) error {
		if slot.Deleted() {
			st.Deleted++
		} else {
			st.Active++
		}
		return nil
	})
	if err != nil {
		return Stat{}, err
	}
	return st, nil
}

func (s *FileStore) Purge() (removed int, err error) {
	defer func() { observe(BackendFile, "purge", err) }()

	before := s.slots.Len()
	removed, err = s.slots.Compact()
	if err != nil {
		return 0, err
	}
	purgedSlotsTotal.Add(float64(removed))

	size, err := s.Size()
	if err != nil {
		return removed, err
	}
	s.opts.Logger.Info("store purged",
		zap.Int("slots_before", before),
		zap.Int("removed", removed),
		zap.Int64("bytes", size))
	return removed, nil
}

func (s *FileStore) MakeSnapshot() (snap *snapshot.Snapshot, err error) {
	defer func() { observe(BackendFile, "snapshot", err) }()

	records, err := s.Find(nil, record.And)
	if err != nil {
		return nil, err
	}
	return snapshot.New(records), nil
}

func (s *FileStore) Restore(snap *snapshot.Snapshot) (res RestoreResult, err error) {
	defer func() { observe(BackendFile, "restore", err) }()
	return restore(s, s.opts.Validator, s.alloc, snap, s.opts.Logger)
}

// Close closes the store file.
func (s *FileStore) Close() error {
	return s.slots.Close()
}

// lookup finds the first active slot holding id.
func (s *FileStore) lookup(id int) (slot int, found bool, err error) {
	err = s.slots.Scan(func(i int, sl binlog.Slot) error {
		if sl.Deleted() || sl.Record.ID != id {
			return nil
		}
		slot, found = i, true
		return binlog.ErrStop
	})
	return slot, found, err
}
