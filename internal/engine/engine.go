// Package engine opens the configured record store next to its snapshot
// directory and moves records between the two.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/filecabinet/filecabinet/internal/config"
	"github.com/filecabinet/filecabinet/internal/snapshot"
	"github.com/filecabinet/filecabinet/internal/store"
	"github.com/filecabinet/filecabinet/internal/validate"
)

// Engine owns one store and the snapshot manager. Like the stores it is
// meant for a single caller.
type Engine struct {
	store   store.Store
	snapMgr *snapshot.Manager
	backend string
	logger  *zap.Logger
}

// New opens the store described by cfg. A nil logger disables logging.
func New(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	rules, err := cfg.Validation.Rules()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	opts := store.Options{
		Validator:  validate.New(rules),
		Logger:     logger,
		SyncWrites: cfg.SyncWrites,
	}

	sm, err := snapshot.NewManager(cfg.SnapshotDir())
	if err != nil {
		return nil, fmt.Errorf("engine: failed to init snapshot manager: %w", err)
	}

	var s store.Store
	switch cfg.Storage {
	case store.BackendFile:
		fs, err := store.OpenFile(cfg.StorePath(), opts)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		s = fs
	default:
		s = store.NewMemory(opts)
	}

	logger.Info("engine started",
		zap.String("storage", cfg.Storage),
		zap.String("validation", cfg.Validation.Profile),
		zap.String("snapshots", sm.Dir()))

	return &Engine{
		store:   s,
		snapMgr: sm,
		backend: cfg.Storage,
		logger:  logger,
	}, nil
}

// Store returns the underlying record store.
func (e *Engine) Store() store.Store {
	return e.store
}

// Backend returns the storage backend name.
func (e *Engine) Backend() string {
	return e.backend
}

// Stat returns the record counts of the store.
func (e *Engine) Stat() (store.Stat, error) {
	return e.store.Stat()
}

// Purge compacts the store.
func (e *Engine) Purge() (int, error) {
	return e.store.Purge()
}

// Export snapshots every active record and saves the snapshot to disk.
func (e *Engine) Export() (snapshot.Meta, error) {
	snap, err := e.store.MakeSnapshot()
	if err != nil {
		return snapshot.Meta{}, fmt.Errorf("engine: snapshot: %w", err)
	}
	meta, err := e.snapMgr.Save(snap)
	if err != nil {
		return snapshot.Meta{}, err
	}

	e.logger.Info("snapshot exported",
		zap.String("id", meta.ID),
		zap.Time("created_at", snap.CreatedAt()),
		zap.Int("records", snap.Len()),
		zap.Int64("bytes", meta.SizeBytes))
	return meta, nil
}

// Import restores the saved snapshot id into the store. Records the store
// rejects are reported in the result; use its Err method to treat them as
// an error.
func (e *Engine) Import(id string) (store.RestoreResult, error) {
	snap, err := e.snapMgr.Load(id)
	if err != nil {
		return store.RestoreResult{}, err
	}
	res, err := e.store.Restore(snap)
	if err != nil {
		return res, fmt.Errorf("engine: restore %s: %w", id, err)
	}
	return res, nil
}

// Snapshots lists saved snapshots, newest first.
func (e *Engine) Snapshots() ([]snapshot.Meta, error) {
	return e.snapMgr.List()
}

// DeleteSnapshot removes a saved snapshot.
func (e *Engine) DeleteSnapshot(id string) error {
	return e.snapMgr.Delete(id)
}

// Close closes the store.
func (e *Engine) Close() error {
	err := e.store.Close()
	e.logger.Info("engine stopped", zap.Error(err))
	return err
}
