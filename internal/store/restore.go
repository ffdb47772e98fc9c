package store

import (
	"go.uber.org/zap"

	"github.com/filecabinet/filecabinet/internal/idgen"
	"github.com/filecabinet/filecabinet/internal/snapshot"
	"github.com/filecabinet/filecabinet/internal/validate"
)

// restore applies snap to s record by record. Record problems are collected
// and the loop continues; storage errors end it immediately.
func restore(s Store, v validate.Validator, alloc *idgen.Allocator, snap *snapshot.Snapshot, logger *zap.Logger) (RestoreResult, error) {
	res := RestoreResult{Failures: make(map[int]string)}

	for i := 0; i < snap.Len(); i++ {
		rec := snap.At(i)
		alloc.Skip(rec.ID)

		if err := v.Validate(rec.Data()); err != nil {
			logger.Warn("record rejected", zap.Int("id", rec.ID), zap.Error(err))
			res.Failures[rec.ID] = err.Error()
			continue
		}

		exists, err := s.Exists(rec.ID)
		if err != nil {
			return res, err
		}
		if exists {
			err = s.Update(rec.ID, rec.Data())
		} else {
			err = s.Insert(rec)
		}
		if err != nil {
			if !isRecordError(err) {
				return res, err
			}
			logger.Warn("record rejected", zap.Int("id", rec.ID), zap.Error(err))
			res.Failures[rec.ID] = err.Error()
			continue
		}
		res.Applied++
	}

	restoreFailuresTotal.Add(float64(len(res.Failures)))
	logger.Info("restore finished",
		zap.String("snapshot", snap.ID()),
		zap.Int("applied", res.Applied),
		zap.Int("failed", len(res.Failures)))
	return res, nil
}
