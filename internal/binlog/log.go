// Package binlog provides the fixed-width binary record log behind the file
// store. Slot i starts at offset i*SlotSize, so any slot is one seek away.
// Deleting a record only sets the tombstone bit of its slot; Compact drops
// tombstoned slots and truncates the file.
package binlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

var (
	// ErrStop may be returned by a Scan callback to end the scan early without error.
	ErrStop = errors.New("binlog: stop scan")
	// ErrLocked indicates another handle holds the log file.
	ErrLocked = errors.New("binlog: file is locked by another process")
	// ErrSlotRange indicates a slot index outside the log.
	ErrSlotRange = errors.New("binlog: slot index out of range")
)

// Log is an open slot file. It is not safe for concurrent use; the exclusive
// file lock taken by Open keeps other processes out.
type Log struct {
	file      *os.File
	slots     int
	sync      bool
	truncated int64
}

// Open opens or creates the log at path, creating its directory if needed.
// A trailing partial slot left by an interrupted write is cut off.
// With syncWrites set every mutation is fsynced before returning.
func Open(path string, syncWrites bool) (*Log, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("binlog: failed to create directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("binlog: failed to open file: %w", err)
	}

	if err := lockFile(file); err != nil {
		file.Close()
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("binlog: failed to stat: %w", err)
	}

	l := &Log{
		file:  file,
		slots: int(info.Size() / SlotSize),
		sync:  syncWrites,
	}

	if partial := info.Size() % SlotSize; partial != 0 {
		if err := file.Truncate(info.Size() - partial); err != nil {
			file.Close()
			return nil, fmt.Errorf("binlog: failed to truncate partial slot: %w", err)
		}
		l.truncated = partial
	}

	return l, nil
}

// Len returns the number of slots, tombstoned ones included.
func (l *Log) Len() int {
	return l.slots
}

// Truncated returns how many trailing bytes Open cut off.
func (l *Log) Truncated() int64 {
	return l.truncated
}

// Size returns the current file size in bytes.
func (l *Log) Size() (int64, error) {
	info, err := l.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("binlog: failed to stat: %w", err)
	}
	return info.Size(), nil
}

// Read decodes slot i.
func (l *Log) Read(i int) (Slot, error) {
	if i < 0 || i >= l.slots {
		return Slot{}, fmt.Errorf("%w: %d", ErrSlotRange, i)
	}
	buf := make([]byte, SlotSize)
	if _, err := l.file.ReadAt(buf, offset(i)); err != nil {
		return Slot{}, fmt.Errorf("binlog: failed to read slot %d: %w", i, err)
	}
	s, err := Decode(buf)
	if err != nil {
		return Slot{}, fmt.Errorf("slot %d: %w", i, err)
	}
	return s, nil
}

// Write overwrites slot i in place.
func (l *Log) Write(i int, s Slot) error {
	if i < 0 || i >= l.slots {
		return fmt.Errorf("%w: %d", ErrSlotRange, i)
	}
	return l.writeAt(i, s)
}

// Append writes s after the last slot and returns its index.
func (l *Log) Append(s Slot) (int, error) {
	i := l.slots
	if err := l.writeAt(i, s); err != nil {
		return 0, err
	}
	l.slots++
	return i, nil
}

func (l *Log) writeAt(i int, s Slot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if _, err := l.file.WriteAt(data, offset(i)); err != nil {
		return fmt.Errorf("binlog: failed to write slot %d: %w", i, err)
	}
	return l.flush()
}

// MarkDeleted sets the tombstone bit of slot i. The rest of the slot is left
// untouched until Compact.
func (l *Log) MarkDeleted(i int) error {
	if i < 0 || i >= l.slots {
		return fmt.Errorf("%w: %d", ErrSlotRange, i)
	}
	var status [2]byte
	if _, err := l.file.ReadAt(status[:], offset(i)); err != nil {
		return fmt.Errorf("binlog: failed to read status of slot %d: %w", i, err)
	}
	status[0] |= byte(StatusDeleted)
	status[1] |= byte(StatusDeleted >> 8)
	if _, err := l.file.WriteAt(status[:], offset(i)); err != nil {
		return fmt.Errorf("binlog: failed to write status of slot %d: %w", i, err)
	}
	return l.flush()
}

// Scan calls fn for every slot in file order, tombstoned ones included.
// Returning ErrStop from fn ends the scan with a nil error.
func (l *Log) Scan(fn func(i int, s Slot) error) error {
	r := bufio.NewReaderSize(io.NewSectionReader(l.file, 0, offset(l.slots)), 64*SlotSize)
	buf := make([]byte, SlotSize)

	for i := 0; i < l.slots; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("binlog: failed to read slot %d: %w", i, err)
		}
		s, err := Decode(buf)
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		if err := fn(i, s); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Compact moves every live slot, in order, to the front of the file with its
// tombstone bit cleared and truncates the rest. It returns the number of
// slots removed.
func (l *Log) Compact() (int, error) {
	live := 0
	err := l.Scan(func(i int, s Slot) error {
		if s.Deleted() {
			return nil
		}
		if i != live {
			s.Status &^= StatusDeleted
			data, err := Encode(s)
			if err != nil {
				return err
			}
			if _, err := l.file.WriteAt(data, offset(live)); err != nil {
				return fmt.Errorf("binlog: failed to move slot %d to %d: %w", i, live, err)
			}
		}
		live++
		return nil
	})
	if err != nil {
		return 0, err
	}

	removed := l.slots - live
	if err := l.file.Truncate(offset(live)); err != nil {
		return 0, fmt.Errorf("binlog: failed to truncate: %w", err)
	}
	l.slots = live
	if err := l.flush(); err != nil {
		return 0, err
	}
	return removed, nil
}

// Close syncs and closes the log, releasing its lock.
func (l *Log) Close() error {
	err := l.file.Sync()
	if err != nil {
		err = fmt.Errorf("binlog: failed to sync on close: %w", err)
	}
	return multierr.Combine(err, unlockFile(l.file), l.file.Close())
}

func (l *Log) flush() error {
	if !l.sync {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("binlog: failed to sync: %w", err)
	}
	return nil
}

func offset(i int) int64 {
	return int64(i) * SlotSize
}
