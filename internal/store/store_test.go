package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecabinet/filecabinet/internal/record"
	"github.com/filecabinet/filecabinet/internal/snapshot"
	"github.com/filecabinet/filecabinet/internal/validate"
)

func TestStore_CreateThenFind(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		id, err := s.Create(jane())
		require.NoError(t, err)
		assert.Equal(t, 1, id)

		found, err := s.Find([]record.Condition{record.ByID(id)}, record.Or)
		require.NoError(t, err)
		want := []record.Record{jane().WithID(id)}
		if diff := cmp.Diff(want, found); diff != "" {
			t.Fatalf("find mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestStore_CreateRejectsInvalid(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		d := jane()
		d.FirstName = ""
		_, err := s.Create(d)
		assert.ErrorIs(t, err, validate.ErrValidation)

		st, err := s.Stat()
		require.NoError(t, err)
		assert.Equal(t, Stat{}, st)
	})
}

func TestStore_MultiByteNames(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		d := jane()
		d.LastName = strings.Repeat("Ж", 40)
		_, err := s.Create(d)
		var verr *validate.Error
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, record.FieldLastName, verr.Field)

		d.LastName = strings.Repeat("Ж", 30)
		id, err := s.Create(d)
		require.NoError(t, err)
		assert.Equal(t, 1, id)

		found, err := s.Find([]record.Condition{record.ByLastName(strings.Repeat("ж", 30))}, record.And)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, ids(found))
	})
}

func TestStore_FindOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		for _, name := range []string{"Ann", "Bob", "Cid"} {
			_, err := s.Create(person(name, 170))
			require.NoError(t, err)
		}
		require.NoError(t, s.Update(1, person("Ann", 180)))

		for _, union := range []record.Union{record.And, record.Or} {
			all, err := s.Find(nil, union)
			require.NoError(t, err)
			assert.Equal(t, []int{1, 2, 3}, ids(all))
		}
	})
}

func TestStore_FindContradiction(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		_, err := s.Create(person("Ann", 170))
		require.NoError(t, err)
		_, err = s.Create(person("Bob", 180))
		require.NoError(t, err)
		_, err = s.Create(person("Cid", 190))
		require.NoError(t, err)

		conds := []record.Condition{record.ByHeight(170), record.ByHeight(180)}

		found, err := s.Find(conds, record.And)
		require.NoError(t, err)
		assert.Empty(t, found)

		found, err = s.Find(conds, record.Or)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, ids(found))
	})
}

func TestStore_FindCaseInsensitiveNames(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		_, err := s.Create(jane())
		require.NoError(t, err)

		found, err := s.Find([]record.Condition{record.ByFirstName("jANE"), record.ByLastName("DOE")}, record.And)
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})
}

func TestStore_FindInvalidCondition(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		_, err := s.Find([]record.Condition{{Field: record.Field(42), Value: "x"}}, record.Or)
		assert.ErrorIs(t, err, record.ErrInvalidField)
	})
}

func TestStore_Update(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		id, err := s.Create(jane())
		require.NoError(t, err)

		require.NoError(t, s.Update(id, person("Joan", 165)))
		found, err := s.Find([]record.Condition{record.ByID(id)}, record.And)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Joan", found[0].FirstName)
		assert.Equal(t, int16(165), found[0].Height)

		st, err := s.Stat()
		require.NoError(t, err)
		assert.Equal(t, Stat{Active: 1}, st)
	})
}

func TestStore_UpdateMissing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		id, err := s.Create(jane())
		require.NoError(t, err)

		err = s.Update(id+1, person("Joan", 165))
		assert.ErrorIs(t, err, ErrNotFound)

		st, err := s.Stat()
		require.NoError(t, err)
		assert.Equal(t, Stat{Active: 1}, st)
		all, err := s.Find(nil, record.And)
		require.NoError(t, err)
		assert.Equal(t, "Jane", all[0].FirstName)
	})
}

func TestStore_UpdateRejectsInvalid(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		id, err := s.Create(jane())
		require.NoError(t, err)
		err = s.Update(id, person("", 170))
		assert.ErrorIs(t, err, validate.ErrValidation)
	})
}

func TestStore_Delete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		id, err := s.Create(jane())
		require.NoError(t, err)
		other, err := s.Create(person("Bob", 180))
		require.NoError(t, err)

		require.NoError(t, s.Delete(id))

		ok, err := s.Exists(id)
		require.NoError(t, err)
		assert.False(t, ok)

		all, err := s.Find(nil, record.Or)
		require.NoError(t, err)
		assert.Equal(t, []int{other}, ids(all))

		assert.ErrorIs(t, s.Delete(id), ErrNotFound)
	})
}

func TestStore_DeletedIDIsNotReissued(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		id, err := s.Create(jane())
		require.NoError(t, err)
		require.NoError(t, s.Delete(id))

		next, err := s.Create(jane())
		require.NoError(t, err)
		assert.Equal(t, id+1, next)
	})
}

func TestStore_Insert(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		require.NoError(t, s.Insert(jane().WithID(10)))

		err := s.Insert(jane().WithID(10))
		assert.ErrorIs(t, err, ErrDuplicateID)

		id, err := s.Create(jane())
		require.NoError(t, err)
		assert.Equal(t, 11, id)
	})
}

func TestStore_InsertAfterDelete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		require.NoError(t, s.Insert(jane().WithID(3)))
		require.NoError(t, s.Delete(3))
		require.NoError(t, s.Insert(person("Back", 171).WithID(3)))

		found, err := s.Find([]record.Condition{record.ByID(3)}, record.And)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Back", found[0].FirstName)
	})
}

func TestStore_InsertRejectsInvalid(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		err := s.Insert(person("", 170).WithID(2))
		assert.ErrorIs(t, err, validate.ErrValidation)
	})
}

func TestStore_CustomValidator(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			var s Store
			if b.name == BackendMemory {
				s = NewMemory(Options{Validator: validate.New(validate.CustomRules())})
			} else {
				fs, err := OpenFile(t.TempDir()+"/c.db", Options{Validator: validate.New(validate.CustomRules())})
				require.NoError(t, err)
				s = fs
			}
			defer s.Close()

			d := jane()
			d.Gender = 'x'
			_, err := s.Create(d)
			assert.NoError(t, err)
		})
	}
}

func TestStore_SnapshotIsDetached(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		_, err := s.Create(person("Ann", 170))
		require.NoError(t, err)
		_, err = s.Create(person("Bob", 180))
		require.NoError(t, err)
		require.NoError(t, s.Delete(1))

		snap, err := s.MakeSnapshot()
		require.NoError(t, err)
		require.Equal(t, 1, snap.Len())
		assert.Equal(t, 2, snap.At(0).ID)

		_, err = s.Create(person("Cid", 190))
		require.NoError(t, err)
		assert.Equal(t, 1, snap.Len())
	})
}

func TestStore_RestorePartialFailure(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		bad := jane().WithID(2)
		bad.FirstName = ""
		snap := snapshot.New([]record.Record{jane().WithID(1), bad})

		res, err := s.Restore(snap)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Applied)

		var importErr *ImportError
		require.True(t, errors.As(res.Err(), &importErr))
		assert.Equal(t, map[int]string{2: "firstname must not be empty"}, importErr.Failures)

		all, err := s.Find(nil, record.And)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, ids(all))
	})
}

func TestStore_RestoreUpdatesAndInserts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		_, err := s.Create(person("Ann", 170))
		require.NoError(t, err)
		_, err = s.Create(person("Bob", 180))
		require.NoError(t, err)

		snap := snapshot.New([]record.Record{
			person("Bobby", 181).WithID(2),
			person("Zed", 160).WithID(100),
		})
		res, err := s.Restore(snap)
		require.NoError(t, err)
		require.NoError(t, res.Err())
		assert.Equal(t, 2, res.Applied)

		all, err := s.Find(nil, record.And)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 100}, ids(all))
		assert.Equal(t, "Bobby", all[1].FirstName)

		id, err := s.Create(jane())
		require.NoError(t, err)
		assert.Equal(t, 101, id)
	})
}

func TestStore_RestoreSkipsIDsOfRejectedRecords(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		bad := jane().WithID(50)
		bad.Height = 0

		res, err := s.Restore(snapshot.New([]record.Record{bad}))
		require.NoError(t, err)
		assert.Error(t, res.Err())
		assert.Zero(t, res.Applied)

		id, err := s.Create(jane())
		require.NoError(t, err)
		assert.Equal(t, 51, id)
	})
}

func TestStore_RoundTripThroughSnapshot(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		for _, name := range []string{"Ann", "Bob", "Cid"} {
			_, err := s.Create(person(name, 170))
			require.NoError(t, err)
		}
		snap, err := s.MakeSnapshot()
		require.NoError(t, err)

		target := NewMemory(Options{})
		res, err := target.Restore(snap)
		require.NoError(t, err)
		require.NoError(t, res.Err())

		got, err := target.Find(nil, record.Or)
		require.NoError(t, err)
		if diff := cmp.Diff(snap.Records(), got); diff != "" {
			t.Fatalf("restored records mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestStore_MemorySnapshotRestoresIntoFile(t *testing.T) {
	mem := NewMemory(Options{})
	defer mem.Close()

	for _, n := range []int{10, 30} {
		d := jane()
		d.FirstName = strings.Repeat("Ж", n)
		_, err := mem.Create(d)
		require.NoError(t, err)
	}
	d := jane()
	d.FirstName = strings.Repeat("Ж", 40)
	_, err := mem.Create(d)
	require.Error(t, err)

	snap, err := mem.MakeSnapshot()
	require.NoError(t, err)

	fs, err := OpenFile(filepath.Join(t.TempDir(), "cabinet.db"), Options{})
	require.NoError(t, err)
	defer fs.Close()

	res, err := fs.Restore(snap)
	require.NoError(t, err)
	require.NoError(t, res.Err())
	assert.Equal(t, 2, res.Applied)
}

func TestImportError_Message(t *testing.T) {
	err := &ImportError{Failures: map[int]string{7: "b", 3: "a"}}
	assert.Equal(t, "store: 2 records not imported: #3: a; #7: b", err.Error())
	assert.NoError(t, RestoreResult{Applied: 4}.Err())
}

func TestRestoreResult_FailedIDs(t *testing.T) {
	res := RestoreResult{Failures: map[int]string{9: "x", 2: "y", 5: "z"}}
	assert.Equal(t, []int{2, 5, 9}, res.FailedIDs())
	assert.Empty(t, RestoreResult{}.FailedIDs())
}
