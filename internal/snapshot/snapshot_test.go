package snapshot

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecabinet/filecabinet/internal/record"
)

func people() []record.Record {
	return []record.Record{
		{ID: 1, FirstName: "Jane", LastName: "Doe", DateOfBirth: record.Date(1990, time.January, 1),
			Gender: 'f', Height: 170, Weight: decimal.RequireFromString("60.5")},
		{ID: 5, FirstName: "John", LastName: "Roe", DateOfBirth: record.Date(1985, time.March, 14),
			Gender: 'm', Height: 182, Weight: decimal.NewFromInt(80)},
	}
}

func TestNew_CopiesInput(t *testing.T) {
	in := people()
	snap := New(in)
	in[0].FirstName = "Changed"

	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, "Jane", snap.At(0).FirstName)

	out := snap.Records()
	out[1].FirstName = "Changed"
	assert.Equal(t, "John", snap.At(1).FirstName)

	_, err := uuid.Parse(snap.ID())
	assert.NoError(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.NoError(t, err)

	snap := New(people())
	meta, err := mgr.Save(snap)
	require.NoError(t, err)
	assert.Equal(t, snap.ID(), meta.ID)
	assert.NotZero(t, meta.SizeBytes)

	loaded, err := mgr.Load(snap.ID())
	require.NoError(t, err)
	assert.Equal(t, snap.ID(), loaded.ID())
	assert.True(t, snap.CreatedAt().Equal(loaded.CreatedAt()))
	if diff := cmp.Diff(people(), loaded.Records()); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestList(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := mgr.Save(New(people()[:i]))
		require.NoError(t, err)
	}

	metas, err := mgr.List()
	require.NoError(t, err)
	assert.Len(t, metas, 3)
}

func TestDeleteSnapshot(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.NoError(t, err)

	snap := New(nil)
	_, err = mgr.Save(snap)
	require.NoError(t, err)
	require.NoError(t, mgr.Delete(snap.ID()))

	metas, err := mgr.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestLoad_NotFound(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.NoError(t, err)

	_, err = mgr.Load(uuid.NewString())
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = mgr.Load("../escape")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.ErrorIs(t, mgr.Delete("nope"), ErrInvalidID)
}
