package profile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		{
			Index:       0,
			Description: "DELL P2419H",
			Values: []CodeValue{
				{Code: 0x10, Value: 70, Max: 100},
				{Code: 0x12, Value: 75, Max: 100},
				{Code: 0x60, Value: 0x11, Max: 0x12},
				{Code: 0x62, Unavailable: true},
				{Code: 0xD6, Value: 0x01, Max: 0x05},
			},
		},
		{
			Index:       1,
			Description: "LG HDR 4K",
			Values: []CodeValue{
				{Code: 0x10, Value: 40, Max: 100},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "work", sampleSnapshot()))

	rec, err := s.Load(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, "work", rec.Name)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, sampleSnapshot(), rec.Snapshot)
}

func TestSaveOverwritesLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "work", sampleSnapshot()))

	changed := sampleSnapshot()
	changed[0].Values[0].Value = 20
	require.NoError(t, s.Save(ctx, "work", changed))

	rec, err := s.Load(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, uint32(20), rec.Snapshot[0].Values[0].Value)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, names)
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEmptyAndSorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.Save(ctx, "night", Snapshot{}))
	require.NoError(t, s.Save(ctx, "day", Snapshot{}))

	names, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"day", "night"}, names)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "work", sampleSnapshot()))
	require.NoError(t, s.Delete(ctx, "work"))

	_, err := s.Load(ctx, "work")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "work"), ErrNotFound)
}
