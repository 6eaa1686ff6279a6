package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inat-tools/rarities/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.recency.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	return st
}

func TestSQLite_UpsertOverwrites(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first := model.RecencyRecord{ObservedAt: "2024-01-01T00:00:00Z", ObservationID: 1, ObserverLogin: "a"}
	require.NoError(t, st.Put(ctx, 42, first))

	second := model.RecencyRecord{ObservedAt: "2025-06-14T16:31:02Z", ObservationID: 2, ObserverLogin: "b"}
	require.NoError(t, st.Put(ctx, 42, second))

	rec, err := st.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, second, *rec)

	n, err := st.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mira_l.recency.db")
	ctx := context.Background()

	st, err := NewSQLite(path)
	require.NoError(t, err)

	rec := model.RecencyRecord{ObservedAt: "2025-06-14T16:31:02Z", ObservationID: 181234567, ObserverLogin: "wandering_wren"}
	require.NoError(t, st.Put(ctx, 48662, rec))
	require.NoError(t, st.Close())

	st2, err := NewSQLite(path)
	require.NoError(t, err)
	defer st2.Close() //nolint:errcheck

	got, err := st2.Get(ctx, 48662)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)
}

func TestSQLite_OpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "u.recency.db")

	st, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// Reopening runs the migration again; CREATE IF NOT EXISTS keeps it safe.
	st2, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, st2.Close())
}

func TestSQLite_FlushIsNoOp(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Flush(context.Background()))
}
