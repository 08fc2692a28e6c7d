package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountrms/forecasting/forecast"
	"github.com/accountrms/forecasting/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AppendAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2025, 3, 10, 9, 30, 0, 123, time.UTC)
	recs := []forecast.NotificationRecord{
		{Timestamp: at, MaterialID: "B", PresentStock: 40, SafetyStock: 50},
		{Timestamp: at, MaterialID: "A", PresentStock: 0.25, SafetyStock: 1},
		{Timestamp: at, MaterialID: "B", PresentStock: 40, SafetyStock: 50},
	}
	for _, r := range recs {
		require.NoError(t, store.Append(ctx, r))
	}

	got, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, recs, got, "insertion order, duplicates kept")
}

func TestStore_ListByMaterial(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, m := range []forecast.MaterialID{"A", "B", "A"} {
		require.NoError(t, store.Append(ctx, forecast.NotificationRecord{Timestamp: time.Now(), MaterialID: m, PresentStock: 1, SafetyStock: 2}))
	}

	got, err := store.ListByMaterial(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// forecast.History goes through the indexed query.
	var _ forecast.MaterialHistory = store
	viaHistory, err := forecast.History(ctx, store, "A")
	require.NoError(t, err)
	assert.Equal(t, got, viaHistory)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, forecast.NotificationRecord{Timestamp: time.Now(), MaterialID: "A", PresentStock: 1, SafetyStock: 2}))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStore_ClosedDatabase_IOFailure(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Append(context.Background(), forecast.NotificationRecord{Timestamp: time.Now(), MaterialID: "A"})
	assert.True(t, forecast.IsRetryable(err))
}

func TestStore_WithNotifier(t *testing.T) {
	store := newTestStore(t)
	n := forecast.NewNotifier(store)

	got, err := n.Check(context.Background(), "100234", 40, 50)
	require.NoError(t, err)
	assert.True(t, got.Appended)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 40.0, list[0].PresentStock)
}
