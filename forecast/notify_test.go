package forecast_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountrms/forecasting/forecast"
	"github.com/accountrms/forecasting/forecast/store"
)

func newTestNotifier(t *testing.T) (*forecast.Notifier, *store.Memory) {
	t.Helper()
	log := store.NewMemory()
	n := forecast.NewNotifier(log)
	n.Clock = func() time.Time { return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC) }
	return n, log
}

func TestNotifier_BelowSafety_Appends(t *testing.T) {
	// GIVEN: Safety stock 50
	// WHEN: Observed stock is 40
	// THEN: Exactly one record is appended with the notifier clock

	n, log := newTestNotifier(t)
	ctx := context.Background()

	got, err := n.Check(ctx, "M-7", 40, 50)
	require.NoError(t, err)
	assert.True(t, got.Appended)

	records, err := log.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, forecast.MaterialID("M-7"), records[0].MaterialID)
	assert.Equal(t, 40.0, records[0].PresentStock)
	assert.Equal(t, 50.0, records[0].SafetyStock)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), records[0].Timestamp)
}

func TestNotifier_AtOrAboveSafety_NoAppend(t *testing.T) {
	n, log := newTestNotifier(t)
	ctx := context.Background()

	for _, reading := range []float64{50, 60, 1e6} {
		got, err := n.Check(ctx, "M-7", reading, 50)
		require.NoError(t, err)
		assert.False(t, got.Appended, "reading %v", reading)
	}
	assert.Equal(t, 0, log.Len())
}

func TestNotifier_RepeatedObservation_NotDeduplicated(t *testing.T) {
	n, log := newTestNotifier(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := n.Check(ctx, "M-7", 40, 50)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, log.Len())
}

func TestNotifier_PreservesInsertionOrder(t *testing.T) {
	n, log := newTestNotifier(t)
	ctx := context.Background()

	for _, m := range []forecast.MaterialID{"A", "B", "C"} {
		_, err := n.Check(ctx, m, 1, 2)
		require.NoError(t, err)
	}

	records, err := log.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, forecast.MaterialID("A"), records[0].MaterialID)
	assert.Equal(t, forecast.MaterialID("B"), records[1].MaterialID)
	assert.Equal(t, forecast.MaterialID("C"), records[2].MaterialID)
}

func TestNotifier_LogFailure_IsReturned(t *testing.T) {
	n, log := newTestNotifier(t)
	log.FailWith = errors.New("disk full")

	got, err := n.Check(context.Background(), "M-7", 40, 50)
	require.Error(t, err)
	assert.False(t, got.Appended)
	assert.True(t, forecast.IsRetryable(err))

	var ioErr *forecast.IOFailure
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "append", ioErr.Op)
}

func TestNotifier_InvalidReadings(t *testing.T) {
	n, log := newTestNotifier(t)
	ctx := context.Background()

	cases := []struct {
		reading, safety float64
	}{
		{-1, 50},
		{math.NaN(), 50},
		{40, -5},
		{40, math.Inf(1)},
	}
	for _, tc := range cases {
		_, err := n.Check(ctx, "M-7", tc.reading, tc.safety)
		assert.ErrorIs(t, err, forecast.ErrInvalidRange)
	}
	assert.Equal(t, 0, log.Len())
}

func TestHistory_FiltersByMaterialInOrder(t *testing.T) {
	n, log := newTestNotifier(t)
	ctx := context.Background()

	for _, c := range []struct {
		material forecast.MaterialID
		reading  float64
	}{{"M-1", 5}, {"M-2", 6}, {"M-1", 7}} {
		_, err := n.Check(ctx, c.material, c.reading, 10)
		require.NoError(t, err)
	}

	got, err := forecast.History(ctx, log, "M-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 5.0, got[0].PresentStock)
	assert.Equal(t, 7.0, got[1].PresentStock)

	none, err := forecast.History(ctx, log, "M-9")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestHistory_ListFailureSurfaces(t *testing.T) {
	_, log := newTestNotifier(t)
	log.FailWith = errors.New("disk gone")

	_, err := forecast.History(context.Background(), log, "M-1")
	assert.True(t, forecast.IsRetryable(err))
}
