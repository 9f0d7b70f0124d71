package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-lakemap/internal/db"
	"github.com/joeblew999/plat-lakemap/internal/mapview"
)

func newTestStore(t *testing.T) *ObservationStore {
	t.Helper()
	conn, err := db.Open(db.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	store, err := NewObservationStore(context.Background(), conn, nil)
	require.NoError(t, err)
	return store
}

func level(v int) *int { return &v }

func TestObservationStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	n, err := store.Upsert(ctx, []mapview.Observation{
		{ID: 1, Location: "Ormajärvi", Latitude: 61.09, Longitude: 24.96, Date: "2025-06-28", Level: level(3), RegionID: "paijat_hame"},
		{ID: 2, Location: "Espoonlahti", Latitude: 60.15, Longitude: 24.65, Date: "2025-06-27", Operator: "HSY", RegionID: "uusimaa"},
		{ID: 3, Location: "Vesijärvi", Latitude: 61.05, Longitude: 25.6, Date: "2025-06-28", RegionID: "paijat_hame"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := store.Find(ctx, ObservationFilter{Date: "2025-06-28", RegionID: "paijat_hame"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	require.NotNil(t, got[0].Level)
	assert.Equal(t, 3, *got[0].Level)
	assert.Nil(t, got[1].Level, "missing level stays nil")
	assert.Empty(t, got[1].Operator)

	all, err := store.Find(ctx, ObservationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	dates, err := store.Dates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []DateCount{{Date: "2025-06-27", Count: 1}, {Date: "2025-06-28", Count: 2}}, dates)
}

func TestObservationStoreUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Upsert(ctx, []mapview.Observation{{ID: 1, Location: "Old", Date: "2025-01-01"}})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, []mapview.Observation{{ID: 1, Location: "New", Date: "2025-01-02"}})
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.Find(ctx, ObservationFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "New", got[0].Location)
}

func TestObservationStoreEmpty(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	got, err := store.Find(ctx, ObservationFilter{Date: "2025-01-01"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	dates, err := store.Dates(ctx)
	require.NoError(t, err)
	assert.Empty(t, dates)
	assert.NoError(t, store.Ping(ctx))
}

func TestObservationFilterMatches(t *testing.T) {
	o := mapview.Observation{Date: "2025-01-01", RegionID: "uusimaa"}
	assert.True(t, ObservationFilter{}.Matches(o))
	assert.True(t, ObservationFilter{Date: "2025-01-01", RegionID: "uusimaa"}.Matches(o))
	assert.False(t, ObservationFilter{Date: "2025-01-02"}.Matches(o))
	assert.False(t, ObservationFilter{RegionID: "lappi"}.Matches(o))
}
