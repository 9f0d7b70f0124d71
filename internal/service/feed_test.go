package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-lakemap/internal/mapview"
)

type nopWidget struct{}

func (nopWidget) Create(string, mapview.CreateOptions) error { return nil }
func (nopWidget) Destroy()                                   {}
func (nopWidget) SetView(mapview.LatLng, float64, bool)      {}
func (nopWidget) FitBounds(orb.Bound, int, bool)             {}
func (nopWidget) SetInteraction(mapview.Interaction)         {}
func (nopWidget) SetControls(mapview.Controls)               {}
func (nopWidget) AddTileLayer(string, string)                {}
func (nopWidget) AddMask(*geojson.Feature, mapview.Style)    {}
func (nopWidget) AddRegions([]mapview.Region, mapview.Style) {}
func (nopWidget) SetRegionStyle(string, mapview.Style)       {}
func (nopWidget) SetTooltip(string, string)                  {}
func (nopWidget) AddMarker(mapview.Marker)                   {}
func (nopWidget) RemoveMarker(int64)                         {}
func (nopWidget) SetStatus(string)                           {}

type memSource struct {
	mu    sync.Mutex
	obs   []mapview.Observation
	finds []ObservationFilter
	err   error
}

func (s *memSource) Find(_ context.Context, f ObservationFilter) ([]mapview.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds = append(s.finds, f)
	if s.err != nil {
		return nil, s.err
	}
	var out []mapview.Observation
	for _, o := range s.obs {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *memSource) Dates(context.Context) ([]DateCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]int{}
	var out []DateCount
	for _, o := range s.obs {
		if counts[o.Date] == 0 {
			out = append(out, DateCount{Date: o.Date})
		}
		counts[o.Date]++
	}
	for i := range out {
		out[i].Count = counts[out[i].Date]
	}
	return out, s.err
}

func newFedView(t *testing.T, src ObservationSource, clock clockwork.Clock) (*mapview.Controller, *Feed) {
	t.Helper()
	regions := loadTestRegions(t)
	feed := NewFeed(src, clock, nil)
	c := mapview.New(mapview.DefaultConfig(), regions.Regions(), nopWidget{}, feed.Options()...)
	feed.Attach(c)
	require.NoError(t, c.Mount("map-1"))
	return c, feed
}

func TestFeedStartSelectsLatestDate(t *testing.T) {
	src := &memSource{obs: []mapview.Observation{
		{ID: 1, Date: "2025-06-27", RegionID: "uusimaa"},
		{ID: 2, Date: "2025-06-28", RegionID: "uusimaa"},
	}}
	c, feed := newFedView(t, src, nil)

	require.NoError(t, feed.Start(context.Background()))
	s, ok := c.State()
	require.True(t, ok)
	assert.Equal(t, "2025-06-28", s.Date)
	assert.Len(t, feed.Dates(), 2)
	assert.Equal(t, "Finland: 0 observations on 2025-06-28", c.Status())
}

func TestFeedStartWithoutObservationsUsesToday(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	c, feed := newFedView(t, &memSource{}, clock)

	require.NoError(t, feed.Start(context.Background()))
	s, _ := c.State()
	assert.Equal(t, "2025-03-14", s.Date)
}

func TestFeedRefetchesOnSelection(t *testing.T) {
	src := &memSource{obs: []mapview.Observation{
		{ID: 1, Date: "2025-06-28", RegionID: "uusimaa"},
		{ID: 2, Date: "2025-06-28", RegionID: "uusimaa"},
		{ID: 3, Date: "2025-06-28", RegionID: "paijat_hame"},
	}}
	c, feed := newFedView(t, src, nil)
	require.NoError(t, feed.Start(context.Background()))

	require.NoError(t, c.ClickRegion("uusimaa"))
	assert.Equal(t, []int64{1, 2}, c.MarkerIDs())
	assert.Equal(t, "Uusimaa: 2 observations on 2025-06-28", c.Status())
	assert.Contains(t, src.finds, ObservationFilter{Date: "2025-06-28", RegionID: "uusimaa"})

	require.NoError(t, c.ClickRegion("paijat_hame"))
	assert.Equal(t, []int64{3}, c.MarkerIDs())

	require.NoError(t, c.ClickRegion("paijat_hame"))
	assert.Empty(t, c.MarkerIDs())
	assert.Equal(t, "Finland: 0 observations on 2025-06-28", c.Status())
}

func TestFeedKeepsSnapshotOnFetchError(t *testing.T) {
	src := &memSource{obs: []mapview.Observation{{ID: 1, Date: "2025-06-28", RegionID: "uusimaa"}}}
	c, feed := newFedView(t, src, nil)
	require.NoError(t, feed.Start(context.Background()))
	require.NoError(t, c.ClickRegion("uusimaa"))
	require.Len(t, c.MarkerIDs(), 1)

	src.mu.Lock()
	src.err = errors.New("database is locked")
	src.mu.Unlock()

	require.NoError(t, c.SetDate("2025-06-27"))
	assert.Empty(t, c.MarkerIDs(), "held snapshot has nothing for the new date")
	s, _ := c.State()
	assert.Equal(t, "2025-06-27", s.Date)
}

// gatedSource holds fetches for one region until released.
type gatedSource struct {
	*memSource
	region  string
	entered chan struct{}
	release chan struct{}
}

func (s *gatedSource) Find(ctx context.Context, f ObservationFilter) ([]mapview.Observation, error) {
	if f.RegionID == s.region {
		close(s.entered)
		<-s.release
	}
	return s.memSource.Find(ctx, f)
}

func TestFeedDropsResponseOfSupersededFetch(t *testing.T) {
	src := &gatedSource{
		memSource: &memSource{obs: []mapview.Observation{
			{ID: 1, Date: "2025-06-28", RegionID: "uusimaa"},
			{ID: 2, Date: "2025-06-28", RegionID: "uusimaa"},
			{ID: 3, Date: "2025-06-28", RegionID: "paijat_hame"},
		}},
		region:  "uusimaa",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	c, feed := newFedView(t, src, nil)
	require.NoError(t, feed.Start(context.Background()))

	slow := make(chan error, 1)
	go func() { slow <- c.ClickRegion("uusimaa") }()
	select {
	case <-src.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("slow fetch never started")
	}

	require.NoError(t, c.ClickRegion("paijat_hame"))
	assert.Equal(t, []int64{3}, c.MarkerIDs())

	close(src.release)
	select {
	case err := <-slow:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("slow fetch never returned")
	}

	assert.Equal(t, []int64{3}, c.MarkerIDs())
	assert.Equal(t, "Päijät-Häme: 1 observations on 2025-06-28", c.Status())
	require.NotNil(t, c.SelectedRegion())
	assert.Equal(t, "paijat_hame", c.SelectedRegion().ID)
}

func TestLatestDate(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-12-31", LatestDate(nil, clock))
	assert.Equal(t, "2025-02-01", LatestDate([]DateCount{{Date: "2025-02-01"}, {Date: "2025-01-15"}}, clock))
}
