package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/joeblew999/plat-lakemap/internal/mapview"
)

// Feed supplies one mounted view with observations. It plays the upstream
// role of the view: it picks the initial date, and refetches whenever the
// region selection or the date changes.
//
// Fetches are sequenced; a response that arrives after a newer fetch started
// is dropped, so the view never shows data for a stale selection.
type Feed struct {
	source ObservationSource
	clock  clockwork.Clock
	logger *slog.Logger

	seq     atomic.Uint64
	applyMu sync.Mutex

	mu    sync.Mutex
	ctx   context.Context
	view  *mapview.Controller
	dates []DateCount
}

// NewFeed creates a feed. A nil clock uses the real clock.
func NewFeed(source ObservationSource, clock clockwork.Clock, logger *slog.Logger) *Feed {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{source: source, clock: clock, logger: logger, ctx: context.Background()}
}

// Options returns the controller callbacks that drive the feed.
func (f *Feed) Options() []mapview.Option {
	return []mapview.Option{
		mapview.OnRegionSelected(func(*mapview.Region) { f.refresh() }),
		mapview.OnDateChange(func(string) { f.refresh() }),
	}
}

// Attach binds the feed to its controller.
func (f *Feed) Attach(c *mapview.Controller) {
	f.mu.Lock()
	f.view = c
	f.mu.Unlock()
}

// Start loads the date index and selects the latest observed date, or today
// when there are no observations. Fetches use ctx until it is cancelled.
func (f *Feed) Start(ctx context.Context) error {
	dates, err := f.source.Dates(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.ctx = ctx
	f.dates = dates
	view := f.view
	f.mu.Unlock()
	if view == nil {
		return errors.New("feed: no view attached")
	}

	return view.SetDate(LatestDate(dates, f.clock))
}

// Dates returns the date index loaded by Start.
func (f *Feed) Dates() []DateCount {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dates
}

// LatestDate returns the newest date of the index, or today.
func LatestDate(dates []DateCount, clock clockwork.Clock) string {
	latest := ""
	for _, d := range dates {
		if d.Date > latest {
			latest = d.Date
		}
	}
	if latest == "" {
		latest = mapview.FormatDay(clock.Now())
	}
	return latest
}

// refresh fetches observations for the current selection and date. With no
// region selected the view holds no observations.
func (f *Feed) refresh() {
	f.mu.Lock()
	ctx, view := f.ctx, f.view
	f.mu.Unlock()
	if view == nil {
		return
	}

	seq := f.seq.Add(1)
	state, ok := view.State()
	if !ok {
		return
	}

	var obs []mapview.Observation
	if state.Selected != nil && state.Date != "" {
		var err error
		obs, err = f.source.Find(ctx, ObservationFilter{Date: state.Date, RegionID: state.Selected.ID})
		if err != nil {
			f.logger.Warn("fetching observations", "region", state.Selected.ID, "date", state.Date, "error", err)
			return
		}
	}

	f.applyMu.Lock()
	defer f.applyMu.Unlock()
	if f.seq.Load() != seq {
		f.logger.Debug("dropping stale observations", "seq", seq)
		return
	}
	if err := view.SetObservations(obs); err != nil && !errors.Is(err, mapview.ErrNotMounted) {
		f.logger.Warn("applying observations", "error", err)
	}
}
