package viewer

import (
	"context"
	"fmt"
	"sort"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-lakemap/internal/humastar"
	"github.com/joeblew999/plat-lakemap/internal/leaflet"
	"github.com/joeblew999/plat-lakemap/internal/mapview"
	"github.com/joeblew999/plat-lakemap/internal/service"
)

// Mount mounts a map view on the target and streams its widget commands
// until the client disconnects or the view is unmounted.
func (h *Handler) Mount(ctx context.Context, input *TargetInput) (*huma.StreamResponse, error) {
	target := input.Target
	logger := h.logger.With("target", target)

	return h.Stream(func(sse humastar.SSE) {
		bridge := leaflet.NewBridge(h.Renderer, h.cfg.AnimationSeconds, logger)

		opts := []mapview.Option{
			mapview.WithLogger(logger),
			mapview.OnDetailRequested(h.bus.PublishDetail),
		}
		if h.observer != nil {
			opts = append(opts, mapview.WithObserver(h.observer))
		}
		var feed *service.Feed
		if h.source != nil {
			feed = service.NewFeed(h.source, h.clock, logger)
			opts = append(opts, feed.Options()...)
		}

		view := mapview.New(h.cfg, h.regions.Regions(), bridge, opts...)
		if err := h.registry.Mount(target, view); err != nil {
			logger.Error("mounting map view", "error", err)
			sse.Error(err.Error())
			return
		}
		h.bus.Publish(service.Event{Kind: service.EventMounted, Target: target})
		defer func() {
			// A remount already owns the target; its stream reports the unmount.
			if h.registry.Unmount(target, view) {
				h.bus.Publish(service.Event{Kind: service.EventUnmounted, Target: target})
			}
		}()

		var dates []service.DateCount
		if feed != nil {
			feed.Attach(view)
			if err := feed.Start(ctx); err != nil {
				logger.Warn("starting observation feed", "error", err)
				sse.Error("Observations are unavailable")
			}
			dates = feed.Dates()
		} else {
			if err := view.SetDate(mapview.FormatDay(h.clock.Now())); err != nil {
				logger.Warn("setting initial date", "error", err)
			}
		}

		if st, ok := view.State(); ok {
			sse.Patch(h.dateOptions(dates, st.Date), "#date-select")
			sse.Signals(map[string]any{"date": st.Date})
		}

		for {
			if err := h.flush(sse, bridge); err != nil {
				logger.Debug("viewer stream closed", "error", err)
				return
			}
			if bridge.Destroyed() {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-bridge.Notify():
			}
		}
	}), nil
}

// flush sends everything the bridge queued since the last flush.
func (h *Handler) flush(sse humastar.SSE, bridge *leaflet.Bridge) error {
	batch := bridge.Drain()
	if batch.Empty() {
		return nil
	}
	if batch.Status != nil {
		if err := h.PatchFragment(sse, "status-line", *batch.Status, "#map-status"); err != nil {
			return fmt.Errorf("rendering status: %w", err)
		}
	}
	if len(batch.Commands) > 0 {
		return sse.Event(leaflet.CommandsEvent, batch)
	}
	return nil
}

// dateOptions renders the date picker: every observed date with its count,
// plus the selected date when no observation carries it.
func (h *Handler) dateOptions(dates []service.DateCount, selected string) string {
	opts := make([]humastar.SelectOptionData, 0, len(dates)+1)
	found := false
	for _, d := range dates {
		found = found || d.Date == selected
		opts = append(opts, humastar.SelectOptionData{
			Value:    d.Date,
			Label:    fmt.Sprintf("%s (%d)", d.Date, d.Count),
			Selected: d.Date == selected,
		})
	}
	if !found && selected != "" {
		opts = append(opts, humastar.SelectOptionData{Value: selected, Label: selected, Selected: true})
	}
	// Newest first.
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Value > opts[j].Value })
	return h.RenderSelect("", opts)
}
