package mapview

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrNotMounted is returned by event entry points before Mount.
	ErrNotMounted = errors.New("map view is not mounted")
	// ErrUnknownRegion is returned for clicks on a region id that is not loaded.
	ErrUnknownRegion = errors.New("unknown region")
	// ErrUnknownMarker is returned for clicks on a marker that is not attached.
	ErrUnknownMarker = errors.New("unknown marker")
)

// SelectHint is the status line shown before any date is known.
const SelectHint = "Select region"

// Observer receives view lifecycle and interaction counts.
type Observer interface {
	Mounted()
	Unmounted()
	RegionSelected()
	Relocked()
	MarkersSynced(n int)
	DetailRequested()
}

type nopObserver struct{}

func (nopObserver) Mounted()          {}
func (nopObserver) Unmounted()        {}
func (nopObserver) RegionSelected()   {}
func (nopObserver) Relocked()         {}
func (nopObserver) MarkersSynced(int) {}
func (nopObserver) DetailRequested()  {}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for transition tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// OnRegionSelected registers the upstream selection callback. It receives nil
// when the selection is cleared.
func OnRegionSelected(fn func(*Region)) Option {
	return func(c *Controller) { c.onRegionSelected = fn }
}

// OnDateChange registers the upstream date binding callback.
func OnDateChange(fn func(date string)) Option {
	return func(c *Controller) { c.onDateChange = fn }
}

// OnDetailRequested registers the marker detail sink. Delivery is
// fire-and-forget.
func OnDetailRequested(fn func(DetailRequest)) Option {
	return func(c *Controller) { c.onDetail = fn }
}

type syncKey struct {
	valid   bool
	date    string
	region  string
	version uint64
}

// Controller owns one map instance and its ViewState. Methods are safe for
// concurrent use; events are applied one at a time in arrival order.
type Controller struct {
	cfg    Config
	widget Widget
	mask   *Mask
	layer  *RegionLayer

	logger   *slog.Logger
	observer Observer

	onRegionSelected func(*Region)
	onDateChange     func(string)
	onDetail         func(DetailRequest)

	mu           sync.Mutex
	target       string
	bound        bool
	state        *ViewState
	markers      *MarkerManager
	observations []Observation
	obsVersion   uint64
	synced       syncKey
	status       string
	interaction  *Interaction
	controls     *Controls
}

// New creates an unmounted controller. The mask is computed here, once per
// region set.
func New(cfg Config, regions []Region, w Widget, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg,
		widget:   w,
		mask:     NewMask(regions),
		layer:    NewRegionLayer(w, cfg, regions),
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the map defaults.
func (c *Controller) Config() Config {
	return c.cfg
}

// Mount creates the map instance on target and initializes a fresh
// ViewState. A failed mount is torn down before the error is returned.
func (c *Controller) Mount(target string) error {
	if target == "" {
		return errors.New("mount target is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != nil {
		c.observer.Unmounted()
	}
	c.teardown()

	c.target = target
	c.bound = true
	err := c.widget.Create(target, CreateOptions{
		Center:    c.cfg.Center,
		Zoom:      c.cfg.Zoom,
		MinZoom:   c.cfg.MinZoom,
		MaxZoom:   c.cfg.MaxZoom,
		MaxBounds: c.cfg.MaxBounds,
	})
	if err != nil {
		c.teardown()
		return fmt.Errorf("creating map on %q: %w", target, err)
	}

	c.widget.AddTileLayer(c.cfg.TileURL, c.cfg.TileAttribution)
	c.widget.AddMask(c.mask.Feature(), c.cfg.MaskStyle)
	c.layer.Reset()
	c.layer.Attach()

	st := InitialState(c.cfg)
	c.state = &st
	c.markers = NewMarkerManager(c.widget)
	c.refresh()

	c.observer.Mounted()
	c.logger.Debug("map view mounted", "target", target, "regions", len(c.layer.Regions()), "mask_holes", c.mask.Holes())
	return nil
}

// Unmount destroys the map instance and drops all view state. It is safe to
// call repeatedly and after a failed Mount.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasMounted := c.state != nil
	c.teardown()
	if wasMounted {
		c.observer.Unmounted()
		c.logger.Debug("map view unmounted", "target", c.target)
	}
}

func (c *Controller) teardown() {
	if c.bound {
		c.widget.Destroy()
		c.bound = false
	}
	c.state = nil
	c.markers = nil
	c.observations = nil
	c.synced = syncKey{}
	c.status = ""
	c.interaction = nil
	c.controls = nil
}

// Mounted reports whether a map instance is live.
func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != nil
}

// Target returns the DOM target id of the last mount.
func (c *Controller) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// State returns a copy of the current ViewState.
func (c *Controller) State() (ViewState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return ViewState{}, false
	}
	return *c.state, true
}

// SelectedRegion returns the selected region, or nil.
func (c *Controller) SelectedRegion() *Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil || c.state.Selected == nil {
		return nil
	}
	r := *c.state.Selected
	return &r
}

// Regions returns the loaded regions.
func (c *Controller) Regions() []Region {
	return c.layer.Regions()
}

// Mask returns the cached mask.
func (c *Controller) Mask() *Mask {
	return c.mask
}

// Status returns the current status line.
func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// MarkerIDs returns the ids of attached markers.
func (c *Controller) MarkerIDs() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.markers == nil {
		return nil
	}
	return c.markers.IDs()
}

// ClickRegion toggles the selection of a region.
func (c *Controller) ClickRegion(id string) error {
	r, ok := c.layer.Region(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRegion, id)
	}
	return c.handle(RegionClicked{Region: r})
}

// EnterRegion handles the pointer entering a region.
func (c *Controller) EnterRegion(id string) error {
	return c.with(func() {
		c.layer.Enter(id, c.state.Gesture)
	})
}

// LeaveRegion handles the pointer leaving a region.
func (c *Controller) LeaveRegion(id string) error {
	return c.with(func() {
		c.layer.Leave(id, c.state.SelectedID())
	})
}

// Zoomed applies a settled zoom level reported by the map.
func (c *Controller) Zoomed(zoom float64, center LatLng) error {
	return c.handle(ZoomChanged{Zoom: zoom, Center: center})
}

// Moved applies a settled pan reported by the map.
func (c *Controller) Moved(center LatLng) error {
	return c.handle(Moved{Center: center})
}

// Reset handles the zoom-out control.
func (c *Controller) Reset() error {
	return c.handle(ResetRequested{})
}

// SetDate sets the selected date, from the picker or from upstream.
func (c *Controller) SetDate(date string) error {
	return c.handle(DateChanged{Date: date})
}

// Gesture marks a drag or zoom gesture as started or finished.
func (c *Controller) Gesture(active bool) error {
	return c.handle(GestureChanged{Active: active})
}

// SetObservations replaces the held observation snapshot. The latest call
// wins; callers are responsible for ordering concurrent fetches.
func (c *Controller) SetObservations(obs []Observation) error {
	return c.with(func() {
		c.observations = obs
		c.obsVersion++
	})
}

// ClickMarker recenters on a marker and emits a detail request.
func (c *Controller) ClickMarker(id int64) error {
	var (
		req   DetailRequest
		found bool
	)
	err := c.with(func() {
		o, ok := c.markers.Lookup(id)
		if !ok {
			return
		}
		found = true
		c.widget.SetView(o.Position(), c.cfg.MarkerZoom, true)
		req = DetailRequest{
			Target:       c.target,
			Date:         o.Date,
			Latitude:     o.Latitude,
			Longitude:    o.Longitude,
			LocationName: o.Location,
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %d", ErrUnknownMarker, id)
	}

	c.observer.DetailRequested()
	if c.onDetail != nil {
		c.onDetail(req)
	}
	return nil
}

// with runs fn under the lock on a mounted view and refreshes derived output.
func (c *Controller) with(fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return ErrNotMounted
	}
	fn()
	c.refresh()
	return nil
}

// handle applies one event. Upstream callbacks run after the lock is
// released so they may call back into the controller.
func (c *Controller) handle(ev Event) error {
	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return ErrNotMounted
	}
	notify := c.dispatch(ev)
	c.mu.Unlock()

	for _, fn := range notify {
		fn()
	}
	return nil
}

func (c *Controller) dispatch(ev Event) []func() {
	prev := *c.state
	next, effects := Reduce(c.cfg, prev, ev)
	*c.state = next

	var notify []func()
	for _, eff := range effects {
		switch e := eff.(type) {
		case SetViewEffect:
			c.widget.SetView(e.Center, e.Zoom, e.Animate)
		case FitBoundsEffect:
			c.widget.FitBounds(e.Region.Bound(), c.cfg.FitPadding, true)
		case ClearMarkersEffect:
			c.markers.Clear()
		case DropObservationsEffect:
			c.observations = nil
			c.obsVersion++
		case SelectionChangedEffect:
			region := e.Region
			if region != nil {
				c.observer.RegionSelected()
			}
			if c.onRegionSelected != nil {
				notify = append(notify, func() { c.onRegionSelected(region) })
			}
		case DateSelectedEffect:
			date := e.Date
			if c.onDateChange != nil {
				notify = append(notify, func() { c.onDateChange(date) })
			}
		case RelockedEffect:
			c.observer.Relocked()
			c.logger.Debug("zoom floor reached, camera re-locked", "target", c.target, "zoom", next.Zoom)
		}
	}

	c.layer.SelectionChanged(prev.SelectedID(), next.SelectedID())
	if prev.Gesture != next.Gesture {
		c.layer.GestureChanged(next.Gesture)
	}
	c.refresh()
	return notify
}

// refresh re-derives markers, status line, input modes and controls from the
// current state. Markers are rebuilt only when (date, region, observations)
// changed since the last sync.
func (c *Controller) refresh() {
	s := c.state
	key := syncKey{valid: true, date: s.Date, region: s.SelectedID(), version: c.obsVersion}
	if key != c.synced {
		n := c.markers.Sync(s.Date, s.Selected, c.observations)
		c.synced = key
		c.observer.MarkersSynced(n)
	}

	if status := c.statusLine(); status != c.status {
		c.status = status
		c.widget.SetStatus(status)
	}

	if in := InteractionFor(*s, c.cfg); c.interaction == nil || *c.interaction != in {
		c.interaction = &in
		c.widget.SetInteraction(in)
	}
	if ctl := ControlsFor(*s, c.cfg); c.controls == nil || *c.controls != ctl {
		c.controls = &ctl
		c.widget.SetControls(ctl)
	}
}

func (c *Controller) statusLine() string {
	s := c.state
	if s.Date == "" {
		return SelectHint
	}
	name := c.cfg.Country
	if s.Selected != nil {
		name = s.Selected.Name
	}
	return fmt.Sprintf("%s: %d observations on %s", name, c.markers.Len(), s.Date)
}
