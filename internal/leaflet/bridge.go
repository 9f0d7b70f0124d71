// Package leaflet implements mapview.Widget for a Leaflet map running in the
// browser. Calls are queued as JSON commands and drained by the viewer SSE
// stream, which forwards them to web/static/mapview.js.
package leaflet

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-lakemap/internal/mapview"
	"github.com/joeblew999/plat-lakemap/internal/templates"
)

// CommandsEvent is the DOM event name the browser shim listens on.
const CommandsEvent = "lakemap-commands"

// Command is one map operation for the browser shim. Gen is the mount
// generation the command belongs to; the shim drops commands older than the
// map it currently holds for the target.
type Command struct {
	Op   string `json:"op"`
	Gen  uint64 `json:"gen"`
	Args any    `json:"args,omitempty"`
}

// generations is shared by all bridges so a remount on the same target
// always carries a newer generation than the map it replaces.
var generations atomic.Uint64

// Batch is everything queued since the last Drain.
type Batch struct {
	Target   string    `json:"target"`
	Commands []Command `json:"commands"`
	// Status is non-nil when the status line changed.
	Status *string `json:"-"`
}

// Empty reports whether the batch carries nothing to send.
func (b Batch) Empty() bool {
	return len(b.Commands) == 0 && b.Status == nil
}

var errNoTarget = errors.New("leaflet: empty target")

// Bridge queues widget calls for one browser map. It is safe for concurrent
// use: the controller writes while the stream goroutine drains.
type Bridge struct {
	renderer *templates.Renderer
	duration float64
	logger   *slog.Logger

	mu        sync.Mutex
	target    string
	gen       uint64
	queue     []Command
	status    *string
	destroyed bool
	notify    chan struct{}
}

// NewBridge creates a bridge. duration is the camera animation length in
// seconds; r renders marker popups.
func NewBridge(r *templates.Renderer, duration float64, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		renderer: r,
		duration: duration,
		logger:   logger,
		notify:   make(chan struct{}, 1),
	}
}

// Notify is signalled whenever commands are queued.
func (b *Bridge) Notify() <-chan struct{} {
	return b.notify
}

// Drain returns and clears the queued commands.
func (b *Bridge) Drain() Batch {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch := Batch{Target: b.target, Commands: b.queue, Status: b.status}
	b.queue = nil
	b.status = nil
	return batch
}

// Generation returns the mount generation of the current map, or zero before
// the first Create.
func (b *Bridge) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// Destroyed reports whether the map was destroyed and not created again.
func (b *Bridge) Destroyed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.destroyed
}

func (b *Bridge) push(op string, args any) {
	b.mu.Lock()
	b.queue = append(b.queue, Command{Op: op, Gen: b.gen, Args: args})
	b.mu.Unlock()
	b.signal()
}

func (b *Bridge) signal() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Create implements mapview.Widget.
func (b *Bridge) Create(target string, opts mapview.CreateOptions) error {
	if target == "" {
		return errNoTarget
	}
	b.mu.Lock()
	b.target = target
	b.gen = generations.Add(1)
	b.destroyed = false
	b.queue = append(b.queue, Command{Op: "create", Gen: b.gen, Args: map[string]any{"options": opts}})
	b.mu.Unlock()
	b.signal()
	return nil
}

// Destroy implements mapview.Widget.
func (b *Bridge) Destroy() {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return
	}
	b.destroyed = true
	b.queue = append(b.queue, Command{Op: "destroy", Gen: b.gen})
	b.mu.Unlock()
	b.signal()
}

// SetView implements mapview.Widget.
func (b *Bridge) SetView(center mapview.LatLng, zoom float64, animate bool) {
	b.push("setView", map[string]any{
		"center":   center,
		"zoom":     zoom,
		"animate":  animate,
		"duration": b.duration,
	})
}

// FitBounds implements mapview.Widget.
func (b *Bridge) FitBounds(bound orb.Bound, padding int, animate bool) {
	b.push("fitBounds", map[string]any{
		"bounds": [2][2]float64{
			{bound.Min.Lat(), bound.Min.Lon()},
			{bound.Max.Lat(), bound.Max.Lon()},
		},
		"padding":  padding,
		"animate":  animate,
		"duration": b.duration,
	})
}

// SetInteraction implements mapview.Widget.
func (b *Bridge) SetInteraction(i mapview.Interaction) {
	b.push("interaction", i)
}

// SetControls implements mapview.Widget.
func (b *Bridge) SetControls(c mapview.Controls) {
	b.push("controls", c)
}

// AddTileLayer implements mapview.Widget.
func (b *Bridge) AddTileLayer(url, attribution string) {
	b.push("tileLayer", map[string]string{"url": url, "attribution": attribution})
}

// AddMask implements mapview.Widget.
func (b *Bridge) AddMask(f *geojson.Feature, style mapview.Style) {
	b.push("mask", map[string]any{"feature": f, "style": style})
}

// AddRegions implements mapview.Widget. Regions travel as one
// FeatureCollection with id and name properties.
func (b *Bridge) AddRegions(regions []mapview.Region, style mapview.Style) {
	fc := geojson.NewFeatureCollection()
	for _, r := range regions {
		if r.Geometry == nil {
			continue
		}
		f := geojson.NewFeature(r.Geometry)
		f.Properties["id"] = r.ID
		f.Properties["name"] = r.Name
		fc.Append(f)
	}
	b.push("regions", map[string]any{"features": fc, "style": style})
}

// SetRegionStyle implements mapview.Widget.
func (b *Bridge) SetRegionStyle(id string, style mapview.Style) {
	b.push("regionStyle", map[string]any{"id": id, "style": style})
}

// SetTooltip implements mapview.Widget.
func (b *Bridge) SetTooltip(regionID, text string) {
	b.push("tooltip", map[string]string{"id": regionID, "text": text})
}

// AddMarker implements mapview.Widget.
func (b *Bridge) AddMarker(m mapview.Marker) {
	popup, err := b.renderer.Render("marker-popup", m.Popup)
	if err != nil {
		b.logger.Warn("rendering marker popup", "id", m.ID, "error", err)
		popup = m.Popup.Location
	}
	b.push("addMarker", map[string]any{
		"id":    m.ID,
		"lat":   m.Position.Lat,
		"lng":   m.Position.Lng,
		"popup": popup,
	})
}

// RemoveMarker implements mapview.Widget.
func (b *Bridge) RemoveMarker(id int64) {
	b.push("removeMarker", map[string]int64{"id": id})
}

// SetStatus implements mapview.Widget. The status line is patched into the
// page as HTML rather than sent as a map command.
func (b *Bridge) SetStatus(text string) {
	b.mu.Lock()
	b.status = &text
	b.mu.Unlock()
	b.signal()
}
