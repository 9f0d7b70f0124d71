package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CreateOptions configures a new map instance.
type CreateOptions struct {
	Center    LatLng    `json:"center"`
	Zoom      float64   `json:"zoom"`
	MinZoom   float64   `json:"minZoom"`
	MaxZoom   float64   `json:"maxZoom"`
	MaxBounds [2]LatLng `json:"maxBounds"`
}

// Interaction lists which input modes move the camera.
type Interaction struct {
	Dragging        bool `json:"dragging"`
	ScrollWheelZoom bool `json:"scrollWheelZoom"`
	DoubleClickZoom bool `json:"doubleClickZoom"`
	TouchZoom       bool `json:"touchZoom"`
	Keyboard        bool `json:"keyboard"`
	BoxZoom         bool `json:"boxZoom"`
}

// Controls lists which on-map controls are visible.
type Controls struct {
	Zoom    bool `json:"zoom"`
	ZoomOut bool `json:"zoomOut"`
}

// Marker is a point annotation bound to one observation.
type Marker struct {
	ID       int64
	Position LatLng
	Popup    PopupData
}

// Widget is the map library surface the controller drives. Camera calls are
// fire-and-forget: a new animation overrides one in flight and failures are
// not reported.
type Widget interface {
	// Create binds a new map instance to target, replacing any stale binding.
	Create(target string, opts CreateOptions) error
	// Destroy releases the map instance. It must be safe to call repeatedly.
	Destroy()

	SetView(center LatLng, zoom float64, animate bool)
	FitBounds(b orb.Bound, padding int, animate bool)

	SetInteraction(i Interaction)
	SetControls(c Controls)

	AddTileLayer(url, attribution string)
	AddMask(f *geojson.Feature, style Style)
	AddRegions(regions []Region, style Style)
	SetRegionStyle(id string, style Style)
	// SetTooltip shows text over the region; an empty text hides it.
	SetTooltip(regionID, text string)

	AddMarker(m Marker)
	RemoveMarker(id int64)

	SetStatus(text string)
}
