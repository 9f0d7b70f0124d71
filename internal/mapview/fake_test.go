package mapview

import (
	"errors"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// fakeWidget records widget calls and simulates camera position.
type fakeWidget struct {
	createErr   error
	createDelay time.Duration

	created   int
	destroyed int
	target    string

	center  LatLng
	zoom    float64
	fitted  []orb.Bound
	views   []SetViewEffect
	markers map[int64]Marker
	styles  map[string]Style
	tooltip map[string]string
	status  string

	interaction Interaction
	controls    Controls
	masks       int
	tiles       int
	regions     int
}

func newFakeWidget() *fakeWidget {
	return &fakeWidget{
		markers: make(map[int64]Marker),
		styles:  make(map[string]Style),
		tooltip: make(map[string]string),
	}
}

var errCreate = errors.New("map container missing")

func (w *fakeWidget) Create(target string, opts CreateOptions) error {
	if w.createErr != nil {
		return w.createErr
	}
	time.Sleep(w.createDelay)
	w.created++
	w.target = target
	w.center = opts.Center
	w.zoom = opts.Zoom
	w.markers = make(map[int64]Marker)
	return nil
}

func (w *fakeWidget) Destroy() { w.destroyed++ }

func (w *fakeWidget) SetView(center LatLng, zoom float64, animate bool) {
	w.center = center
	w.zoom = zoom
	w.views = append(w.views, SetViewEffect{Center: center, Zoom: zoom, Animate: animate})
}

func (w *fakeWidget) FitBounds(b orb.Bound, padding int, animate bool) {
	w.fitted = append(w.fitted, b)
	w.center = LatLngOf(b.Center())
}

func (w *fakeWidget) SetInteraction(i Interaction)         { w.interaction = i }
func (w *fakeWidget) SetControls(c Controls)               { w.controls = c }
func (w *fakeWidget) AddTileLayer(url, attribution string) { w.tiles++ }
func (w *fakeWidget) AddMask(f *geojson.Feature, s Style)  { w.masks++ }
func (w *fakeWidget) AddRegions(r []Region, s Style)       { w.regions += len(r) }
func (w *fakeWidget) SetRegionStyle(id string, s Style)    { w.styles[id] = s }
func (w *fakeWidget) SetTooltip(id, text string)           { w.tooltip[id] = text }
func (w *fakeWidget) AddMarker(m Marker)                   { w.markers[m.ID] = m }
func (w *fakeWidget) RemoveMarker(id int64)                { delete(w.markers, id) }
func (w *fakeWidget) SetStatus(text string)                { w.status = text }

func square(minLon, minLat, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLon, minLat},
		{minLon + size, minLat},
		{minLon + size, minLat + size},
		{minLon, minLat + size},
		{minLon, minLat},
	}}
}

func testRegions() []Region {
	return []Region{
		{ID: "a", Name: "A", Geometry: square(22, 60, 2)},
		{ID: "b", Name: "B", Geometry: orb.MultiPolygon{square(26, 62, 1), square(28, 64, 1)}},
	}
}

func intPtr(v int) *int { return &v }
