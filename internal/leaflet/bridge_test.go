package leaflet

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-lakemap/internal/mapview"
	"github.com/joeblew999/plat-lakemap/internal/templates"
	"github.com/joeblew999/plat-lakemap/web"
)

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()
	r, err := templates.New(web.FS)
	require.NoError(t, err)
	return NewBridge(r, 0.5, nil)
}

func ops(b Batch) []string {
	out := make([]string, len(b.Commands))
	for i, c := range b.Commands {
		out[i] = c.Op
	}
	return out
}

func TestBridgeImplementsWidget(t *testing.T) {
	var _ mapview.Widget = (*Bridge)(nil)
}

func TestBridgeMountSequence(t *testing.T) {
	b := newTestBridge(t)
	regions := []mapview.Region{{ID: "a", Name: "A", Geometry: orb.Polygon{{{22, 60}, {24, 60}, {24, 62}, {22, 62}, {22, 60}}}}}
	c := mapview.New(mapview.DefaultConfig(), regions, b)

	require.NoError(t, c.Mount("map-1"))

	select {
	case <-b.Notify():
	default:
		t.Fatal("expected a notification after mount")
	}

	batch := b.Drain()
	assert.Equal(t, "map-1", batch.Target)
	assert.Equal(t, []string{"create", "tileLayer", "mask", "regions", "interaction", "controls"}, ops(batch))
	require.NotNil(t, batch.Status)
	assert.Equal(t, mapview.SelectHint, *batch.Status)

	assert.True(t, b.Drain().Empty())
}

func TestBridgeCommandsMarshal(t *testing.T) {
	b := newTestBridge(t)
	require.NoError(t, b.Create("map-1", mapview.CreateOptions{Zoom: 5.4}))
	b.FitBounds(orb.Bound{Min: orb.Point{22, 60}, Max: orb.Point{24, 62}}, 50, true)
	b.AddMarker(mapview.Marker{
		ID:       7,
		Position: mapview.LatLng{Lat: 61.09, Lng: 24.95},
		Popup:    mapview.PopupFor(mapview.Observation{ID: 7, Location: "Ormajärvi", Date: "2025-06-28"}),
	})

	data, err := json.Marshal(b.Drain())
	require.NoError(t, err)

	var decoded struct {
		Target   string `json:"target"`
		Commands []struct {
			Op   string          `json:"op"`
			Args json.RawMessage `json:"args"`
		} `json:"commands"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Commands, 3)

	var fit struct {
		Bounds  [2][2]float64 `json:"bounds"`
		Padding int           `json:"padding"`
	}
	require.NoError(t, json.Unmarshal(decoded.Commands[1].Args, &fit))
	assert.Equal(t, [2][2]float64{{60, 22}, {62, 24}}, fit.Bounds, "bounds are [lat, lng] pairs")
	assert.Equal(t, 50, fit.Padding)

	var marker struct {
		ID    int64  `json:"id"`
		Popup string `json:"popup"`
	}
	require.NoError(t, json.Unmarshal(decoded.Commands[2].Args, &marker))
	assert.Equal(t, int64(7), marker.ID)
	assert.Contains(t, marker.Popup, "Ormajärvi")
	assert.Contains(t, marker.Popup, mapview.NotAvailable)
}

func TestBridgeDestroyOnce(t *testing.T) {
	b := newTestBridge(t)
	require.NoError(t, b.Create("map-1", mapview.CreateOptions{}))
	b.Drain()

	b.Destroy()
	b.Destroy()
	assert.True(t, b.Destroyed())
	assert.Equal(t, []string{"destroy"}, ops(b.Drain()))

	require.NoError(t, b.Create("map-1", mapview.CreateOptions{}))
	assert.False(t, b.Destroyed())
}

func TestBridgeRejectsEmptyTarget(t *testing.T) {
	b := newTestBridge(t)
	assert.Error(t, b.Create("", mapview.CreateOptions{}))
}

func TestBridgeRemountCarriesNewerGeneration(t *testing.T) {
	old, fresh := newTestBridge(t), newTestBridge(t)
	assert.Zero(t, old.Generation())

	require.NoError(t, old.Create("map-1", mapview.CreateOptions{}))
	require.NoError(t, fresh.Create("map-1", mapview.CreateOptions{}))
	old.Destroy()
	fresh.SetStatus("ready")
	fresh.SetControls(mapview.Controls{})

	stale := old.Drain()
	require.Equal(t, []string{"create", "destroy"}, ops(stale))
	live := fresh.Drain()
	require.Equal(t, []string{"create", "controls"}, ops(live))

	assert.Greater(t, live.Commands[0].Gen, stale.Commands[1].Gen,
		"a destroy from the replaced map must be older than the new map")
	for _, c := range live.Commands {
		assert.Equal(t, fresh.Generation(), c.Gen)
	}

	data, err := json.Marshal(stale.Commands[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"gen":`)
}
