package mapview

import "math"

// ViewState is the mutable state of one mounted map. It is created on mount
// and discarded on unmount; it changes only through Reduce.
type ViewState struct {
	Zoom               float64
	Center             LatLng
	Selected           *Region
	InteractionEnabled bool
	FirstSelectionMade bool
	Date               string
	Gesture            bool
}

// SelectedID returns the selected region id, or "" when none is selected.
func (s ViewState) SelectedID() string {
	if s.Selected == nil {
		return ""
	}
	return s.Selected.ID
}

// InitialState returns the locked whole-country state.
func InitialState(cfg Config) ViewState {
	return ViewState{
		Zoom:   cfg.Zoom,
		Center: cfg.Center,
	}
}

// Event is an input to Reduce.
type Event interface {
	event()
}

// RegionClicked is a click on a region boundary.
type RegionClicked struct{ Region Region }

// ZoomChanged reports the live zoom level and center after a zoom settles.
type ZoomChanged struct {
	Zoom   float64
	Center LatLng
}

// Moved reports the live center after a pan settles.
type Moved struct{ Center LatLng }

// ResetRequested is a press of the zoom-out control.
type ResetRequested struct{}

// DateChanged is a new selected date, from the date picker or upstream.
type DateChanged struct{ Date string }

// GestureChanged marks the start or end of a drag or zoom gesture.
type GestureChanged struct{ Active bool }

func (RegionClicked) event()  {}
func (ZoomChanged) event()    {}
func (Moved) event()          {}
func (ResetRequested) event() {}
func (DateChanged) event()    {}
func (GestureChanged) event() {}

// Effect is a side effect requested by Reduce.
type Effect interface {
	effect()
}

// SetViewEffect moves the camera to a center and zoom.
type SetViewEffect struct {
	Center  LatLng
	Zoom    float64
	Animate bool
}

// FitBoundsEffect fits the camera to a region.
type FitBoundsEffect struct{ Region Region }

// ClearMarkersEffect removes every attached marker.
type ClearMarkersEffect struct{}

// DropObservationsEffect discards the held observation snapshot, which was
// loaded for a selection that no longer applies.
type DropObservationsEffect struct{}

// SelectionChangedEffect notifies upstream of a new selection (nil = none).
type SelectionChangedEffect struct{ Region *Region }

// DateSelectedEffect notifies upstream of a date chosen in the view.
type DateSelectedEffect struct{ Date string }

// RelockedEffect records that the zoom floor re-locked the camera.
type RelockedEffect struct{}

func (SetViewEffect) effect()          {}
func (FitBoundsEffect) effect()        {}
func (ClearMarkersEffect) effect()     {}
func (DropObservationsEffect) effect() {}
func (SelectionChangedEffect) effect() {}
func (DateSelectedEffect) effect()     {}
func (RelockedEffect) effect()         {}

const coordEpsilon = 1e-9

func atCenter(a, b LatLng) bool {
	return math.Abs(a.Lat-b.Lat) < coordEpsilon && math.Abs(a.Lng-b.Lng) < coordEpsilon
}

// AtMinZoom reports whether zoom has reached the configured floor.
func AtMinZoom(zoom float64, cfg Config) bool {
	return zoom <= cfg.MinZoom+coordEpsilon
}

// Reduce is the transition table of the view: (event, state) → (state, effects).
// The re-lock on minimum zoom is defined here and nowhere else.
func Reduce(cfg Config, s ViewState, ev Event) (ViewState, []Effect) {
	switch e := ev.(type) {
	case RegionClicked:
		if s.Selected != nil && s.Selected.ID == e.Region.ID {
			s.Selected = nil
			return s, []Effect{
				DropObservationsEffect{},
				SelectionChangedEffect{},
				SetViewEffect{Center: cfg.Center, Zoom: cfg.Zoom, Animate: true},
			}
		}

		region := e.Region
		s.Selected = &region
		if !s.FirstSelectionMade {
			s.FirstSelectionMade = true
			s.InteractionEnabled = true
		}
		return s, []Effect{
			SelectionChangedEffect{Region: &region},
			FitBoundsEffect{Region: region},
		}

	case ZoomChanged:
		s.Zoom = e.Zoom
		s.Center = e.Center
		if !AtMinZoom(e.Zoom, cfg) {
			return s, nil
		}
		return relock(cfg, s)

	case Moved:
		s.Center = e.Center
		return s, nil

	case ResetRequested:
		effects := []Effect{ClearMarkersEffect{}, DropObservationsEffect{}}
		if s.Selected != nil {
			s.Selected = nil
			effects = append(effects, SelectionChangedEffect{})
		}
		effects = append(effects, SetViewEffect{Center: cfg.Center, Zoom: cfg.Zoom, Animate: true})
		return s, effects

	case DateChanged:
		if e.Date == s.Date {
			return s, nil
		}
		s.Date = e.Date
		return s, []Effect{DateSelectedEffect{Date: e.Date}}

	case GestureChanged:
		s.Gesture = e.Active
		return s, nil
	}
	return s, nil
}

// relock clears selection and markers and recenters. Firing it again at the
// boundary produces the same state.
func relock(cfg Config, s ViewState) (ViewState, []Effect) {
	effects := []Effect{RelockedEffect{}, ClearMarkersEffect{}, DropObservationsEffect{}}
	if s.Selected != nil {
		s.Selected = nil
		effects = append(effects, SelectionChangedEffect{})
	}
	if !atCenter(s.Center, cfg.Center) {
		s.Center = cfg.Center
		s.Zoom = cfg.Zoom
		effects = append(effects, SetViewEffect{Center: cfg.Center, Zoom: cfg.Zoom})
	}
	return s, effects
}

// InteractionFor derives the enabled input modes from state. Before the first
// selection everything is off; afterwards touch zoom is held off at the zoom
// floor.
func InteractionFor(s ViewState, cfg Config) Interaction {
	if !s.InteractionEnabled {
		return Interaction{}
	}
	return Interaction{
		Dragging:        true,
		ScrollWheelZoom: true,
		DoubleClickZoom: true,
		TouchZoom:       !AtMinZoom(s.Zoom, cfg),
		Keyboard:        true,
		BoxZoom:         true,
	}
}

// ControlsFor derives control visibility from state: the zoom control and the
// zoom-out button show only once unlocked and above the zoom floor.
func ControlsFor(s ViewState, cfg Config) Controls {
	visible := s.InteractionEnabled && !AtMinZoom(s.Zoom, cfg)
	return Controls{Zoom: visible, ZoomOut: visible}
}
