// Package mapview is the server-side controller of the interactive region map.
//
// A Controller owns one mounted map: its ViewState, the region layer, the
// interaction gate and the marker set. All camera and layer side effects go
// through the Widget interface, which the leaflet package implements by
// pushing commands to the browser.
//
// State transitions are defined once, in Reduce. The Controller applies the
// resulting effects and re-derives markers, control visibility and the status
// line after every transition.
package mapview

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
)

// DayLayout is the calendar-day format used for observation dates.
const DayLayout = "2006-01-02"

// FormatDay formats t as a calendar day.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay validates a calendar day string.
func ParseDay(s string) (string, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FormatDay(t), nil
}

// LatLng is a geographic coordinate in Leaflet order.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Point converts to an orb point (lon, lat).
func (ll LatLng) Point() orb.Point {
	return orb.Point{ll.Lng, ll.Lat}
}

// LatLngOf converts an orb point (lon, lat).
func LatLngOf(p orb.Point) LatLng {
	return LatLng{Lat: p.Lat(), Lng: p.Lon()}
}

// Region is an administrative subdivision. Regions are immutable once
// loaded; selection equality uses ID.
type Region struct {
	ID       string
	Name     string
	Geometry orb.Geometry
}

// Bound returns the geographic bounds of the region.
func (r Region) Bound() orb.Bound {
	if r.Geometry == nil {
		return orb.Bound{}
	}
	return r.Geometry.Bound()
}

// Observation is a single point observation. Observations arrive from the
// store as a read-only slice; the view never mutates them.
type Observation struct {
	ID          int64   `json:"id" yaml:"id" doc:"Observation identifier" example:"1"`
	Location    string  `json:"location" yaml:"location" doc:"Observation site name" example:"Ormajärvi"`
	Latitude    float64 `json:"latitude" yaml:"latitude" doc:"WGS84 latitude" example:"61.09"`
	Longitude   float64 `json:"longitude" yaml:"longitude" doc:"WGS84 longitude" example:"24.95"`
	Date        string  `json:"date" yaml:"date" doc:"Calendar day (YYYY-MM-DD)" example:"2025-06-28"`
	Operator    string  `json:"operator,omitempty" yaml:"operator" doc:"Operating organisation"`
	Description string  `json:"description,omitempty" yaml:"description" doc:"Free-text description"`
	Level       *int    `json:"level,omitempty" yaml:"level" doc:"Observed level, absent when not measured" example:"3"`
	Upkeep      string  `json:"upkeep,omitempty" yaml:"upkeep" doc:"Upkeep status"`
	RegionID    string  `json:"regionId,omitempty" yaml:"region" doc:"Region the observation lies in" example:"uusimaa"`
}

// Position returns the observation coordinate.
func (o Observation) Position() LatLng {
	return LatLng{Lat: o.Latitude, Lng: o.Longitude}
}

// DetailRequest is emitted when a marker is clicked, for the summary panel.
type DetailRequest struct {
	Target       string  `json:"target"`
	Date         string  `json:"date"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName string  `json:"locationName"`
}
