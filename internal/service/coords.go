package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joeblew999/plat-lakemap/internal/mapview"
)

// dmsPart matches one axis in degrees-minutes-seconds notation, e.g.
// 61° 5' 24.14" N.
var dmsPart = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*°\s*(?:(\d+(?:\.\d+)?)\s*['′]\s*)?(?:(\d+(?:\.\d+)?)\s*(?:"|″|'')\s*)?([NSEW])\s*$`)

// ParseCoordinates parses "lat, lng" in decimal degrees or in
// degrees-minutes-seconds with hemisphere letters.
func ParseCoordinates(s string) (mapview.LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return mapview.LatLng{}, fmt.Errorf("coordinates %q: want \"lat, lng\"", s)
	}

	lat, latAxis, err := parseAxis(parts[0])
	if err != nil {
		return mapview.LatLng{}, fmt.Errorf("coordinates %q: %w", s, err)
	}
	lng, lngAxis, err := parseAxis(parts[1])
	if err != nil {
		return mapview.LatLng{}, fmt.Errorf("coordinates %q: %w", s, err)
	}
	if latAxis == 'E' || latAxis == 'W' || lngAxis == 'N' || lngAxis == 'S' {
		lat, lng = lng, lat
	}

	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return mapview.LatLng{}, fmt.Errorf("coordinates %q out of range", s)
	}
	return mapview.LatLng{Lat: lat, Lng: lng}, nil
}

// parseAxis returns the signed value and its hemisphere letter (0 for
// decimal input).
func parseAxis(s string) (float64, byte, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, 0, nil
	}

	m := dmsPart.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("unrecognized axis %q", s)
	}
	deg, _ := strconv.ParseFloat(m[1], 64)
	var minutes, seconds float64
	if m[2] != "" {
		minutes, _ = strconv.ParseFloat(m[2], 64)
	}
	if m[3] != "" {
		seconds, _ = strconv.ParseFloat(m[3], 64)
	}
	if minutes >= 60 || seconds >= 60 {
		return 0, 0, fmt.Errorf("axis %q: minutes and seconds must be below 60", s)
	}

	v := deg + minutes/60 + seconds/3600
	hemi := m[4][0]
	if hemi == 'S' || hemi == 'W' {
		v = -v
	}
	return v, hemi, nil
}
