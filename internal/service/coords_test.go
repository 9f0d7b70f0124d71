package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		lat, lng float64
	}{
		{name: "decimal", in: "61.09, 24.95", lat: 61.09, lng: 24.95},
		{name: "dms", in: `61° 5' 24.14" N, 24° 57' 26.17" E`, lat: 61.090039, lng: 24.957269},
		{name: "dms southern western", in: `33° 52' 0" S, 151° 12' 0" W`, lat: -33.866667, lng: -151.2},
		{name: "dms swapped axes", in: `24° 57' 26.17" E, 61° 5' 24.14" N`, lat: 61.090039, lng: 24.957269},
		{name: "degrees only", in: `61° N, 25° E`, lat: 61, lng: 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ll, err := ParseCoordinates(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.lat, ll.Lat, 1e-5)
			assert.InDelta(t, tt.lng, ll.Lng, 1e-5)
		})
	}
}

func TestParseCoordinatesErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"61.09",
		"abc, def",
		"95, 24",
		`61° 75' 0" N, 24° 0' 0" E`,
	} {
		_, err := ParseCoordinates(in)
		assert.Error(t, err, in)
	}
}
