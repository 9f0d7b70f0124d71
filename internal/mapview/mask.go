package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// WorldRing is the outer ring of the mask, wound clockwise.
var WorldRing = orb.Ring{
	{-180, 90},
	{180, 90},
	{180, -90},
	{-180, -90},
	{-180, 90},
}

// BuildMask returns a single polygon covering the world with one hole per
// region outer ring. Hole rings are wound opposite to WorldRing so renderers
// treat them as cut-outs. Regions whose geometry is not a Polygon or
// MultiPolygon contribute nothing.
func BuildMask(regions []Region) orb.Polygon {
	mask := orb.Polygon{WorldRing.Clone()}
	outer := WorldRing.Orientation()

	for _, r := range regions {
		var polys []orb.Polygon
		switch g := r.Geometry.(type) {
		case orb.Polygon:
			polys = []orb.Polygon{g}
		case orb.MultiPolygon:
			polys = g
		default:
			continue
		}

		for _, p := range polys {
			if len(p) == 0 || len(p[0]) < 4 {
				continue
			}
			hole := p[0].Clone()
			if hole.Orientation() == outer {
				hole.Reverse()
			}
			mask = append(mask, hole)
		}
	}
	return mask
}

// Mask is the cached mask feature for one region set.
type Mask struct {
	feature *geojson.Feature
	holes   int
}

// NewMask computes the mask once for a static region set.
func NewMask(regions []Region) *Mask {
	poly := BuildMask(regions)
	f := geojson.NewFeature(poly)
	f.Properties["role"] = "mask"
	return &Mask{feature: f, holes: len(poly) - 1}
}

// Feature returns the cached GeoJSON feature.
func (m *Mask) Feature() *geojson.Feature {
	return m.feature
}

// Holes returns the number of region rings cut out of the mask.
func (m *Mask) Holes() int {
	return m.holes
}
