package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/joeblew999/plat-lakemap/internal/mapview"
)

// RegionService holds the administrative regions loaded from a GeoJSON
// FeatureCollection. Each feature needs a "name" property; "id" or "code" is
// used as the region id when present, otherwise one is derived from the name.
type RegionService struct {
	mu      sync.RWMutex
	regions []mapview.Region
	byID    map[string]int
	mask    *mapview.Mask
}

// NewRegionService creates an empty region set.
func NewRegionService() *RegionService {
	return &RegionService{byID: map[string]int{}, mask: mapview.NewMask(nil)}
}

// LoadFile replaces the region set with the features of a GeoJSON file.
func (s *RegionService) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening regions: %w", err)
	}
	defer f.Close()
	return s.Load(f)
}

// Load replaces the region set with the features read from r.
func (s *RegionService) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading regions: %w", err)
	}

	fc := &geojson.FeatureCollection{}
	if err := json.Unmarshal(data, fc); err != nil {
		return fmt.Errorf("parsing regions geojson: %w", err)
	}

	regions := make([]mapview.Region, 0, len(fc.Features))
	byID := make(map[string]int, len(fc.Features))
	for i, f := range fc.Features {
		name, _ := f.Properties["name"].(string)
		if name == "" {
			return fmt.Errorf("region feature %d has no name", i)
		}
		id := featureID(f, name)
		if _, dup := byID[id]; dup {
			return fmt.Errorf("duplicate region id %q", id)
		}
		byID[id] = len(regions)
		regions = append(regions, mapview.Region{ID: id, Name: name, Geometry: f.Geometry})
	}

	// The mask is computed once per region-set load.
	mask := mapview.NewMask(regions)

	s.mu.Lock()
	s.regions = regions
	s.byID = byID
	s.mask = mask
	s.mu.Unlock()
	return nil
}

func featureID(f *geojson.Feature, name string) string {
	for _, key := range []string{"id", "code"} {
		switch v := f.Properties[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%d", int64(v))
		}
	}
	if id, ok := f.ID.(string); ok && id != "" {
		return id
	}
	return generateID(name)
}

var foldReplacer = strings.NewReplacer("ä", "a", "ö", "o", "å", "a", "Ä", "a", "Ö", "o", "Å", "a")

// generateID derives a stable id from a display name: lowercase, Nordic
// letters folded to ASCII, words joined by single underscores.
func generateID(name string) string {
	id := strings.ToLower(foldReplacer.Replace(name))
	id = strings.NewReplacer(" ", "_", "-", "_").Replace(id)
	var result strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			result.WriteRune(r)
		}
	}
	words := strings.FieldsFunc(result.String(), func(r rune) bool { return r == '_' })
	return strings.Join(words, "_")
}

// Regions returns the loaded regions.
func (s *RegionService) Regions() []mapview.Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.regions
}

// Get returns a region by id.
func (s *RegionService) Get(id string) (mapview.Region, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return mapview.Region{}, false
	}
	return s.regions[i], true
}

// List returns id and name of every region, sorted by name.
func (s *RegionService) List() []RegionSummary {
	s.mu.RLock()
	out := make([]RegionSummary, 0, len(s.regions))
	for _, r := range s.regions {
		out = append(out, RegionSummary{ID: r.ID, Name: r.Name})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Mask returns the inverse mask of the current region set.
func (s *RegionService) Mask() *mapview.Mask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mask
}

// FeatureCollection returns the regions as GeoJSON with id and name
// properties.
func (s *RegionService) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range s.Regions() {
		if r.Geometry == nil {
			continue
		}
		f := geojson.NewFeature(r.Geometry)
		f.ID = r.ID
		f.Properties["id"] = r.ID
		f.Properties["name"] = r.Name
		fc.Append(f)
	}
	return fc
}

// Locate returns the id of the first region containing the point, or "".
func (s *RegionService) Locate(ll mapview.LatLng) string {
	p := ll.Point()
	for _, r := range s.Regions() {
		if !r.Bound().Contains(p) {
			continue
		}
		switch g := r.Geometry.(type) {
		case orb.Polygon:
			if planar.PolygonContains(g, p) {
				return r.ID
			}
		case orb.MultiPolygon:
			if planar.MultiPolygonContains(g, p) {
				return r.ID
			}
		}
	}
	return ""
}
