package mapview

import (
	"sort"
	"strconv"
)

// NotAvailable is rendered for missing observation fields.
const NotAvailable = "N/A"

// PopupData is the marker detail summary with missing fields filled in.
type PopupData struct {
	ID          int64
	Location    string
	Operator    string
	Date        string
	Description string
	Level       string
	Upkeep      string
}

// PopupFor builds the popup fields of an observation. A nil level renders as
// N/A rather than 0.
func PopupFor(o Observation) PopupData {
	level := NotAvailable
	if o.Level != nil {
		level = strconv.Itoa(*o.Level)
	}
	return PopupData{
		ID:          o.ID,
		Location:    orNA(o.Location),
		Operator:    orNA(o.Operator),
		Date:        orNA(o.Date),
		Description: orNA(o.Description),
		Level:       level,
		Upkeep:      orNA(o.Upkeep),
	}
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// Matches reports whether o belongs in the marker set for date and region.
// A nil region matches every region.
func Matches(o Observation, date string, region *Region) bool {
	if o.Date != date {
		return false
	}
	return region == nil || o.RegionID == region.ID
}

// Filter returns the observations that match date and region, one per id.
func Filter(observations []Observation, date string, region *Region) []Observation {
	seen := make(map[int64]struct{}, len(observations))
	var out []Observation
	for _, o := range observations {
		if !Matches(o, date, region) {
			continue
		}
		if _, dup := seen[o.ID]; dup {
			continue
		}
		seen[o.ID] = struct{}{}
		out = append(out, o)
	}
	return out
}

// MarkerManager keeps the markers attached to the map equal to the filtered
// observation set. The set is rebuilt wholesale on every Sync.
type MarkerManager struct {
	widget   Widget
	attached map[int64]Observation
}

// NewMarkerManager creates an empty marker set.
func NewMarkerManager(w Widget) *MarkerManager {
	return &MarkerManager{widget: w, attached: make(map[int64]Observation)}
}

// Sync removes every attached marker, then attaches one per matching
// observation. It returns the new marker count.
func (m *MarkerManager) Sync(date string, region *Region, observations []Observation) int {
	m.Clear()
	for _, o := range Filter(observations, date, region) {
		m.attached[o.ID] = o
		m.widget.AddMarker(Marker{ID: o.ID, Position: o.Position(), Popup: PopupFor(o)})
	}
	return len(m.attached)
}

// Clear removes every attached marker.
func (m *MarkerManager) Clear() {
	for _, id := range m.IDs() {
		m.widget.RemoveMarker(id)
	}
	clear(m.attached)
}

// Len returns the number of attached markers.
func (m *MarkerManager) Len() int {
	return len(m.attached)
}

// IDs returns the attached observation ids in ascending order.
func (m *MarkerManager) IDs() []int64 {
	ids := make([]int64, 0, len(m.attached))
	for id := range m.attached {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Lookup returns the observation bound to an attached marker.
func (m *MarkerManager) Lookup(id int64) (Observation, bool) {
	o, ok := m.attached[id]
	return o, ok
}
