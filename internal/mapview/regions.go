package mapview

// RegionLayer tracks hover and tooltip presentation for region boundaries.
// Selection itself lives in ViewState; the layer only reads it.
type RegionLayer struct {
	widget  Widget
	cfg     Config
	regions []Region
	byID    map[string]Region
	hovered string
}

// NewRegionLayer indexes regions by id.
func NewRegionLayer(w Widget, cfg Config, regions []Region) *RegionLayer {
	byID := make(map[string]Region, len(regions))
	for _, r := range regions {
		byID[r.ID] = r
	}
	return &RegionLayer{widget: w, cfg: cfg, regions: regions, byID: byID}
}

// Attach draws every region with the default style.
func (l *RegionLayer) Attach() {
	l.widget.AddRegions(l.regions, l.cfg.RegionStyle)
}

// Reset forgets hover state from a previous mount.
func (l *RegionLayer) Reset() {
	l.hovered = ""
}

// Region looks up a region by id.
func (l *RegionLayer) Region(id string) (Region, bool) {
	r, ok := l.byID[id]
	return r, ok
}

// Regions returns the loaded regions.
func (l *RegionLayer) Regions() []Region {
	return l.regions
}

// Hovered returns the id of the region under the pointer.
func (l *RegionLayer) Hovered() string {
	return l.hovered
}

// Enter emphasizes a region and shows its tooltip unless a gesture is active.
func (l *RegionLayer) Enter(id string, gesture bool) {
	r, ok := l.byID[id]
	if !ok {
		return
	}
	if l.hovered != "" && l.hovered != id {
		l.widget.SetTooltip(l.hovered, "")
	}
	l.hovered = id
	l.widget.SetRegionStyle(id, l.cfg.EmphasizedStyle)
	if !gesture {
		l.widget.SetTooltip(id, r.Name)
	}
}

// Leave reverts the region style unless it is the selected region.
func (l *RegionLayer) Leave(id, selectedID string) {
	if _, ok := l.byID[id]; !ok {
		return
	}
	if l.hovered == id {
		l.hovered = ""
	}
	l.widget.SetTooltip(id, "")
	if id != selectedID {
		l.widget.SetRegionStyle(id, l.cfg.RegionStyle)
	}
}

// GestureChanged hides the tooltip while a drag or zoom is in progress and
// restores it for the hovered region afterwards.
func (l *RegionLayer) GestureChanged(active bool) {
	if l.hovered == "" {
		return
	}
	if active {
		l.widget.SetTooltip(l.hovered, "")
		return
	}
	l.widget.SetTooltip(l.hovered, l.byID[l.hovered].Name)
}

// SelectionChanged restyles the previously and newly selected regions.
func (l *RegionLayer) SelectionChanged(prevID, nextID string) {
	if prevID == nextID {
		return
	}
	if prevID != "" && prevID != l.hovered {
		l.widget.SetRegionStyle(prevID, l.cfg.RegionStyle)
	}
	if nextID != "" {
		l.widget.SetRegionStyle(nextID, l.cfg.EmphasizedStyle)
	}
}
