// Package service contains the region, observation and feed services behind
// the lakemap API and viewer.
package service

import "github.com/joeblew999/plat-lakemap/internal/mapview"

// RegionSummary is the listing form of a region.
type RegionSummary struct {
	ID   string `json:"id" doc:"Region identifier" example:"uusimaa"`
	Name string `json:"name" doc:"Display name" example:"Uusimaa"`
}

// DateCount is one entry of the observation date index.
type DateCount struct {
	Date  string `json:"date" doc:"Calendar day (YYYY-MM-DD)" example:"2025-06-28"`
	Count int    `json:"count" doc:"Observations on that day" example:"12"`
}

// ObservationFilter selects observations by day and region. An empty field
// matches everything.
type ObservationFilter struct {
	Date     string
	RegionID string
}

// Matches reports whether o passes the filter.
func (f ObservationFilter) Matches(o mapview.Observation) bool {
	if f.Date != "" && o.Date != f.Date {
		return false
	}
	return f.RegionID == "" || o.RegionID == f.RegionID
}

// ImportResult summarizes an observation import.
type ImportResult struct {
	Read       int `json:"read" doc:"Records read from the file"`
	Stored     int `json:"stored" doc:"Records written to the store"`
	Unlocated  int `json:"unlocated" doc:"Records outside every region"`
	Duplicates int `json:"duplicates" doc:"Records sharing an id with an earlier record"`
}
