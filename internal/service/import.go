package service

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-lakemap/internal/mapview"
)

// importRecord is one observation as found in an import file. Position is
// given either as a "coordinates" string (decimal or DMS) or as latitude and
// longitude; dates may carry a time of day, which is dropped.
type importRecord struct {
	ID          int64    `json:"id" yaml:"id"`
	Location    string   `json:"location" yaml:"location"`
	Coordinates string   `json:"coordinates" yaml:"coordinates"`
	Latitude    *float64 `json:"latitude" yaml:"latitude"`
	Longitude   *float64 `json:"longitude" yaml:"longitude"`
	Date        string   `json:"date" yaml:"date"`
	Operator    string   `json:"operator" yaml:"operator"`
	Description string   `json:"description" yaml:"description"`
	Level       *int     `json:"level" yaml:"level"`
	Upkeep      string   `json:"upkeep" yaml:"upkeep"`
	Region      string   `json:"region" yaml:"region"`
}

// Importer loads observation files into the store, assigning each record to
// the region that contains it.
type Importer struct {
	store   *ObservationStore
	regions *RegionService
	logger  *slog.Logger
}

// NewImporter creates an importer.
func NewImporter(store *ObservationStore, regions *RegionService, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, regions: regions, logger: logger}
}

// ImportFile imports a .json, .yaml or .yml file.
func (im *Importer) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return im.Import(ctx, f, format)
}

// Import reads records in format ("json", "yaml" or "yml") from r.
func (im *Importer) Import(ctx context.Context, r io.Reader, format string) (ImportResult, error) {
	records, err := decodeRecords(r, format)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{Read: len(records)}
	seen := make(map[int64]struct{}, len(records))
	obs := make([]mapview.Observation, 0, len(records))
	for i, rec := range records {
		o, err := im.observation(rec)
		if err != nil {
			return res, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := seen[o.ID]; dup {
			res.Duplicates++
			continue
		}
		seen[o.ID] = struct{}{}
		if o.RegionID == "" {
			res.Unlocated++
			im.logger.Debug("observation outside every region", "id", o.ID, "location", o.Location)
		}
		obs = append(obs, o)
	}

	n, err := im.store.Upsert(ctx, obs)
	if err != nil {
		return res, err
	}
	res.Stored = n
	im.logger.Info("observations imported",
		"read", res.Read, "stored", res.Stored, "unlocated", res.Unlocated, "duplicates", res.Duplicates)
	return res, nil
}

func decodeRecords(r io.Reader, format string) ([]importRecord, error) {
	var records []importRecord
	switch format {
	case "json":
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("decoding json observations: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&records); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decoding yaml observations: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported import format %q", format)
	}
	return records, nil
}

func (im *Importer) observation(rec importRecord) (mapview.Observation, error) {
	var pos mapview.LatLng
	switch {
	case rec.Latitude != nil && rec.Longitude != nil:
		pos = mapview.LatLng{Lat: *rec.Latitude, Lng: *rec.Longitude}
	case rec.Coordinates != "":
		p, err := ParseCoordinates(rec.Coordinates)
		if err != nil {
			return mapview.Observation{}, err
		}
		pos = p
	default:
		return mapview.Observation{}, fmt.Errorf("observation %q has no position", rec.Location)
	}

	raw := rec.Date
	if len(raw) > len(mapview.DayLayout) {
		raw = raw[:len(mapview.DayLayout)]
	}
	day, err := mapview.ParseDay(raw)
	if err != nil {
		return mapview.Observation{}, err
	}

	region := rec.Region
	if region == "" && im.regions != nil {
		region = im.regions.Locate(pos)
	}

	id := rec.ID
	if id == 0 {
		id = recordID(rec.Location, day, pos)
	}

	return mapview.Observation{
		ID:          id,
		Location:    rec.Location,
		Latitude:    pos.Lat,
		Longitude:   pos.Lng,
		Date:        day,
		Operator:    rec.Operator,
		Description: rec.Description,
		Level:       rec.Level,
		Upkeep:      rec.Upkeep,
		RegionID:    region,
	}, nil
}

// recordID derives a stable positive id so re-importing a file without ids
// replaces rows instead of duplicating them.
func recordID(location, day string, pos mapview.LatLng) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%.6f|%.6f", location, day, pos.Lat, pos.Lng)
	return int64(h.Sum64() >> 1)
}
