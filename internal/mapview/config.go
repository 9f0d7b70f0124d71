package mapview

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Style is a vector path style, mirroring Leaflet path options.
type Style struct {
	Color       string  `json:"color" yaml:"color"`
	Weight      float64 `json:"weight" yaml:"weight"`
	Opacity     float64 `json:"opacity" yaml:"opacity"`
	FillColor   string  `json:"fillColor" yaml:"fillColor"`
	FillOpacity float64 `json:"fillOpacity" yaml:"fillOpacity"`
}

// Config holds the map defaults. Zero values are replaced by DefaultConfig
// values in LoadConfig.
type Config struct {
	Country   string    `yaml:"country"`
	Center    LatLng    `yaml:"center"`
	Zoom      float64   `yaml:"zoom"`
	MinZoom   float64   `yaml:"minZoom"`
	MaxZoom   float64   `yaml:"maxZoom"`
	MaxBounds [2]LatLng `yaml:"maxBounds"`

	// FitPadding is the pixel padding used when fitting a region.
	FitPadding int `yaml:"fitPadding"`
	// MarkerZoom is the zoom level used when a marker is clicked.
	MarkerZoom float64 `yaml:"markerZoom"`
	// AnimationSeconds is the duration of region camera animations.
	AnimationSeconds float64 `yaml:"animationSeconds"`

	TileURL         string `yaml:"tileURL"`
	TileAttribution string `yaml:"tileAttribution"`

	RegionStyle     Style `yaml:"regionStyle"`
	EmphasizedStyle Style `yaml:"emphasizedStyle"`
	MaskStyle       Style `yaml:"maskStyle"`
}

// DefaultConfig returns the whole-country view of Finland.
func DefaultConfig() Config {
	return Config{
		Country:          "Finland",
		Center:           LatLng{Lat: 65.0, Lng: 26.0},
		Zoom:             5.4,
		MinZoom:          5.4,
		MaxZoom:          15,
		MaxBounds:        [2]LatLng{{Lat: 57, Lng: 17}, {Lat: 72, Lng: 33}},
		FitPadding:       50,
		MarkerZoom:       10,
		AnimationSeconds: 0.5,
		TileURL:          "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		TileAttribution:  "© OpenStreetMap contributors",
		RegionStyle: Style{
			Color:     "#ffffff",
			Weight:    2,
			Opacity:   0.6,
			FillColor: "transparent",
		},
		EmphasizedStyle: Style{
			Color:     "#00d4ff",
			Weight:    6,
			Opacity:   1,
			FillColor: "transparent",
		},
		MaskStyle: Style{
			Color:       "#000",
			Weight:      0,
			FillColor:   "#000",
			FillOpacity: 0.85,
		},
	}
}

// LoadConfig reads a YAML map config. An empty path returns DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading map config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing map config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the zoom range and default view.
func (c Config) Validate() error {
	if c.Country == "" {
		return errors.New("map config: country is required")
	}
	if c.MinZoom > c.MaxZoom {
		return fmt.Errorf("map config: minZoom %.2f exceeds maxZoom %.2f", c.MinZoom, c.MaxZoom)
	}
	if c.Zoom < c.MinZoom || c.Zoom > c.MaxZoom {
		return fmt.Errorf("map config: zoom %.2f outside [%.2f, %.2f]", c.Zoom, c.MinZoom, c.MaxZoom)
	}
	return nil
}
