package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joeblew999/plat-lakemap/internal/api"
	"github.com/joeblew999/plat-lakemap/internal/api/viewer"
	"github.com/joeblew999/plat-lakemap/internal/db"
	"github.com/joeblew999/plat-lakemap/internal/mapview"
	"github.com/joeblew999/plat-lakemap/internal/observability"
	"github.com/joeblew999/plat-lakemap/internal/service"
	"github.com/joeblew999/plat-lakemap/internal/templates"
	"github.com/joeblew999/plat-lakemap/web"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string // DuckDB lives under DataDir/duckdb; empty keeps it in memory
	WebDir  string // On-disk web/ directory; empty serves the embedded copy

	RegionsFile string // GeoJSON FeatureCollection of regions
	MapConfig   string // YAML map defaults; empty uses mapview.DefaultConfig

	Logger *slog.Logger
}

// Server is the lakemap HTTP server.
type Server struct {
	config   Config
	logger   *slog.Logger
	mux      *http.ServeMux
	humaAPI  huma.API
	db       *sql.DB
	web      fs.FS
	renderer *templates.Renderer
	mapCfg   mapview.Config

	regions  *service.RegionService
	store    *service.ObservationStore
	registry *mapview.Registry
	bus      *service.EventBus
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
}

// New creates a new lakemap server.
func New(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	webFS := fs.FS(web.FS)
	if cfg.WebDir != "" {
		webFS = os.DirFS(cfg.WebDir)
	}
	renderer, err := templates.New(webFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	mapCfg, err := mapview.LoadConfig(cfg.MapConfig)
	if err != nil {
		return nil, err
	}

	regions := service.NewRegionService()
	if cfg.RegionsFile != "" {
		switch err := regions.LoadFile(cfg.RegionsFile); {
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("regions file not found, map has no regions", "path", cfg.RegionsFile)
		case err != nil:
			return nil, err
		default:
			logger.Info("regions loaded", "path", cfg.RegionsFile, "count", len(regions.Regions()))
		}
	}

	conn, err := db.Open(db.Config{DataDir: cfg.DataDir, DBName: "lakemap"})
	if err != nil {
		return nil, err
	}
	store, err := service.NewObservationStore(context.Background(), conn, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-lakemap API", "1.0.0")
	humaConfig.Info.Description = "Regional observation map: regions, country mask, observations and the map viewer event API."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	s := &Server{
		config:   cfg,
		logger:   logger,
		mux:      mux,
		humaAPI:  humago.New(mux, humaConfig),
		db:       conn,
		web:      webFS,
		renderer: renderer,
		mapCfg:   mapCfg,
		regions:  regions,
		store:    store,
		registry: mapview.NewRegistry(),
		bus:      service.NewEventBus(),
		metrics:  observability.NewMetrics(reg),
		gatherer: reg,
	}

	if err := s.routes(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Regions returns the loaded region set.
func (s *Server) Regions() *service.RegionService {
	return s.regions
}

// Importer returns an importer writing to the server's observation store.
func (s *Server) Importer() *service.Importer {
	return service.NewImporter(s.store, s.regions, s.logger)
}

// Registry returns the mounted map views.
func (s *Server) Registry() *mapview.Registry {
	return s.registry
}

// Close unmounts every map view and closes the database.
func (s *Server) Close() error {
	s.registry.Close()
	return s.db.Close()
}

func (s *Server) routes() error {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, &api.Services{Regions: s.regions, Observations: s.store})
	api.NewInfoHandler(s.config.DataDir, func() int { return len(s.regions.Regions()) }, s.store).
		RegisterRoutes(s.humaAPI)

	// Viewer SSE and event routes using Huma + Datastar SDK
	viewer.NewHandler(s.renderer, viewer.Deps{
		Map:      s.mapCfg,
		Regions:  s.regions,
		Source:   s.store,
		Registry: s.registry,
		Bus:      s.bus,
		Observer: s.metrics,
		Logger:   s.logger,
	}).RegisterRoutes(s.humaAPI)

	static, err := fs.Sub(s.web, "static")
	if err != nil {
		return fmt.Errorf("static files: %w", err)
	}
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Page routes
	s.mux.HandleFunc("GET /viewer", s.handleViewer)
	s.mux.HandleFunc("/", s.handleRoot)
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-lakemap",
		"status":  "running",
		"viewer":  "/viewer",
	})
}

// ViewerPage is the data of the viewer page template.
type ViewerPage struct {
	Country string
	Date    string
	Target  string
	Status  string
}

// handleViewer renders the viewer page with a fresh map target per load.
// With an on-disk web directory the templates are re-read first.
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	if s.config.WebDir != "" {
		if err := s.renderer.Reload(); err != nil {
			s.logger.Warn("reloading templates", "error", err)
		}
	}
	html, err := s.renderer.Render("viewer-page", ViewerPage{
		Country: s.mapCfg.Country,
		Target:  "map-" + uuid.NewString(),
		Status:  mapview.SelectHint,
	})
	if err != nil {
		s.logger.Error("rendering viewer page", "error", err)
		http.Error(w, "Failed to render viewer", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}
