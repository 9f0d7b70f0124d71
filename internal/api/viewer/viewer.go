// Package viewer contains the Datastar SSE handlers for the map viewer.
//
// Each page load mounts one map view on a DOM target id. The mount stream
// owns the view for as long as the browser keeps it open: it forwards widget
// commands and status updates, while pointer and camera events come back as
// small POST requests on the same target.
package viewer

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jonboulle/clockwork"

	"github.com/joeblew999/plat-lakemap/internal/humastar"
	"github.com/joeblew999/plat-lakemap/internal/mapview"
	"github.com/joeblew999/plat-lakemap/internal/service"
	"github.com/joeblew999/plat-lakemap/internal/templates"
)

// Deps are the collaborators of the viewer handlers.
type Deps struct {
	Map      mapview.Config
	Regions  *service.RegionService
	Source   service.ObservationSource
	Registry *mapview.Registry
	Bus      *service.EventBus
	Observer mapview.Observer
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

// Handler serves the viewer stream, event and detail routes.
type Handler struct {
	humastar.Handler

	cfg      mapview.Config
	regions  *service.RegionService
	source   service.ObservationSource
	registry *mapview.Registry
	bus      *service.EventBus
	observer mapview.Observer
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewHandler creates the viewer handler.
func NewHandler(renderer *templates.Renderer, d Deps) *Handler {
	if d.Regions == nil {
		d.Regions = service.NewRegionService()
	}
	if d.Registry == nil {
		d.Registry = mapview.NewRegistry()
	}
	if d.Bus == nil {
		d.Bus = service.NewEventBus()
	}
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Handler{
		Handler:  humastar.Handler{Renderer: renderer},
		cfg:      d.Map,
		regions:  d.Regions,
		source:   d.Source,
		registry: d.Registry,
		bus:      d.Bus,
		observer: d.Observer,
		clock:    d.Clock,
		logger:   d.Logger,
	}
}

// Registry returns the target registry of mounted views.
func (h *Handler) Registry() *mapview.Registry {
	return h.registry
}

func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/viewer/details", h.Details, huma.OperationTags("viewer"))

	huma.Get(api, "/api/v1/viewer/{target}/stream", h.Mount, huma.OperationTags("viewer"))
	huma.Delete(api, "/api/v1/viewer/{target}", h.Unmount, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/{target}/unmount", h.Unmount, huma.OperationTags("viewer"))

	huma.Post(api, "/api/v1/viewer/{target}/region/{id}/click", h.ClickRegion, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/{target}/region/{id}/enter", h.EnterRegion, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/{target}/region/{id}/leave", h.LeaveRegion, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/{target}/marker/{id}/click", h.ClickMarker, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/{target}/zoom", h.Zoom, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/{target}/move", h.Move, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/{target}/gesture", h.Gesture, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/{target}/reset", h.Reset, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/{target}/date", h.SetDate, huma.OperationTags("viewer"))
}

// Inputs

type TargetInput struct {
	Target string `path:"target" minLength:"1" maxLength:"64" doc:"DOM id of the map element" example:"map-4f1c2b"`
}

type RegionInput struct {
	TargetInput
	ID string `path:"id" doc:"Region ID" example:"uusimaa"`
}

type MarkerInput struct {
	TargetInput
	ID int64 `path:"id" doc:"Observation ID" example:"42"`
}

type ZoomInput struct {
	TargetInput
	Body struct {
		Zoom float64 `json:"zoom" doc:"Zoom level after the change" example:"7"`
		Lat  float64 `json:"lat" doc:"Map center latitude"`
		Lng  float64 `json:"lng" doc:"Map center longitude"`
	}
}

type MoveInput struct {
	TargetInput
	Body struct {
		Lat float64 `json:"lat" doc:"Map center latitude"`
		Lng float64 `json:"lng" doc:"Map center longitude"`
	}
}

type GestureInput struct {
	TargetInput
	Body struct {
		Active bool `json:"active" doc:"Whether a drag or zoom gesture is in progress"`
	}
}

// DateInput carries the Datastar signals of the date picker.
type DateInput struct {
	TargetInput
	humastar.SignalsInput
}

type DetailsInput struct {
	Target string `query:"target" doc:"Only show details requested by this map"`
}
