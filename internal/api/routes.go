// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-lakemap/internal/humastar"
	"github.com/joeblew999/plat-lakemap/internal/mapview"
	"github.com/joeblew999/plat-lakemap/internal/service"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Regions      *service.RegionService
	Observations service.ObservationSource
}

// Types

type RegionIDInput struct {
	ID string `path:"id" doc:"Region ID" example:"uusimaa"`
}

type ObservationsInput struct {
	Date   string `query:"date" doc:"Calendar day (YYYY-MM-DD)" example:"2025-06-28"`
	Region string `query:"region" doc:"Region ID" example:"uusimaa"`
	Offset int    `query:"offset" minimum:"0" doc:"Items to skip"`
	Limit  int    `query:"limit" minimum:"0" maximum:"1000" doc:"Page size (default 100)"`
}

// RegionFeature is a region as a GeoJSON feature with id and name properties.
type RegionFeature struct {
	*geojson.Feature
}

var regionActions = []humastar.ActionDef{
	{Rel: "observations", Pattern: "/api/v1/observations?region=%s", Method: "GET", Title: "Observations in region"},
}

// Actions implements humastar.Actor.
func (f RegionFeature) Actions() []humastar.Action {
	id, _ := f.Properties["id"].(string)
	return humastar.ActionsFor(id, regionActions)
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every APIHandler route group.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterRegions registers region and mask routes.
func (h *APIHandler) RegisterRegions(api huma.API) {
	huma.Get(api, "/api/v1/regions", h.GetRegions, huma.OperationTags("regions"))
	huma.Get(api, "/api/v1/regions/{id}", h.GetRegion, huma.OperationTags("regions"))
	huma.Get(api, "/api/v1/mask", h.GetMask, huma.OperationTags("regions"))
}

// RegisterObservations registers observation query routes.
func (h *APIHandler) RegisterObservations(api huma.API) {
	huma.Get(api, "/api/v1/observations", h.GetObservations, huma.OperationTags("observations"))
	huma.Get(api, "/api/v1/observations/dates", h.GetDates, huma.OperationTags("observations"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetRegions(ctx context.Context, input *struct{}) (*struct{ Body []service.RegionSummary }, error) {
	if h.svc == nil || h.svc.Regions == nil {
		return &struct{ Body []service.RegionSummary }{Body: []service.RegionSummary{}}, nil
	}
	return &struct{ Body []service.RegionSummary }{Body: h.svc.Regions.List()}, nil
}

func (h *APIHandler) GetRegion(ctx context.Context, input *RegionIDInput) (*struct{ Body RegionFeature }, error) {
	if h.svc == nil || h.svc.Regions == nil {
		return nil, huma.Error404NotFound("service not available")
	}
	r, ok := h.svc.Regions.Get(input.ID)
	if !ok || r.Geometry == nil {
		return nil, huma.Error404NotFound("region not found")
	}
	f := geojson.NewFeature(r.Geometry)
	f.ID = r.ID
	f.Properties["id"] = r.ID
	f.Properties["name"] = r.Name
	return &struct{ Body RegionFeature }{Body: RegionFeature{f}}, nil
}

func (h *APIHandler) GetMask(ctx context.Context, input *struct{}) (*struct{ Body *geojson.Feature }, error) {
	if h.svc == nil || h.svc.Regions == nil {
		return &struct{ Body *geojson.Feature }{Body: mapview.NewMask(nil).Feature()}, nil
	}
	return &struct{ Body *geojson.Feature }{Body: h.svc.Regions.Mask().Feature()}, nil
}

func (h *APIHandler) GetObservations(ctx context.Context, input *ObservationsInput) (*struct {
	Body humastar.PageBody[mapview.Observation]
}, error) {
	if h.svc == nil || h.svc.Observations == nil {
		return nil, huma.Error503ServiceUnavailable("observation store not available")
	}
	if input.Date != "" {
		if _, err := mapview.ParseDay(input.Date); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
	}
	obs, err := h.svc.Observations.Find(ctx, service.ObservationFilter{Date: input.Date, RegionID: input.Region})
	if err != nil {
		return nil, huma.Error500InternalServerError("querying observations", err)
	}
	return &struct {
		Body humastar.PageBody[mapview.Observation]
	}{Body: humastar.Page(obs, input.Offset, input.Limit)}, nil
}

func (h *APIHandler) GetDates(ctx context.Context, input *struct{}) (*struct{ Body []service.DateCount }, error) {
	if h.svc == nil || h.svc.Observations == nil {
		return &struct{ Body []service.DateCount }{Body: []service.DateCount{}}, nil
	}
	dates, err := h.svc.Observations.Dates(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("querying observation dates", err)
	}
	return &struct{ Body []service.DateCount }{Body: dates}, nil
}
