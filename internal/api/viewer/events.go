package viewer

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-lakemap/internal/mapview"
)

// view returns the controller mounted on target.
func (h *Handler) view(target string) (*mapview.Controller, error) {
	c, ok := h.registry.Get(target)
	if !ok {
		return nil, huma.Error404NotFound("map view not found")
	}
	return c, nil
}

// apply runs fn against the view mounted on target and maps controller
// errors to HTTP errors.
func (h *Handler) apply(target string, fn func(*mapview.Controller) error) (*struct{}, error) {
	c, err := h.view(target)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		switch {
		case errors.Is(err, mapview.ErrNotMounted):
			return nil, huma.Error409Conflict("map view is not mounted")
		case errors.Is(err, mapview.ErrUnknownRegion):
			return nil, huma.Error404NotFound("region not found")
		case errors.Is(err, mapview.ErrUnknownMarker):
			return nil, huma.Error404NotFound("marker not found")
		default:
			return nil, huma.Error500InternalServerError("applying map event", err)
		}
	}
	return &struct{}{}, nil
}

// Unmount tears the view down. Unknown or already unmounted targets succeed.
func (h *Handler) Unmount(ctx context.Context, input *TargetInput) (*struct{}, error) {
	if c, ok := h.registry.Get(input.Target); ok {
		h.registry.Unmount(input.Target, c)
	}
	return &struct{}{}, nil
}

func (h *Handler) ClickRegion(ctx context.Context, input *RegionInput) (*struct{}, error) {
	return h.apply(input.Target, func(c *mapview.Controller) error { return c.ClickRegion(input.ID) })
}

func (h *Handler) EnterRegion(ctx context.Context, input *RegionInput) (*struct{}, error) {
	return h.apply(input.Target, func(c *mapview.Controller) error { return c.EnterRegion(input.ID) })
}

func (h *Handler) LeaveRegion(ctx context.Context, input *RegionInput) (*struct{}, error) {
	return h.apply(input.Target, func(c *mapview.Controller) error { return c.LeaveRegion(input.ID) })
}

func (h *Handler) ClickMarker(ctx context.Context, input *MarkerInput) (*struct{}, error) {
	return h.apply(input.Target, func(c *mapview.Controller) error { return c.ClickMarker(input.ID) })
}

func (h *Handler) Zoom(ctx context.Context, input *ZoomInput) (*struct{}, error) {
	center := mapview.LatLng{Lat: input.Body.Lat, Lng: input.Body.Lng}
	return h.apply(input.Target, func(c *mapview.Controller) error { return c.Zoomed(input.Body.Zoom, center) })
}

func (h *Handler) Move(ctx context.Context, input *MoveInput) (*struct{}, error) {
	center := mapview.LatLng{Lat: input.Body.Lat, Lng: input.Body.Lng}
	return h.apply(input.Target, func(c *mapview.Controller) error { return c.Moved(center) })
}

func (h *Handler) Gesture(ctx context.Context, input *GestureInput) (*struct{}, error) {
	return h.apply(input.Target, func(c *mapview.Controller) error { return c.Gesture(input.Body.Active) })
}

func (h *Handler) Reset(ctx context.Context, input *TargetInput) (*struct{}, error) {
	return h.apply(input.Target, func(c *mapview.Controller) error { return c.Reset() })
}

// SetDate applies the date picker's "date" signal.
func (h *Handler) SetDate(ctx context.Context, input *DateInput) (*struct{}, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	if !signals.Has("date") {
		return nil, huma.Error400BadRequest("missing date signal")
	}
	date, err := mapview.ParseDay(signals.String("date"))
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return h.apply(input.Target, func(c *mapview.Controller) error { return c.SetDate(date) })
}
