package viewer

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-lakemap/internal/humastar"
	"github.com/joeblew999/plat-lakemap/internal/service"
)

// Details streams observation summaries requested by marker clicks.
func (h *Handler) Details(ctx context.Context, input *DetailsInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		ch := h.bus.Subscribe()
		defer h.bus.Unsubscribe(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				if ev.Kind != service.EventDetail || ev.Detail == nil {
					continue
				}
				if input.Target != "" && ev.Target != input.Target {
					continue
				}
				if err := h.PatchFragment(sse, "detail-card", ev.Detail, "#detail-panel"); err != nil {
					h.logger.Warn("rendering detail card", "error", err)
				}
			}
		}
	}), nil
}
