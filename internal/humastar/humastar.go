// Package humastar bridges Huma (REST/OpenAPI) with Datastar (SSE/hypermedia).
//
// It provides:
//   - SSE: Huma streaming → Datastar SSE protocol via [SSE] and [NewSSE]
//   - Signals: Datastar signal bodies via [Signals] and [SignalsInput]
//   - Rendering: fragment patches and select options via [Handler]
//   - Hypermedia: pagination and action Link headers via [Pager] and [Actor]
//
// Usage:
//
//	type ViewerHandler struct {
//	    humastar.Handler
//	    bus *service.EventBus
//	}
//
//	func (h *ViewerHandler) Details(ctx context.Context, input *DetailsInput) (*huma.StreamResponse, error) {
//	    return h.Stream(func(sse humastar.SSE) {
//	        h.PatchFragment(sse, "detail-card", detail, "#detail-panel")
//	    }), nil
//	}
package humastar

import (
	"bytes"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-lakemap/internal/templates"
)

// Handler is an embeddable base for Huma handlers that answer with Datastar
// streams rendered from the page templates.
type Handler struct {
	Renderer *templates.Renderer
}

// Stream returns a Huma StreamResponse that calls fn with a ready SSE helper.
func (h *Handler) Stream(fn func(sse SSE)) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			fn(NewSSE(humaCtx))
		},
	}
}

// PatchFragment renders the named template and patches it into selector.
// Nothing is sent when rendering fails.
func (h *Handler) PatchFragment(sse SSE, tmpl string, data any, selector string) error {
	html, err := h.Renderer.Render(tmpl, data)
	if err != nil {
		return err
	}
	sse.Patch(html, selector)
	return nil
}

// SelectOptionData holds data for rendering a <select> option template.
type SelectOptionData struct {
	Value    string
	Label    string
	Selected bool
}

// RenderSelect renders <option> elements from a placeholder and option list.
// An empty placeholder is omitted.
func (h *Handler) RenderSelect(placeholder string, options []SelectOptionData) string {
	var buf bytes.Buffer
	if placeholder != "" {
		h.Renderer.RenderToBuffer(&buf, "select-option", SelectOptionData{Label: placeholder})
	}
	for _, opt := range options {
		h.Renderer.RenderToBuffer(&buf, "select-option", opt)
	}
	return buf.String()
}
