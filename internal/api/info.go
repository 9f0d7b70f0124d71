package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// Counter reports the number of stored observations.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

type InfoHandler struct {
	dataDir string
	regions func() int
	store   Counter
}

// NewInfoHandler creates the info handler. regions reports the loaded region
// count; store may be nil when the database is unavailable.
func NewInfoHandler(dataDir string, regions func() int, store Counter) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, regions: regions, store: store}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name         string   `json:"name" doc:"Service name"`
	Version      string   `json:"version" doc:"Service version"`
	DataDir      string   `json:"data_dir" doc:"Data directory path"`
	DB           bool     `json:"db" doc:"Whether database is available"`
	Regions      int      `json:"regions" doc:"Loaded region count"`
	Observations int      `json:"observations" doc:"Stored observation count"`
	Features     []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	body := InfoBody{
		Name:     "plat-lakemap",
		Version:  "0.1.0",
		DataDir:  h.dataDir,
		Features: []string{"choropleth", "mask", "markers", "duckdb"},
	}
	if h.regions != nil {
		body.Regions = h.regions()
	}
	if h.store != nil {
		if n, err := h.store.Count(ctx); err == nil {
			body.DB = true
			body.Observations = n
		}
	}
	return &struct{ Body InfoBody }{Body: body}, nil
}
