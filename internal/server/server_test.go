package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-lakemap/internal/mapview"
	"github.com/joeblew999/plat-lakemap/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(Config{
		Host:        "localhost",
		Port:        "8086",
		RegionsFile: "../service/testdata/regions.geojson",
	})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := get(t, srv, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Header().Values("Link"), `</api/v1/regions>; rel="regions"`)
}

func TestRegions(t *testing.T) {
	srv := newTestServer(t)
	rec := get(t, srv, "/api/v1/regions")
	require.Equal(t, http.StatusOK, rec.Code)

	var regions []service.RegionSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regions))
	assert.Equal(t, []service.RegionSummary{
		{ID: "paijat_hame", Name: "Päijät-Häme"},
		{ID: "uusimaa", Name: "Uusimaa"},
	}, regions)

	rec = get(t, srv, "/api/v1/regions/uusimaa")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Uusimaa"`)
	assert.Contains(t, rec.Header().Values("Link"),
		`</api/v1/observations?region=uusimaa>; rel="observations"; method="GET"; title="Observations in region"`)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/v1/regions/lappi").Code)
}

func TestMask(t *testing.T) {
	srv := newTestServer(t)
	rec := get(t, srv, "/api/v1/mask")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Polygon"`)
}

func TestObservations(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.Importer().ImportFile(context.Background(), "../service/testdata/observations.yaml")
	require.NoError(t, err)

	rec := get(t, srv, "/api/v1/observations?region=uusimaa&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Total int                   `json:"total"`
		Limit int                   `json:"limit"`
		Data  []mapview.Observation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Limit)
	assert.Len(t, page.Data, 1)
	assert.Contains(t, rec.Header().Values("Link"), `</api/v1/observations?offset=0&limit=1&region=uusimaa>; rel="first"`)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/observations?date=28.6.2025").Code)

	rec = get(t, srv, "/api/v1/observations/dates")
	require.Equal(t, http.StatusOK, rec.Code)
	var dates []service.DateCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dates))
	assert.NotEmpty(t, dates)
}

func TestInfo(t *testing.T) {
	srv := newTestServer(t)
	rec := get(t, srv, "/api/v1/info")
	require.Equal(t, http.StatusOK, rec.Code)

	var info struct {
		Name    string `json:"name"`
		DB      bool   `json:"db"`
		Regions int    `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "plat-lakemap", info.Name)
	assert.True(t, info.DB)
	assert.Equal(t, 2, info.Regions)
}

func TestViewerPage(t *testing.T) {
	srv := newTestServer(t)
	first := get(t, srv, "/viewer")
	second := get(t, srv, "/viewer")
	require.Equal(t, http.StatusOK, first.Code)

	body, err := io.ReadAll(first.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Select region")

	target := regexp.MustCompile(`id="(map-[0-9a-f-]+)"`)
	m1 := target.FindStringSubmatch(string(body))
	m2 := target.FindStringSubmatch(second.Body.String())
	require.Len(t, m1, 2)
	require.Len(t, m2, 2)
	assert.NotEqual(t, m1[1], m2[1], "each page load gets its own map target")
	assert.Contains(t, string(body), "/api/v1/viewer/"+m1[1]+"/stream")
}

func TestStaticAndMetrics(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, http.StatusOK, get(t, srv, "/static/mapview.js").Code)

	rec := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lakemap_views_mounted")
}

func TestMissingRegionsFile(t *testing.T) {
	srv, err := New(Config{RegionsFile: "testdata/does-not-exist.geojson"})
	require.NoError(t, err)
	defer srv.Close()
	assert.Empty(t, srv.Regions().Regions())
}

func TestOpenAPI(t *testing.T) {
	srv := newTestServer(t)
	doc := srv.OpenAPI()
	require.NotNil(t, doc)
	assert.Contains(t, doc.Paths, "/api/v1/viewer/{target}/stream")
	assert.Contains(t, doc.Paths, "/api/v1/regions")
}
