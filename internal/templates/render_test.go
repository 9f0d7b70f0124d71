package templates

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAndReload(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/pages/page.html":      {Data: []byte(`{{define "page"}}<main>{{template "status-line" .}}</main>{{end}}`)},
		"templates/fragments/status.html": {Data: []byte(`{{define "status-line"}}{{.}}{{end}}`)},
	}
	r, err := New(fsys)
	require.NoError(t, err)

	html, err := r.Render("page", "Select region")
	require.NoError(t, err)
	assert.Equal(t, "<main>Select region</main>", html)

	_, err = r.Render("missing", nil)
	assert.Error(t, err)

	fsys["templates/fragments/status.html"] = &fstest.MapFile{Data: []byte(`{{define "status-line"}}<b>{{.}}</b>{{end}}`)}
	require.NoError(t, r.Reload())
	html, err = r.Render("page", "Uusimaa")
	require.NoError(t, err)
	assert.Equal(t, "<main><b>Uusimaa</b></main>", html)

	fsys["templates/fragments/status.html"] = &fstest.MapFile{Data: []byte(`{{define "status-line"}}{{.}`)}
	assert.Error(t, r.Reload())
	html, err = r.Render("page", "Uusimaa")
	require.NoError(t, err)
	assert.Equal(t, "<main><b>Uusimaa</b></main>", html, "a failed reload keeps the previous templates")
}

func TestDict(t *testing.T) {
	dict := funcMap["dict"].(func(values ...any) map[string]any)
	assert.Equal(t, map[string]any{"Title": "Empty", "Count": 2}, dict("Title", "Empty", "Count", 2))
	assert.Nil(t, dict("odd"))
}
