package humastar

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
)

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Page(items, 1, 2)
	assert.Equal(t, PageBody[int]{Total: 5, Offset: 1, Limit: 2, Data: []int{2, 3}}, p)

	p = Page(items, 10, 2)
	assert.Empty(t, p.Data)
	assert.NotNil(t, p.Data)

	p = Page(items, -3, 0)
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, items, p.Data)
}

func TestPaginationLinks(t *testing.T) {
	p := PageBody[int]{Total: 5, Offset: 2, Limit: 2}
	assert.Equal(t, []string{
		`</api/v1/observations?offset=0&limit=2&region=uusimaa>; rel="first"`,
		`</api/v1/observations?offset=0&limit=2&region=uusimaa>; rel="prev"`,
		`</api/v1/observations?offset=4&limit=2&region=uusimaa>; rel="next"`,
		`</api/v1/observations?offset=4&limit=2&region=uusimaa>; rel="last"`,
	}, p.PaginationLinks("/api/v1/observations", "region=uusimaa"))

	empty := PageBody[int]{Limit: 10}
	assert.Equal(t, []string{
		`</x?offset=0&limit=10>; rel="first"`,
		`</x?offset=0&limit=10>; rel="last"`,
	}, empty.PaginationLinks("/x", ""))
}

func TestActionsFor(t *testing.T) {
	actions := ActionsFor("uusimaa", []ActionDef{
		{Rel: "observations", Pattern: "/api/v1/observations?region=%s", Method: "GET", Title: "Observations in region"},
	})
	assert.Len(t, actions, 1)
	assert.Equal(t,
		`</api/v1/observations?region=uusimaa>; rel="observations"; method="GET"; title="Observations in region"`,
		actions[0].LinkHeader())
}

func TestSignals(t *testing.T) {
	s, err := ParseSignals([]byte(`{"date":"2025-06-28","zoom":7.5}`))
	assert.NoError(t, err)
	assert.Equal(t, "2025-06-28", s.String("date"))
	assert.True(t, s.Has("date"))
	assert.False(t, s.Has("region"))
	assert.Equal(t, "", s.String("zoom"))

	_, err = ParseSignals([]byte("nope"))
	assert.Error(t, err)
}

func TestSignalsInputMustParse(t *testing.T) {
	in := SignalsInput{RawBody: []byte(`{"date":"2025-06-28"}`)}
	s, err := in.MustParse()
	assert.NoError(t, err)
	assert.Equal(t, "2025-06-28", s.String("date"))

	in.RawBody = []byte("{")
	_, err = in.MustParse()
	var se huma.StatusError
	if assert.ErrorAs(t, err, &se) {
		assert.Equal(t, http.StatusBadRequest, se.GetStatus())
	}
}
