package api

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-lakemap/internal/humastar"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/regions>; rel="regions"`,
		`</api/v1/observations/dates>; rel="dates"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/regions>; rel="regions"`,
	},
	"/api/v1/regions": {
		`</api/v1/mask>; rel="mask"`,
		`</api/v1/observations>; rel="observations"`,
	},
	"/api/v1/regions/{id}": {
		`</api/v1/regions>; rel="collection"`,
	},
	"/api/v1/mask": {
		`</api/v1/regions>; rel="regions"`,
	},
	"/api/v1/observations": {
		`</api/v1/observations/dates>; rel="dates"`,
		`</api/v1/regions>; rel="regions"`,
	},
	"/api/v1/observations/dates": {
		`</api/v1/observations>; rel="observations"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers:
// the static links above, pagination links of humastar.Pager bodies and
// action links of humastar.Actor bodies.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}

		// Item endpoints get a self link
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		switch body := v.(type) {
		case humastar.Pager:
			u := ctx.URL()
			q := u.Query()
			q.Del("offset")
			q.Del("limit")
			for _, link := range body.PaginationLinks(u.Path, q.Encode()) {
				ctx.AppendHeader("Link", link)
			}
		case humastar.Actor:
			for _, a := range body.Actions() {
				ctx.AppendHeader("Link", a.LinkHeader())
			}
		}

		return v, nil
	}
}
