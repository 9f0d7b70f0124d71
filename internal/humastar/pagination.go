// pagination.go — HATEOAS pagination via RFC 8288 Link headers.
//
// Response bodies implement the Pager interface to emit next/prev/first/last
// Link headers. The API link transformer reads these and sets the headers.
package humastar

import "fmt"

// DefaultLimit is the page size used when a request does not give one.
const DefaultLimit = 100

// Pager is implemented by response bodies that carry pagination metadata.
type Pager interface {
	PaginationLinks(basePath string, query string) []string
}

// PageBody is a generic paginated response envelope.
type PageBody[T any] struct {
	Total  int `json:"total" doc:"Total number of items"`
	Offset int `json:"offset" doc:"Current offset"`
	Limit  int `json:"limit" doc:"Page size"`
	Data   []T `json:"data" doc:"Items"`
}

// Page cuts one page out of items. A non-positive limit uses DefaultLimit;
// an offset past the end yields an empty page.
func Page[T any](items []T, offset, limit int) PageBody[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	start := min(offset, len(items))
	end := min(start+limit, len(items))
	data := make([]T, end-start)
	copy(data, items[start:end])
	return PageBody[T]{Total: len(items), Offset: offset, Limit: limit, Data: data}
}

// PaginationLinks returns RFC 8288 Link header values for pagination rels.
// query holds the request's other parameters (without offset and limit) and
// is carried over to every link.
func (p PageBody[T]) PaginationLinks(basePath, query string) []string {
	if p.Limit <= 0 {
		return nil
	}
	href := func(offset int) string {
		u := fmt.Sprintf("%s?offset=%d&limit=%d", basePath, offset, p.Limit)
		if query != "" {
			u += "&" + query
		}
		return u
	}

	links := []string{fmt.Sprintf(`<%s>; rel="first"`, href(0))}

	if p.Offset > 0 {
		links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, href(max(p.Offset-p.Limit, 0))))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, fmt.Sprintf(`<%s>; rel="next"`, href(p.Offset+p.Limit)))
	}

	lastOffset := max(((p.Total-1)/p.Limit)*p.Limit, 0)
	links = append(links, fmt.Sprintf(`<%s>; rel="last"`, href(lastOffset)))
	return links
}
