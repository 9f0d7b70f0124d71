package humastar

import "fmt"

// Action is a hypermedia action link on a resource.
// Response bodies implement the Actor interface to emit RFC 8288 Link
// headers with method and title extension parameters.
//
// Example Link header output:
//
//	</api/v1/observations?region=uusimaa>; rel="observations"; method="GET"; title="Observations in region"
type Action struct {
	Rel    string // IANA rel or custom (e.g., "observations", "mask")
	Href   string // target URL
	Method string // HTTP method: GET, POST, ...
	Title  string // optional human-readable label
}

// Actor is implemented by response bodies that provide actions.
type Actor interface {
	Actions() []Action
}

// LinkHeader formats the action as an RFC 8288 Link header value
// with method and title extension parameters.
func (a Action) LinkHeader() string {
	h := fmt.Sprintf(`<%s>; rel="%s"`, a.Href, a.Rel)
	if a.Method != "" {
		h += fmt.Sprintf(`; method="%s"`, a.Method)
	}
	if a.Title != "" {
		h += fmt.Sprintf(`; title="%s"`, a.Title)
	}
	return h
}

// ActionDef is a reusable action template.
// Pattern uses a single %s verb for the resource ID.
type ActionDef struct {
	Rel     string
	Pattern string // e.g. "/api/v1/observations?region=%s"
	Method  string
	Title   string
}

// ActionsFor generates concrete Action values from ActionDefs for a given resource ID.
func ActionsFor(id string, defs []ActionDef) []Action {
	actions := make([]Action, len(defs))
	for i, d := range defs {
		actions[i] = Action{
			Rel:    d.Rel,
			Href:   fmt.Sprintf(d.Pattern, id),
			Method: d.Method,
			Title:  d.Title,
		}
	}
	return actions
}
