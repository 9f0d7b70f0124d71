// Package web holds the viewer page, the HTML fragments patched over SSE and
// the browser-side map shim.
package web

import "embed"

// FS is the embedded web directory. A --web-dir on disk takes precedence
// during development.
//
//go:embed templates static
var FS embed.FS
