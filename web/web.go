// Package web bundles the HTML templates and static assets of the SOS pages.
package web

import "embed"

// Templates holds templates/layout.html plus one file per page.
//
//go:embed templates/*.html
var Templates embed.FS

//go:embed static
var Static embed.FS
