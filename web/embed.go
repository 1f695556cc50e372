package web

import "embed"

// TemplatesFS holds the shared layout, the drawer partials and one file per page.
//
//go:embed templates/*.html templates/pages/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the toast script.
//
//go:embed static/*
var StaticFS embed.FS
