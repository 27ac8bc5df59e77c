// Package web embeds the rendered page templates for the recovery flow.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
