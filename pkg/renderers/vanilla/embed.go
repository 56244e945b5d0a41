package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/partials/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	StylesheetName = "formbuilder.css"
	ScriptName     = "formbuilder.js"
)

// TemplatesFS exposes the embedded page templates rooted at the templates
// directory.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// AssetsFS exposes the embedded stylesheet and drag and drop script so callers
// can serve them over HTTP.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
