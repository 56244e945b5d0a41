package formbuilder

import (
	"io/fs"

	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in page templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// EmbeddedAssets exposes the stylesheet and drag-and-drop script.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formbuilder.EmbeddedAssets()),
//	  ),
//	)
func EmbeddedAssets() fs.FS {
	return vanilla.AssetsFS()
}
