package formfill

import (
	"io/fs"

	"github.com/goliatone/go-formfill/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in HTML page templates so callers can
// reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// AssetsFS exposes the bundled stylesheet so Go applications can serve it
// next to their own routes.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formfill.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}
