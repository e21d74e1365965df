// Package web renders the HTML views and serves the static assets.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// Page names accepted by Render.
const (
	ViewIndex   = "index"
	ViewDays    = "days"
	ViewSession = "session"
)

var pages = []string{ViewIndex, ViewDays, ViewSession}

// Views holds one parsed template set per page, each sharing the layout.
type Views struct {
	pages map[string]*template.Template
}

// New parses the embedded templates.
func New() (*Views, error) {
	v := &Views{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// Render executes view with data and writes the markup to w. Nothing is
// written when execution fails.
func (v *Views) Render(w io.Writer, view string, data any) error {
	t, ok := v.pages[view]
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("rendering %s: %w", view, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Assets returns the static files served under /assets/.
func Assets() fs.FS {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
