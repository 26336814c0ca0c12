// Package views renders the storefront's pages and HTML fragments.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	layoutFile   = "templates/layout.tmpl"
	partialsFile = "templates/partials.tmpl"
)

// Renderer holds one template set per page plus the shared fragments.
type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"year": func() int { return time.Now().Year() },
		"nextTheme": func(theme string) string {
			if theme == "dark" {
				return "light"
			}
			return "dark"
		},
	}

	base, err := template.New("_root").Funcs(funcs).ParseFS(templateFS, layoutFile, partialsFile)
	if err != nil {
		return nil, fmt.Errorf("views: parse layout: %w", err)
	}

	entries, err := fs.Glob(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("views: list templates: %w", err)
	}
	pages := make(map[string]*template.Template)
	for _, file := range entries {
		if file == layoutFile || file == partialsFile {
			continue
		}
		set, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("views: clone layout: %w", err)
		}
		if _, err := set.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".tmpl")] = set
	}

	return &Renderer{pages: pages, fragments: base}, nil
}

// Page renders the named page inside the layout.
func (r *Renderer) Page(w io.Writer, name string, page Page) error {
	set, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("views: unknown page %q", name)
	}
	return execute(w, set, "base", page)
}

// Fragment renders a shared fragment such as "cart_dropdown".
func (r *Renderer) Fragment(w io.Writer, name string, data any) error {
	return execute(w, r.fragments, name, data)
}

// CartDropdown renders the cart dropdown fragment.
func (r *Renderer) CartDropdown(w io.Writer, view CartView) error {
	return r.Fragment(w, "cart_dropdown", view)
}

// HasPage reports whether name is a known page.
func (r *Renderer) HasPage(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// execute buffers the output so a failing template never leaves a partial response.
func execute(w io.Writer, t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("views: execute %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
