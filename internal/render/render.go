// Package render parses page templates against a shared layout and plugs
// them into gin as its HTML renderer.
package render

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	ginrender "github.com/gin-gonic/gin/render"
)

const (
	layoutFile  = "base.html"
	includesDir = "includes"
	layoutName  = "base"
)

// Renderer holds one template set per page: layout + includes + page.
type Renderer struct {
	pages map[string]*template.Template
}

var _ ginrender.HTMLRender = (*Renderer)(nil)

// New parses every *.html under root. Pages are addressed by their path
// relative to root, e.g. "blog/index.html".
func New(fsys fs.FS, root string, funcs template.FuncMap) (*Renderer, error) {
	shared := template.New("layout").Funcs(funcs)

	layout, err := fs.ReadFile(fsys, path.Join(root, layoutFile))
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	if _, err := shared.Parse(string(layout)); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	includes, err := fs.Glob(fsys, path.Join(root, includesDir, "*.html"))
	if err != nil {
		return nil, err
	}
	if len(includes) > 0 {
		if _, err := shared.ParseFS(fsys, includes...); err != nil {
			return nil, fmt.Errorf("parse includes: %w", err)
		}
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	err = fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(p, root+"/")
		if d.IsDir() || !strings.HasSuffix(p, ".html") ||
			name == layoutFile || strings.HasPrefix(name, includesDir+"/") {
			return nil
		}

		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		tmpl, err := shared.Clone()
		if err != nil {
			return err
		}
		if _, err := tmpl.New(name).Parse(string(body)); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Has reports whether a page with this name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Instance implements gin's render.HTMLRender.
func (r *Renderer) Instance(name string, data any) ginrender.Render {
	tmpl, ok := r.pages[name]
	if !ok {
		return missing{name: name}
	}
	return ginrender.HTML{Template: tmpl, Name: layoutName, Data: data}
}

type missing struct{ name string }

func (m missing) Render(http.ResponseWriter) error {
	return fmt.Errorf("template %q not found", m.name)
}

func (m missing) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}
