// Package views holds the board's embedded HTML templates.
package views

import (
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/pkg/errors"
)

//go:embed templates
var templatesFS embed.FS

// Names of the views a controller can render.
const (
	List       = "boards/list"
	WriteForm  = "boards/writeform"
	Detail     = "boards/detail"
	DeleteForm = "boards/deleteform"
	Edit       = "boards/edit"
	Error      = "error"
)

var pages = []string{List, WriteForm, Detail, DeleteForm, Edit, Error}

// DateTimeLayout is how timestamps appear on every page.
const DateTimeLayout = "2006-01-02 15:04"

var funcs = template.FuncMap{
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(DateTimeLayout)
	},
	"inc": func(n int) int { return n + 1 },
}

// Renderer executes a page wrapped in the shared layout.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page together with the layout.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse view %s", name)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render writes view name for model to w. Form field errors default to an
// empty map so templates can index them freely.
func (r *Renderer) Render(w io.Writer, name string, model map[string]any) error {
	t, ok := r.templates[name]
	if !ok {
		return errors.Errorf("unknown view %q", name)
	}
	if model == nil {
		model = map[string]any{}
	}
	if _, ok := model["errors"]; !ok {
		model["errors"] = map[string]string{}
	}
	return t.ExecuteTemplate(w, "layout", model)
}
