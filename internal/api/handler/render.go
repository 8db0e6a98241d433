package handler

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"
)

const layoutTemplate = "layout.html"

// Page templates, each rendered inside layout.html.
const (
	PageIndex     = "index.html"
	PageRegister  = "register.html"
	PageLogin     = "login.html"
	PageDashboard = "dashboard.html"
)

// pageData is the model every page template receives.
type pageData struct {
	Username string
	Flashes  []string
}

// Renderer implements echo.Renderer over the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses layout.html together with every page found under
// templates/ in fsys.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageIndex, PageRegister, PageLogin, PageDashboard} {
		tpl, err := template.New(layoutTemplate).ParseFS(fsys, "templates/"+layoutTemplate, "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = tpl
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("render: unknown page %q", name)
	}
	return tpl.ExecuteTemplate(w, layoutTemplate, data)
}
