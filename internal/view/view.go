// Package view renders the server-side HTML views.
//
// Every view file defines a "content" template. A view is either executed on
// its own as a fragment, or wrapped by the "layout" template as a full page.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/nsilverman/compete/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// View names
const (
	ContestSelectView  = "contest_select.html"
	ContestEnteredView = "contest_entered.html"
)

var viewNames = []string{ContestSelectView, ContestEnteredView}

// Lookup returns the localized text for a message key
type Lookup func(key string) string

// Base carries the per-request localization shared by all views
type Base struct {
	Lang   Lookup
	Locale string
}

// Line is called from templates as {{.Line "key"}}
func (b Base) Line(key string) string {
	if b.Lang == nil {
		return key
	}
	return b.Lang(key)
}

// ContestSelectData is the input of the contest selection view
type ContestSelectData struct {
	Base
	Contests []models.ContestSummary
	Error    string
}

// ContestEnteredData is the input of the entered-contest view
type ContestEnteredData struct {
	Base
	Contest        models.ContestSummary
	AlreadyEntered bool
}

// Renderer holds the parsed views. It is safe for concurrent use.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses every view together with the layout
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(viewNames))}
	for _, name := range viewNames {
		tmpl, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse view %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// Fragment renders the named view without the layout
func (r *Renderer) Fragment(w io.Writer, name string, data interface{}) error {
	return r.execute(w, name, "content", data)
}

// Page renders the named view wrapped in the layout
func (r *Renderer) Page(w io.Writer, name string, data interface{}) error {
	return r.execute(w, name, "layout", data)
}

func (r *Renderer) execute(w io.Writer, name, entry string, data interface{}) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("view not found: %s", name)
	}
	return tmpl.ExecuteTemplate(w, entry, data)
}

var defaultRenderer = mustRenderer()

func mustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// RenderContestSelect writes the contest selection fragment. An empty list
// renders the "no contest" notice instead of the form.
func RenderContestSelect(w io.Writer, contests []models.ContestSummary, lang Lookup) error {
	return defaultRenderer.Fragment(w, ContestSelectView, ContestSelectData{
		Base:     Base{Lang: lang},
		Contests: contests,
	})
}

// ContestSelectHTML is RenderContestSelect returning a string
func ContestSelectHTML(contests []models.ContestSummary, lang Lookup) (string, error) {
	var buf bytes.Buffer
	if err := RenderContestSelect(&buf, contests, lang); err != nil {
		return "", err
	}
	return buf.String(), nil
}
