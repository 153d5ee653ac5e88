// Package views renders portal pages from embedded html/template files.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"unibuild/internal/session/models"
	"unibuild/internal/status"
	"unibuild/pkg/requestcontext"
)

//go:embed templates/*.html
var templateFS embed.FS

const baseTemplate = "templates/base.html"

// NavLink is one entry of a section's navigation.
type NavLink struct {
	Href  string
	Label string
}

// Page is the data every template receives.
type Page struct {
	Title     string
	User      *models.User
	Nav       []NavLink
	Path      string
	Error     string
	Notice    string
	RequestID string
	Data      any
}

// Renderer executes named page templates.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// New parses every page template against the base layout.
func New(logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	base, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, baseTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse base template: %w", err)
	}

	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == baseTemplate {
			continue
		}
		t, err := template.Must(base.Clone()).ParseFS(templateFS, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}

// Render writes page with status. Templates execute into a buffer so a
// failure never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page string, data Page) {
	ctx := req.Context()
	t, ok := r.pages[page]
	if !ok {
		r.logger.ErrorContext(ctx, "unknown page template", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if data.RequestID == "" {
		data.RequestID = requestcontext.RequestID(ctx)
	}
	if data.Path == "" {
		data.Path = req.URL.Path
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base.html", data); err != nil {
		r.logger.ErrorContext(ctx, "render page failed", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Placeholder renders a bare message page.
func (r *Renderer) Placeholder(w http.ResponseWriter, req *http.Request, status int, message string) {
	r.Render(w, req, status, "placeholder", Page{Title: "UniBuild", Notice: message})
}

var funcs = template.FuncMap{
	"badge":          status.Lookup,
	"badgeWithLabel": status.LookupWithLabel,
	"date":           formatDate,
	"money":          formatMoney,
	"active": func(current, href string) bool {
		return current == href || strings.HasPrefix(current, href+"/")
	},
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2 Jan 2006")
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
