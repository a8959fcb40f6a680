package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"mockbank/internal/models"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layoutTemplate = "templates/layout.html"

// Status colors used by the transfer pages
const (
	colorSuccess    = "#10b981"
	colorFailed     = "#ef4444"
	colorProcessing = "#f59e0b"
	colorUnknown    = "#6b7280"
)

var templateFuncs = template.FuncMap{
	"statusColor": statusColor,
	"shortID":     shortID,
	"money":       func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"when":        func(t time.Time) string { return t.Local().Format("2006-01-02 15:04:05") },
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// Renderer renders one page template inside the shared layout
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every embedded page together with the layout
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutTemplate {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(templatesFS, layoutTemplate, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

func statusColor(status string) string {
	switch status {
	case models.TransferStatusSuccess:
		return colorSuccess
	case models.TransferStatusFailed:
		return colorFailed
	case models.TransferStatusProcessing:
		return colorProcessing
	default:
		return colorUnknown
	}
}

// shortID keeps the first 8 characters of an id followed by "..."
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
