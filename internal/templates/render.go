// Package templates renders the printable plan report.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"bizplan/internal/log"
	"bizplan/internal/services/narrative"
)

//go:embed html/*.html
var files embed.FS

// Renderer handles template rendering
type Renderer struct {
	templates *template.Template
	logger    *log.Logger
}

// New parses the embedded templates
func New(logger *log.Logger) (*Renderer, error) {
	if logger == nil {
		logger = log.Discard()
	}
	tmpl, err := template.New("").Funcs(funcMap()).ParseFS(files, "html/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	names, _ := fs.Glob(files, "html/*.html")
	logger.Debug("templates loaded", "files", len(names))
	return &Renderer{templates: tmpl, logger: logger}, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"money":    narrative.FormatMoney,
		"percent":  narrative.FormatPercent,
		"count":    narrative.FormatCount,
		"month":    monthLabel,
		"date":     formatDate,
		"deref":    deref,
		"safeHTML": safeHTML,
		"signClass": func(v float64) string {
			switch {
			case v > 0:
				return "positive"
			case v < 0:
				return "negative"
			}
			return "zero"
		},
		"upper": strings.ToUpper,
	}
}

// Render executes a template into a buffer first so a failure never sends a
// half-written page
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("render template", "template", name, log.FieldError, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

// RenderToString renders a template to a string
func (r *Renderer) RenderToString(name string, data any) (string, error) {
	var buf strings.Builder
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var monthNames = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// monthLabel maps a zero-based month index to its Portuguese abbreviation
func monthLabel(i int) string {
	if i < 0 || i >= len(monthNames) {
		return ""
	}
	return monthNames[i]
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// safeHTML marks narrative HTML as trusted. It comes from goldmark, which
// drops raw HTML by default.
func safeHTML(s string) template.HTML {
	return template.HTML(s)
}
