package api

import (
	"embed"
	"html/template"
	"strings"

	"github.com/lox/towerdash/internal/insights"
)

//go:embed templates/*
var templateFS embed.FS

// newTemplates parses the embedded HTML templates with custom functions.
func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"metricLabel": func(m insights.Metric) string {
			return strings.ReplaceAll(string(m), "_", " ")
		},
		"upper": strings.ToUpper,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
