// Package pages holds the server-rendered HTML of the web UI.
package pages

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"lower": strings.ToLower,
	"inc":   func(i int) int { return i + 1 },
	"year":  func() int { return time.Now().Year() },
	"field": newField,
}

// Field is one required text input of the tech card form.
type Field struct {
	Label   string
	Name    string
	Value   string
	Missing bool
}

func newField(label, name, value string, missing map[string]bool) Field {
	return Field{Label: label, Name: name, Value: value, Missing: missing[name]}
}

// Templates parses every page. Each file defines one named template per
// page plus the shared "header" and "footer".
func Templates() *template.Template {
	return template.Must(template.New("pages").Funcs(funcs).ParseFS(files, "templates/*.html"))
}

// Layout is the data every page passes to the shared header.
type Layout struct {
	Title  string
	Active string
	// Available is shown in the header when known.
	Available *int
}

const (
	NavHome      = "home"
	NavTechCard  = "techcard"
	NavQuality   = "quality"
	NavDashboard = "dashboard"
)
