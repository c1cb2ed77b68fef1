// Package prompts renders the per-methodology assessment prompts.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/ahrav/go-appraise/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Data holds the values a prompt template may reference. Text fields are
// already truncated by the caller.
type Data struct {
	Title        string
	StudyDesign  domain.StudyDesign
	Methods      string
	Results      string
	Population   string
	Intervention string
	Comparator   string
	Outcome      string
}

// Template is a parsed prompt template. It is safe for concurrent use.
type Template struct {
	tmpl *template.Template
}

// Parse compiles a custom prompt template. References to fields not in Data
// fail at render time.
func Parse(name, text string) (*Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("prompt template %s: parse: %w", name, err)
	}
	return &Template{tmpl: t}, nil
}

// Default returns the built-in template for a methodology.
func Default(m domain.Methodology) (*Template, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: no prompt template for methodology %q", domain.ErrInvalidInput, m)
	}
	name := string(m) + ".tmpl"
	text, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("prompt template %s: %w", name, err)
	}
	return Parse(name, string(text))
}

// MustDefault is Default for package initialization; it panics on error.
func MustDefault(m domain.Methodology) *Template {
	t, err := Default(m)
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the template with data.
func (t *Template) Render(data Data) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prompt template %s: render: %w", t.tmpl.Name(), err)
	}
	return buf.String(), nil
}

// Name returns the template name.
func (t *Template) Name() string { return t.tmpl.Name() }
