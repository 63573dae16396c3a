// --- START OF FINAL REVISED FILE pkg/auditor/template/template.go ---
package template

import (
	_ "embed" // Required for //go:embed
	"fmt"
	"io"
	"text/template"
	"time"
)

//go:embed default.tmpl
var defaultTemplateContent string

// DefaultTemplateName is the name the embedded report template is parsed under.
const DefaultTemplateName = "default"

// TemplateExecutor renders report data with a Go template.
type TemplateExecutor interface {
	// Execute renders data with tmpl. A nil tmpl uses the embedded default.
	Execute(writer io.Writer, tmpl *template.Template, data any) error
}

// GoTemplateExecutor implements the TemplateExecutor interface using Go's text/template.
type GoTemplateExecutor struct{}

// NewGoTemplateExecutor creates a new GoTemplateExecutor.
func NewGoTemplateExecutor() *GoTemplateExecutor {
	return &GoTemplateExecutor{}
}

// Execute runs the template, loading the default when tmpl is nil.
func (e *GoTemplateExecutor) Execute(writer io.Writer, tmpl *template.Template, data any) error {
	if tmpl == nil {
		defaultTmpl, err := LoadDefaultTemplate()
		if err != nil {
			return err
		}
		tmpl = defaultTmpl
	}
	if err := tmpl.Execute(writer, data); err != nil {
		return fmt.Errorf("template execution failed for %q: %w", tmpl.Name(), err)
	}
	if _, err := io.WriteString(writer, "\n"); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// FuncMap holds the functions available to report templates, custom ones included.
var FuncMap = template.FuncMap{
	"formatDate": func(t time.Time, layout string) string {
		if layout == "" {
			layout = time.RFC3339
		}
		return t.Format(layout)
	},
	"inc": func(i int) int { return i + 1 },
}

// LoadDefaultTemplate parses the embedded default template.
func LoadDefaultTemplate() (*template.Template, error) {
	if defaultTemplateContent == "" {
		return nil, fmt.Errorf("embedded default template content is empty")
	}
	tmpl, err := template.New(DefaultTemplateName).Funcs(FuncMap).Parse(defaultTemplateContent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default template: %w", err)
	}
	return tmpl, nil
}

// Parse parses a custom report template with the same function set as the default.
func Parse(name, content string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(FuncMap).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
	}
	return tmpl, nil
}

// --- END OF FINAL REVISED FILE pkg/auditor/template/template.go ---
