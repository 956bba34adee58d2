package email

import (
	"fmt"
	"strings"
	"sync"
	"text/template"
)

const TemplatePropertyAlert = "property_alert"

const propertyAlertTemplate = `{{.Title}}
{{- if .ParcelID}}
Parcel ID: {{.ParcelID}}
{{- end}}

{{.Message}}

View property: {{.Link}}
`

// AlertData feeds the property_alert template.
type AlertData struct {
	Title    string
	ParcelID string
	Message  string
	Link     string
}

// TemplateManager renders plaintext bodies from named templates.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager returns a manager with the built-in templates loaded.
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}
	if err := tm.AddTemplate(TemplatePropertyAlert, propertyAlertTemplate); err != nil {
		panic(err)
	}
	return tm
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	return tm.render(templateName, data)
}

// RenderAlert renders the property alert body.
func (tm *TemplateManager) RenderAlert(data AlertData) (string, error) {
	return tm.render(TemplatePropertyAlert, data)
}

func (tm *TemplateManager) render(templateName string, data any) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Option("missingkey=zero").Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}
