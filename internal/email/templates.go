package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	texttemplate "text/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[string]string{
	TemplateWelcome:           "Welcome to your client portal",
	TemplateMilestoneComplete: "Milestone complete: {{.milestone_name}}",
	TemplateTaskAssigned:      "New task assigned: {{.task_name}}",
}

type renderer struct {
	bodies   *template.Template
	subjects map[string]*texttemplate.Template
}

func newRenderer() (*renderer, error) {
	bodies, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	subjectTmpls := make(map[string]*texttemplate.Template, len(subjects))
	for name, raw := range subjects {
		tmpl, err := texttemplate.New(name).Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse subject %s: %w", name, err)
		}
		subjectTmpls[name] = tmpl
	}
	return &renderer{bodies: bodies, subjects: subjectTmpls}, nil
}

// render produces the subject and HTML body for one email type.
func (r *renderer) render(emailType string, data map[string]any) (subject, html string, err error) {
	subjectTmpl, ok := r.subjects[emailType]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, emailType)
	}
	if data == nil {
		data = map[string]any{}
	}

	var subjectBuf bytes.Buffer
	if err := subjectTmpl.Execute(&subjectBuf, data); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	var bodyBuf bytes.Buffer
	if err := r.bodies.ExecuteTemplate(&bodyBuf, emailType+".html", data); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return subjectBuf.String(), bodyBuf.String(), nil
}
