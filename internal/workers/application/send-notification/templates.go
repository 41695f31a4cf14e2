package sendnotification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"connect-workers/internal/models"
)

type message struct {
	Subject string
	HTML    string
	Text    string
}

type emailTemplate struct {
	subject *texttemplate.Template
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

var emailTemplates = map[string]emailTemplate{
	models.NotificationApplicationReceived: {
		subject: texttemplate.Must(texttemplate.New("subject").Parse(`We received your application, {{.FirstName}}`)),
		html: htmltemplate.Must(htmltemplate.New("html").Parse(
			`<p>Hi {{.FirstName}},</p>` +
				`<p>Thanks for applying to join Connect with {{.CompanyName}}. Our team reviews every application and will be in touch within five business days.</p>` +
				`<p>Reference: {{.ApplicationID}}</p>`)),
		text: texttemplate.Must(texttemplate.New("text").Parse(
			"Hi {{.FirstName}},\n\nThanks for applying to join Connect with {{.CompanyName}}. " +
				"Our team reviews every application and will be in touch within five business days.\n\nReference: {{.ApplicationID}}\n")),
	},
	models.NotificationApplicationApproved: {
		subject: texttemplate.Must(texttemplate.New("subject").Parse(`Welcome to Connect, {{.FirstName}}`)),
		html: htmltemplate.Must(htmltemplate.New("html").Parse(
			`<p>Hi {{.FirstName}},</p>` +
				`<p>{{.CompanyName}} has been approved as a {{.Tier}} provider. You can now set up your profile and start receiving client matches.</p>` +
				`<p>Reference: {{.ApplicationID}}</p>`)),
		text: texttemplate.Must(texttemplate.New("text").Parse(
			"Hi {{.FirstName}},\n\n{{.CompanyName}} has been approved as a {{.Tier}} provider. " +
				"You can now set up your profile and start receiving client matches.\n\nReference: {{.ApplicationID}}\n")),
	},
}

var adminSMS = texttemplate.Must(texttemplate.New("sms").Parse(
	`Connect: {{.Tier}} applicant {{.CompanyName}} scored {{.Score}}{{if .AutoApproved}} (auto-approved){{end}}. Ref {{.ApplicationID}}`))

type templateData struct {
	ApplicationID string
	FirstName     string
	CompanyName   string
	Score         int
	Tier          string
	AutoApproved  bool
}

func newTemplateData(in *Input) templateData {
	first := in.FullName
	for i, r := range first {
		if r == ' ' {
			first = first[:i]
			break
		}
	}
	if first == "" {
		first = "there"
	}
	company := in.CompanyName
	if company == "" {
		company = "your company"
	}
	return templateData{
		ApplicationID: in.ApplicationID,
		FirstName:     first,
		CompanyName:   company,
		Score:         in.Score,
		Tier:          in.Tier,
		AutoApproved:  in.AutoApproved,
	}
}

func renderEmail(kind string, data templateData) (message, error) {
	tmpl, ok := emailTemplates[kind]
	if !ok {
		return message{}, fmt.Errorf("no email template for %s", kind)
	}
	var subject, html, text bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return message{}, fmt.Errorf("render %s subject: %w", kind, err)
	}
	if err := tmpl.html.Execute(&html, data); err != nil {
		return message{}, fmt.Errorf("render %s html: %w", kind, err)
	}
	if err := tmpl.text.Execute(&text, data); err != nil {
		return message{}, fmt.Errorf("render %s text: %w", kind, err)
	}
	return message{Subject: subject.String(), HTML: html.String(), Text: text.String()}, nil
}

func renderSMS(data templateData) (string, error) {
	var buf bytes.Buffer
	if err := adminSMS.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render admin sms: %w", err)
	}
	return buf.String(), nil
}
