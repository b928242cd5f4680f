package mail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"text/template"

	"gopkg.in/gomail.v2"
)

var ErrNoRecipients = errors.New("at least one recipient is required")

var exportBody = template.Must(template.New("export").Parse(
	`Hello,

Attached is the {{.Title}} export ({{.LeadCount}} leads).
{{if .Filters}}Filters: {{.Filters}}
{{end}}
File: {{.Filename}}
`))

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

// BuildExportMessage assembles the mail carrying a spreadsheet attachment.
func (s *EmailSender) BuildExportMessage(to []string, data ExportEmailData, content []byte) (*gomail.Message, error) {
	if len(to) == 0 {
		return nil, ErrNoRecipients
	}

	var body bytes.Buffer
	if err := exportBody.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to render export mail: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", fmt.Sprintf("%s export: %s", data.Title, data.Filename))
	m.SetBody("text/plain", body.String())
	m.Attach(data.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(content)
		return err
	}))
	return m, nil
}

func (s *EmailSender) SendExport(to []string, data ExportEmailData, content []byte) error {
	return s.sendWith(gomail.NewDialer(s.Host, s.Port, s.User, s.Password), to, data, content)
}

func (s *EmailSender) sendWith(d Dialer, to []string, data ExportEmailData, content []byte) error {
	m, err := s.BuildExportMessage(to, data, content)
	if err != nil {
		return err
	}
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send export mail over SMTP: %w", err)
	}
	return nil
}
