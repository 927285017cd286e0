package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"465"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM"`
	FromName string `yaml:"from_name" env:"SMTP_FROM_NAME"`
	SSL      bool   `yaml:"ssl" env:"SMTP_SSL" env-default:"true"`
}

// Enabled reports whether enough settings are present to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// SMTPDispatcher delivers verification and recovery email over SMTP using
// HTML bodies rendered from embedded templates.
type SMTPDispatcher struct {
	cfg       SMTPConfig
	templates *template.Template
}

var _ Dispatcher = &SMTPDispatcher{}

func NewSMTPDispatcher(cfg SMTPConfig) (*SMTPDispatcher, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}

	return &SMTPDispatcher{
		cfg:       cfg,
		templates: templates,
	}, nil
}

func (d *SMTPDispatcher) Send(ctx context.Context, msg Notification) error {
	subject, templateName := contentFor(msg.Purpose)

	body, err := d.render(templateName, msg)
	if err != nil {
		return err
	}

	m := mail.NewMsg()
	if err := m.FromFormat(d.cfg.FromName, d.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, body)

	opts := []mail.Option{
		mail.WithPort(d.cfg.Port),
	}
	if d.cfg.SSL {
		opts = append(opts, mail.WithSSL())
	}
	if d.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(d.cfg.Username),
			mail.WithPassword(d.cfg.Password),
		)
	}

	client, err := mail.NewClient(d.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, m)
}

func (d *SMTPDispatcher) render(name string, msg Notification) (string, error) {
	var buf bytes.Buffer
	if err := d.templates.ExecuteTemplate(&buf, name, msg); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

func contentFor(purpose Purpose) (subject, templateName string) {
	switch purpose {
	case PurposeRecovery:
		return "Password recovery", "password_recovery.html"
	default:
		return "Confirm your email", "email_verification.html"
	}
}
