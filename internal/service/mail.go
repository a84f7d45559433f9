// Package service contains the background work and outbound integrations of
// the API
package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Mail struct {
	From    string
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, m *Mail) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPMailer delivers mail through an SMTP server. A new connection is
// opened for every message.
type SMTPMailer struct {
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPMailer) Send(ctx context.Context, m *Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s, %w", m.To, err)
	}

	return nil
}

// LogMailer only logs outgoing mail. It's used when no SMTP host is set.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m *Mail) error {
	zap.L().Info("Mail not sent, no SMTP host configured",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
	)

	return nil
}

// MemoryMailer keeps every mail it is given. Err, if set, is returned
// instead of keeping the mail.
type MemoryMailer struct {
	mu   sync.Mutex
	Err  error
	Sent []Mail
}

func (f *MemoryMailer) Send(_ context.Context, m *Mail) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}

	f.Sent = append(f.Sent, *m)
	return nil
}

func (f *MemoryMailer) Messages() []Mail {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]Mail(nil), f.Sent...)
}

const PasswordResetSubject = "Roleplay: Recuperação de Senha"

var passwordResetTmpl = template.Must(template.New("forgot_password").Parse(`<p>Olá, {{.Username}}!</p>
<p>Recebemos um pedido de recuperação de senha para a sua conta.</p>
<p><a href="{{.Link}}">Clique aqui para escolher uma nova senha</a>.</p>
<p>O link expira em {{.TTL}}. Se não foi você, ignore este e-mail.</p>
`))

type PasswordResetMail struct {
	From     string
	To       string
	Username string
	BaseURL  string
	Token    string
	TTL      string
}

// ResetLink appends the token to base as the token query parameter
func ResetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func SendPasswordResetMail(ctx context.Context, m Mailer, p *PasswordResetMail) error {
	link, err := ResetLink(p.BaseURL, p.Token)
	if err != nil {
		return fmt.Errorf("invalid reset password url, %w", err)
	}

	var body bytes.Buffer

	// app schemes would otherwise be replaced with #ZgotmplZ
	err = passwordResetTmpl.Execute(&body, map[string]any{
		"Username": p.Username,
		"Link":     template.URL(link),
		"TTL":      p.TTL,
	})
	if err != nil {
		return fmt.Errorf("failed to render reset mail, %w", err)
	}

	return m.Send(ctx, &Mail{
		From:    p.From,
		To:      p.To,
		Subject: PasswordResetSubject,
		HTML:    body.String(),
	})
}
