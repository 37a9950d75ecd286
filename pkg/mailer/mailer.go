package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/wkim/teamshop-backend/pkg/logger"
)

// Mailer sends transactional email. Services depend on this interface so
// tests can inject a recording fake.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// Config holds SMTP settings. With an empty Host or From the mailer runs in
// dev mode and only logs the message.
type Config struct {
	Host     string
	Port     string
	From     string
	Password string
}

type smtpMailer struct {
	cfg Config
}

// New returns an SMTP-backed Mailer
func New(cfg Config) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(to, subject, htmlBody string) error {
	if m.cfg.Host == "" || m.cfg.From == "" {
		// Dev mode: no SMTP configured, log instead of sending
		logger.Info("[DEV MODE] Email not sent", map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return nil
	}

	message := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		m.cfg.From, to, subject, htmlBody,
	))

	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{to}, message); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("Email sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}
