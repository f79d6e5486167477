package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/yeremiapane/reservation-app/config"
	"github.com/yeremiapane/reservation-app/utils"
)

// SMTPMailer sends plain text mail through an SMTP relay. Without a
// configured relay it only logs the message.
type SMTPMailer struct {
	cfg      config.SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if !m.cfg.Enabled() {
		utils.InfoLogger.Infof("[MOCK EMAIL] to:%s subject:%s", to, subject)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	safe := func(s string) string {
		return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
	}

	from := fmt.Sprintf("%s <%s>", safe(m.cfg.FromName), m.cfg.Username)
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + safe(to),
		"Subject: " + safe(subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	if err := m.sendMail(addr, auth, m.cfg.Username, []string{safe(to)}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
