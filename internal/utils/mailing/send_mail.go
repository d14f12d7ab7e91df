package mailing

import (
	"foodgram/internal/logging"
	"foodgram/internal/utils"
	"strconv"

	"gopkg.in/gomail.v2"
)

type (
	Mailer interface {
		SendMail(toEmail string, subject string, body string) error
	}

	MailConfig struct {
		AppURL       string
		SMTPHost     string
		SMTPPort     string
		SMTPSender   string
		SMTPEmail    string
		SMTPPassword string
	}

	smtpMailer struct {
		config MailConfig
	}

	nopMailer struct{}
)

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

// NewMailer returns an SMTP mailer, or a mailer that drops every message when
// SMTP_HOST is not configured.
func NewMailer() Mailer {
	cfg := LoadMailConfig()
	if cfg.SMTPHost == "" {
		logging.Info().Msg("SMTP_HOST not set, outgoing mail disabled")
		return nopMailer{}
	}
	return &smtpMailer{config: cfg}
}

func (m *smtpMailer) SendMail(toEmail string, subject string, body string) error {
	mailer := gomail.NewMessage()
	if m.config.SMTPSender != "" {
		mailer.SetAddressHeader("From", m.config.SMTPEmail, m.config.SMTPSender)
	} else {
		mailer.SetHeader("From", m.config.SMTPEmail)
	}
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)

	port, err := strconv.Atoi(m.config.SMTPPort)
	if err != nil {
		return err
	}
	dialer := gomail.NewDialer(
		m.config.SMTPHost,
		port,
		m.config.SMTPEmail,
		m.config.SMTPPassword,
	)

	return dialer.DialAndSend(mailer)
}

func (nopMailer) SendMail(string, string, string) error {
	return nil
}
