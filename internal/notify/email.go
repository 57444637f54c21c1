package notify

import (
	"time"

	gomail "gopkg.in/mail.v2"
)

// EmailConfig carries the SMTP settings for the email channel.
type EmailConfig struct {
	Server   string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

// EmailDeliverer sends alert mail over SMTP.
type EmailDeliverer struct {
	cfg  EmailConfig
	send func(*gomail.Message) error
}

// NewEmailDeliverer builds the email channel.
func NewEmailDeliverer(cfg EmailConfig) *EmailDeliverer {
	dialer := gomail.NewDialer(cfg.Server, cfg.Port, cfg.User, cfg.Password)
	dialer.Timeout = 10 * time.Second
	return &EmailDeliverer{
		cfg:  cfg,
		send: func(m *gomail.Message) error { return dialer.DialAndSend(m) },
	}
}

// Name identifies the channel in logs.
func (d *EmailDeliverer) Name() string { return "email" }

// Deliver sends one plain-text message.
func (d *EmailDeliverer) Deliver(title, message string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", d.cfg.From)
	m.SetHeader("To", d.cfg.To)
	m.SetHeader("Subject", title)
	m.SetBody("text/plain; charset=utf-8", message)
	return d.send(m)
}
