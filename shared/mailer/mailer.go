package mailer

import (
	"crypto/tls"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

var ErrNoRecipients = errors.New("no recipients specified")

// Sender delivers a single email synchronously.
type Sender interface {
	Send(email Email) error
}

// Email is an outgoing message. HTMLBody wins over Body when both are set;
// Body then becomes the plain-text alternative.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// SMTPConfig describes the relay mail is handed to.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"     envDefault:"localhost"`
	Port     int    `env:"SMTP_PORT"     envDefault:"1025"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"     envDefault:"contact@booksocialnetwork.com"`

	// SSL selects implicit TLS. Otherwise STARTTLS is used when the relay offers it.
	SSL                bool `env:"SMTP_SSL"`
	InsecureSkipVerify bool `env:"SMTP_INSECURE_SKIP_VERIFY"`
}

// Validate reports the first missing setting. Username and password may be empty
// for relays that accept unauthenticated mail, such as a local maildev.
func (c SMTPConfig) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("missing SMTP_HOST environment variable")
	case c.Port <= 0:
		return fmt.Errorf("SMTP_PORT must be positive")
	case c.From == "":
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}

	return nil
}

// Mailer sends email through an SMTP relay, one connection per message.
type Mailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.SSL = cfg.SSL
	if cfg.InsecureSkipVerify {
		dialer.TLSConfig = &tls.Config{ServerName: cfg.Host, InsecureSkipVerify: true}
	}

	return &Mailer{from: cfg.From, dialer: dialer}, nil
}

func (m *Mailer) Send(email Email) error {
	msg, err := m.compose(email)
	if err != nil {
		return err
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send %q to %v: %w", email.Subject, email.To, err)
	}

	return nil
}

func (m *Mailer) compose(email Email) (*gomail.Message, error) {
	if len(email.To) == 0 {
		return nil, ErrNoRecipients
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	switch {
	case email.HTMLBody != "":
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	default:
		msg.SetBody("text/plain", email.Body)
	}

	return msg, nil
}
