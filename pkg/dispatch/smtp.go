package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	mail "gopkg.in/gomail.v2"
)

// SMTPDispatcher sends through a plain SMTP relay. SMTP has no provider
// message id, so one is synthesized for the send log.
type SMTPDispatcher struct {
	dialer *mail.Dialer
	sender Sender
}

func NewSMTPDispatcher(host string, port int, username, password string, sender Sender) *SMTPDispatcher {
	return &SMTPDispatcher{
		dialer: mail.NewDialer(host, port, username, password),
		sender: sender,
	}
}

func (d *SMTPDispatcher) Send(ctx context.Context, email Email) (string, error) {
	m := mail.NewMessage()
	m.SetAddressHeader("From", d.sender.Email, d.sender.Name)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/html", email.HTMLBody)

	done := make(chan error, 1)
	go func() {
		done <- d.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("smtp send: %w", err)
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return fmt.Sprintf("smtp-%d-%s", time.Now().Unix(), uuid.NewString()), nil
}
