// Package dispatch is the outbound email boundary. Two backends exist: an
// HTTP transactional-email provider and a plain SMTP relay, selected by
// configuration.
package dispatch

import "context"

type Email struct {
	To       string
	Subject  string
	HTMLBody string
}

// Dispatcher sends one email and returns the provider's message id.
type Dispatcher interface {
	Send(ctx context.Context, email Email) (string, error)
}

// Sender is the identity emails are sent as.
type Sender struct {
	Name  string
	Email string
}
