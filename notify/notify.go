// Package notify delivers the transactional email the account lifecycle
// produces: the confirm-your-address message after signup and the password
// recovery message. Delivery is best effort by contract; callers decide
// whether to wait on Send.
package notify

import (
	"context"
	"fmt"
	"strings"
)

// Purpose names the email being sent.
type Purpose string

const (
	// PurposeVerification carries an email verification token.
	PurposeVerification Purpose = "verification"
	// PurposeRecovery carries a password recovery token.
	PurposeRecovery Purpose = "recovery"
)

// Notification is one outbound message.
type Notification struct {
	To       string
	Username string
	BaseURL  string
	Purpose  Purpose
	Token    string
}

// Link returns the action URL the message should point the recipient at.
func (n Notification) Link() string {
	switch n.Purpose {
	case PurposeRecovery:
		return fmt.Sprintf("%s/api/auth/password_recovery/%s", strings.TrimRight(n.BaseURL, "/"), n.Token)
	default:
		return fmt.Sprintf("%s/api/auth/confirmed_email/%s", strings.TrimRight(n.BaseURL, "/"), n.Token)
	}
}

// Dispatcher sends notifications.
type Dispatcher interface {
	Send(ctx context.Context, msg Notification) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, msg Notification) error

// Send implements Dispatcher.
func (f DispatcherFunc) Send(ctx context.Context, msg Notification) error {
	if f == nil {
		return nil
	}
	return f(ctx, msg)
}

// Discard is a Dispatcher that drops every message. Useful in tests and
// in environments without an SMTP relay.
var Discard = DispatcherFunc(func(context.Context, Notification) error {
	return nil
})
