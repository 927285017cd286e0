package contacts

import (
	"context"

	"github.com/contactio/go-contacts/notify"
)

// AccountDirectory is the narrow storage interface the authenticator
// consumes. Lookups return a NotFound rich error when no account matches;
// Insert surfaces unique constraint violations as conflicts.
type AccountDirectory interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	Insert(ctx context.Context, account *Account) (*Account, error)
	Save(ctx context.Context, account *Account) (*Account, error)
}

// Dispatcher delivers account email. Implementations live in the notify
// package; the authenticator fires dispatches asynchronously and never lets
// a delivery failure surface to its caller.
type Dispatcher interface {
	Send(ctx context.Context, msg notify.Notification) error
}
