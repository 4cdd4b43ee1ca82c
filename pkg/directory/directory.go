package directory

import (
	"context"
	"errors"
)

// Store is the interface implemented by user directory backends.
//
// All methods are safe for concurrent use. A backend must provide
// read-your-writes consistency for a single username without serializing
// operations on unrelated usernames.
type Store interface {
	// Register adds a new user. It returns ErrExists when the username
	// is already registered.
	Register(ctx context.Context, username, password string) error

	// Authenticate checks a username/password pair. It returns
	// ErrBadCredentials when the user is unknown or the password does
	// not match; the two cases are deliberately indistinguishable.
	Authenticate(ctx context.Context, username, password string) error

	// Exists reports whether a username is registered.
	Exists(ctx context.Context, username string) (bool, error)

	// UpdatePassword replaces a user's credential. It returns
	// ErrNotFound when the user is unknown.
	UpdatePassword(ctx context.Context, username, password string) error

	// Close releases backend resources.
	Close() error
}

// Sentinel errors returned by Store implementations. Handlers map these
// to HTTP statuses; they are domain outcomes, not failures.
var (
	// ErrExists indicates the username is already registered.
	ErrExists = errors.New("username already registered")

	// ErrNotFound indicates the username is not registered.
	ErrNotFound = errors.New("user not found")

	// ErrBadCredentials indicates an unknown user or a wrong password.
	ErrBadCredentials = errors.New("invalid username or password")
)
