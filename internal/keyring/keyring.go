// Package keyring keeps the PostgreSQL connection string in the OS keyring.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/momentum/internal/constants"
)

var (
	ErrNotFound    = errors.New("no connection string in keyring")
	ErrUnavailable = errors.New("OS keyring is not available")
)

// Entry addresses one secret by service and user
type Entry struct {
	Service string
	User    string
}

// Default is the entry momentum reads its connection string from
func Default() Entry {
	return Entry{Service: constants.AppName, User: constants.DefaultKeyringUser}
}

func (e Entry) Get() (string, error) {
	secret, err := keyring.Get(e.Service, e.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return secret, nil
}

func (e Entry) Set(secret string) error {
	if secret == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(e.Service, e.User, secret); err != nil {
		return fmt.Errorf("failed to store connection string: %w", err)
	}
	return nil
}

func (e Entry) Delete() error {
	err := keyring.Delete(e.Service, e.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete connection string: %w", err)
	}
	return nil
}

// Status describes the entry without revealing the secret
type Status struct {
	Available bool
	Stored    bool
}

// Check reports whether the keyring answers and whether e holds a value.
func (e Entry) Check() Status {
	_, err := keyring.Get(e.Service, e.User)
	switch {
	case err == nil:
		return Status{Available: true, Stored: true}
	case errors.Is(err, keyring.ErrNotFound):
		return Status{Available: true}
	default:
		return Status{}
	}
}
