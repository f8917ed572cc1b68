package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStoreUnavailable marks a failed read or write against the session or activity store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidArgument marks caller input that cannot be applied.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized marks a call made without a resolved identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks a keyed record that does not exist.
	ErrNotFound = errors.New("not found")
)

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStoreUnavailable, err))
}

func invalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.TrimSpace(msg))
}
