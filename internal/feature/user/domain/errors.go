// Package domain defines domain-level errors for the user feature.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors for user operations.
var (
	// ErrUserNotFound indicates that no user matches the given seq or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists indicates that another user already registered the email.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidEmail indicates that the email address is empty or malformed.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidPassword indicates that the password does not satisfy the password rules.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidCredentials is returned by login when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Kind classifies a failure so that callers can react without matching on messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindDataAccess
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindDataAccess:
		return "data_access"
	default:
		return "unknown"
	}
}

// Error carries the Kind of a failure and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap annotates err with kind and op. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the Kind of err. Bare sentinels of this package are
// classified as well, so adapters may return them unwrapped.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	switch {
	case errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrEmailAlreadyExists),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrInvalidCredentials):
		return KindValidation
	}
	return KindUnknown
}
