package entity

import (
	"fmt"
	"strings"

	"github.com/mcnijman/go-emailaddress"

	"social_backend/internal/feature/user/domain"
)

// maxEmailLength matches the size of the users.email column.
const maxEmailLength = 255

// Email is a validated, normalized email address.
// The zero value is not a valid address; use NewEmail.
type Email struct {
	address string
}

// NewEmail trims and lower-cases raw, then validates the result.
// It returns domain.ErrInvalidEmail when the address is empty, too long or malformed.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{}, fmt.Errorf("%w: empty", domain.ErrInvalidEmail)
	}
	if len(normalized) > maxEmailLength {
		return Email{}, fmt.Errorf("%w: longer than %d bytes", domain.ErrInvalidEmail, maxEmailLength)
	}
	parsed, err := emailaddress.Parse(normalized)
	if err != nil {
		return Email{}, fmt.Errorf("%w: %q", domain.ErrInvalidEmail, raw)
	}
	return Email{address: parsed.String()}, nil
}

// String returns the normalized address.
func (e Email) String() string {
	return e.address
}

// IsZero reports whether e was never initialized through NewEmail.
func (e Email) IsZero() bool {
	return e.address == ""
}
