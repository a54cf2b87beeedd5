// Package entity defines the domain entities for the user feature.
package entity

import "time"

// User represents a registered member of the social network.
type User struct {
	// Seq is the database-assigned sequence identifier.
	Seq uint

	// Email is the user's unique natural key.
	Email Email

	// Password is the bcrypt hash of the user's password.
	// It never holds plaintext.
	Password string

	CreatedAt time.Time
	UpdatedAt time.Time
}
