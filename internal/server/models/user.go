// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an operator account. Callsign doubles as the login name and is
// stored uppercased.
type User struct {
	ID           int64
	Callsign     string
	PasswordHash string
	Role         string // "user", "award_admin", "admin"
	CreatedAt    time.Time
}
