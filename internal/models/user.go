package models

import "time"

// User is an account record, keyed by username in the users collection.
// LastLogin is nil until the first successful login.
type User struct {
	PasswordHash string     `json:"passwordHash"`
	IsAdmin      bool       `json:"isAdmin"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin"`
}
