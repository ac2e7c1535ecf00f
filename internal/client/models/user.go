// Package models holds the client-side data types exchanged with the
// resume-analysis backend.
package models

// User is the minimal identity kept for an authenticated session. The
// backend is the source of truth for everything else about the account.
type User struct {
	Username string `json:"username"`
}
