package models

import "time"

// User is a registered user of the app.
// PasswordHash is an argon2id PHC-encoded string and never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRef is the shallow representation of a user, safe to show to
// anyone who shares a project with them.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Ref returns the shallow representation of the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name}
}
