package models

import "time"

// Membership links a user to a project team with an access level.
// A user holds at most one membership per project.
type Membership struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"user_id"`
	ProjectID   int64       `json:"project_id"`
	AccessLevel AccessLevel `json:"access_level"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TeamMember is a membership joined with the member's shallow user
// representation, as returned by the team listing.
type TeamMember struct {
	User        UserRef     `json:"user"`
	AccessLevel AccessLevel `json:"access_level"`
	CreatedAt   time.Time   `json:"created_at"`
}
