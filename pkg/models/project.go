package models

import "time"

// Project is a container of tasks shared by a team.
// DefaultAccessLevel is applied to invites that do not name a level.
type Project struct {
	ID                 int64       `json:"id"`
	Title              string      `json:"title"`
	DefaultAccessLevel AccessLevel `json:"default_access_level"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// ProjectWithAccess pairs a project with the access level the viewing
// user holds in it. Used when listing a user's projects.
type ProjectWithAccess struct {
	Project
	AccessLevel AccessLevel `json:"access_level"`
}
