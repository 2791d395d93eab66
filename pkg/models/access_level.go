// Package models contains domain types for tasklane-engine.
package models

import (
	"encoding/json"
	"fmt"
)

// AccessLevel describes a user's permissions within a project team.
// Levels are ordered: each level includes everything the levels below
// it permit, so authorization checks compare with AtLeast.
type AccessLevel int

const (
	// AccessReader grants permission to read the contents of a project.
	AccessReader AccessLevel = iota + 1
	// AccessEditor grants permission to edit project contents: add and
	// remove tasks, change task status, edit task details.
	AccessEditor
	// AccessManager grants permission to manage the project itself:
	// rename, delete and manage the team.
	AccessManager
)

var accessLevelNames = map[AccessLevel]string{
	AccessReader:  "reader",
	AccessEditor:  "editor",
	AccessManager: "manager",
}

// ParseAccessLevel converts a wire-format name into an AccessLevel.
func ParseAccessLevel(s string) (AccessLevel, error) {
	for level, name := range accessLevelNames {
		if name == s {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown access level: %q", s)
}

// Valid reports whether the level is one of the defined constants.
func (l AccessLevel) Valid() bool {
	_, ok := accessLevelNames[l]
	return ok
}

// AtLeast reports whether the level grants the permissions of required.
func (l AccessLevel) AtLeast(required AccessLevel) bool {
	return l >= required
}

// String returns the wire-format name of the level.
func (l AccessLevel) String() string {
	if name, ok := accessLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("access_level(%d)", int(l))
}

// MarshalJSON encodes the level as its wire-format name.
func (l AccessLevel) MarshalJSON() ([]byte, error) {
	name, ok := accessLevelNames[l]
	if !ok {
		return nil, fmt.Errorf("cannot marshal invalid access level %d", int(l))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a wire-format name into the level.
func (l *AccessLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	level, err := ParseAccessLevel(name)
	if err != nil {
		return err
	}
	*l = level
	return nil
}
