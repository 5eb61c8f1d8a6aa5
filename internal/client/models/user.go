// Package models defines client-side data models used by the support portal
// client: directory entries, image payloads and view state.
package models

import (
	"strings"
	"time"
)

// User is one directory entry as held by the backend. The authenticated
// operator's own profile (the Identity) has the same shape.
//
// Username, not ID, addresses update and delete calls.
type User struct {
	ID                   int64      `json:"id"`
	UserID               string     `json:"userId"`
	FirstName            string     `json:"firstName"`
	LastName             string     `json:"lastName"`
	Username             string     `json:"username"`
	Email                string     `json:"email"`
	ProfileImageURL      string     `json:"profileImageUrl"`
	LastLoginDateDisplay *time.Time `json:"lastLoginDateDisplay,omitempty"`
	JoinDate             *time.Time `json:"joinDate,omitempty"`
	Role                 string     `json:"role"`
	Authorities          []string   `json:"authorities"`
	Active               bool       `json:"active"`
	NotLocked            bool       `json:"notLocked"`
}

// FullName joins first and last name the way notifications print it.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Matches reports whether the lower-cased query is a substring of the first
// name, last name, email or username. Any single field is enough.
func (u User) Matches(query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{u.FirstName, u.LastName, u.Email, u.Username} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	c := u
	if u.Authorities != nil {
		c.Authorities = append([]string(nil), u.Authorities...)
	}
	if u.LastLoginDateDisplay != nil {
		t := *u.LastLoginDateDisplay
		c.LastLoginDateDisplay = &t
	}
	if u.JoinDate != nil {
		t := *u.JoinDate
		c.JoinDate = &t
	}
	return c
}

// WithProfileImage returns a copy of u pointing at a new profile image.
func (u User) WithProfileImage(url string) User {
	c := u.Clone()
	c.ProfileImageURL = url
	return c
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StatusMessage mirrors the backend's generic response envelope used by
// delete, reset-password and every error response.
type StatusMessage struct {
	HTTPStatusCode int    `json:"httpStatusCode,omitempty"`
	HTTPStatus     string `json:"httpStatus,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Message        string `json:"message"`
}
