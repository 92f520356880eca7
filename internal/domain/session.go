// Package domain contains core types shared across the dashctl client.
//
// This file defines the Session and Role types. A session is created by a
// successful login against the backend's /token endpoint and persisted by
// internal/session; it is read on every authenticated API call and on every
// route/command guard check.
package domain

// Role is the access level issued with a token.
//
// The backend gates some operations by role (e.g. only admin and staff may
// create jobs); the client enforces the same sets before issuing requests.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleClient Role = "client"
)

// ParseRole normalizes a role string from the backend or the session file.
// Unknown values are preserved as-is; they never match a required-role set.
func ParseRole(s string) Role {
	switch s {
	case "admin":
		return RoleAdmin
	case "staff":
		return RoleStaff
	case "client":
		return RoleClient
	default:
		return Role(s)
	}
}

// Known reports whether the role is one of the enumerated access levels.
func (r Role) Known() bool {
	return r == RoleAdmin || r == RoleStaff || r == RoleClient
}

// Session holds the bearer token and role issued at login.
//
// The zero value is the anonymous session. No expiry is tracked client-side;
// a stale token is indistinguishable from a valid one until the backend
// rejects a request with 401.
type Session struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
