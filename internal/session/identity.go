// Package session provides the signed-in identity and the credentials stub
// that produces it. Role checks are explicit capability methods.
package session

import "strings"

// Role is the kind of account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Status describes whether an identity is available.
type Status int

const (
	StatusNone Status = iota
	StatusLoading
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "none"
	}
}

// Identity is the current user.
type Identity struct {
	Role   Role   `yaml:"role"`
	UserID int    `yaml:"user_id,omitempty"` // zero for admin
	Email  string `yaml:"email"`
}

// Resolved reports whether the identity names a usable account.
func (id Identity) Resolved() bool {
	switch id.Role {
	case RoleAdmin:
		return true
	case RoleUser:
		return id.UserID > 0
	default:
		return false
	}
}

// Status returns StatusAuthenticated for a resolved identity, StatusNone otherwise.
func (id Identity) Status() Status {
	if id.Resolved() {
		return StatusAuthenticated
	}
	return StatusNone
}

// IsAdmin reports whether the identity has the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// CanCreate reports whether the identity may create tasks. Only standard users can.
func (id Identity) CanCreate() bool {
	return id.Role == RoleUser && id.UserID > 0
}

// OwnerFilter returns the owner ID to list tasks for. Zero (every owner) for admin.
func (id Identity) OwnerFilter() int {
	if id.IsAdmin() {
		return 0
	}
	return id.UserID
}

// DisplayName returns a short label for the identity.
func (id Identity) DisplayName() string {
	name := strings.TrimSpace(id.Email)
	if name == "" {
		name = string(id.Role)
	}
	if id.IsAdmin() {
		return name + " (admin)"
	}
	return name
}
