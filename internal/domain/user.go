package domain

import (
	"strings"
	"time"
)

// Role is the sole authorization axis for ticket actions.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleAgent      Role = "agent"
)

var roleLabels = map[Role]string{
	RoleAdmin:      "Administrator",
	RoleTechnician: "Technician",
	RoleAgent:      "Agent",
}

// RoleLabel returns a display label for r.
func RoleLabel(r Role) string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}

// User is an authenticated helpdesk account. Email is the login identity.
type User struct {
	ID           int64
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	Department   string
	Phone        string
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full
}
