package domain

import "time"

// Role enumerates application roles stored on a profile.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// ProfileStatus tracks whether the account has completed email confirmation.
type ProfileStatus string

const (
	ProfileStatusActive   ProfileStatus = "active"
	ProfileStatusInactive ProfileStatus = "inactive"
)

// Profile is the application-level record for an admin or staff member.
// Its ID equals the identity record ID.
type Profile struct {
	ID            string
	FullName      string
	Email         string
	ContactNumber *string
	Role          Role
	Status        ProfileStatus
	StallID       *string
	CreatedAt     time.Time
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
