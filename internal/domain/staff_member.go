package domain

import "time"

// StaffRole enumerates internal operator roles, ordered by escalation level.
type StaffRole string

const (
	StaffRoleStaff    StaffRole = "STAFF"
	StaffRoleUnitHead StaffRole = "UNIT_HEAD"
	StaffRoleDirector StaffRole = "DIRECTOR"
	StaffRoleAdmin    StaffRole = "ADMIN"
)

// StaffMember models a hospital employee handling complaints.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	UnitID       *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
