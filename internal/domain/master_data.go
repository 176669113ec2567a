package domain

import "time"

// Unit represents a hospital unit (ward, polyclinic, support installation).
type Unit struct {
	ID          string
	Name        string
	UnitTypeID  string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ServiceCategory classifies complaints (facility, clinical service, billing).
type ServiceCategory struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PatientType distinguishes patient populations for SLA purposes
// (inpatient, outpatient, emergency).
type PatientType struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
