package domain

import "time"

// SlaRule maps a (unit type, service category, patient type) combination to
// response and resolution targets. Nil keys act as wildcards; the resolver
// prefers the rule with the most concrete keys.
type SlaRule struct {
	ID                  string
	Name                string
	UnitTypeID          *string
	ServiceCategoryID   *string
	PatientTypeID       *string
	ResponseTimeHours   float64
	ResolutionTimeHours float64
	EscalationTimeHours *float64
	BusinessHoursOnly   bool
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Specificity counts how many key columns the rule constrains.
func (r SlaRule) Specificity() int {
	n := 0
	if r.UnitTypeID != nil {
		n++
	}
	if r.ServiceCategoryID != nil {
		n++
	}
	if r.PatientTypeID != nil {
		n++
	}
	return n
}
