package domain

import "time"

// EscalationStatus tracks an escalation record's lifecycle.
type EscalationStatus string

const (
	EscalationStatusPending  EscalationStatus = "PENDING"
	EscalationStatusAccepted EscalationStatus = "ACCEPTED"
	EscalationStatusResolved EscalationStatus = "RESOLVED"
)

// Escalation is an immutable event record created once per escalate action;
// only Status and ResolvedAt change on closure.
type Escalation struct {
	ID          string
	TicketID    string
	RuleID      *string
	FromUnitID  *string
	ToUnitID    *string
	FromRole    *StaffRole
	ToRole      *StaffRole
	Reason      string
	Status      EscalationStatus
	EscalatedAt time.Time
	ResolvedAt  *time.Time
}
