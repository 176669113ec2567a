package domain

import "time"

// TicketStatus enumerates lifecycle states for complaint tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusEscalated  TicketStatus = "ESCALATED"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// IsTerminal reports whether no further work is expected on the ticket.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// IsHighUrgency reports whether the priority counts toward urgency dashboards.
func (p TicketPriority) IsHighUrgency() bool {
	return p == TicketPriorityHigh || p == TicketPriorityCritical
}

// Ticket is the aggregate for hospital complaints.
//
// ResolvedAt is set exactly once when the ticket transitions to RESOLVED.
// SlaDeadline is stamped at creation from the matching SLA rule and never
// mutated afterward; it stays nil when no rule matches.
type Ticket struct {
	ID             string
	TicketNumber   string
	ReporterID     string
	UnitID         string
	CategoryID     string
	PatientTypeID  *string
	AssigneeID     *string
	Title          string
	Description    string
	Status         TicketStatus
	Priority       TicketPriority
	SentimentScore *float64
	SlaDeadline    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
	ClosedAt       *time.Time
}
