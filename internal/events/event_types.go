package events

import (
	"time"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketResolved      EventType = "ticket_resolved"
	EventSlaBreachDetected   EventType = "sla_breach_detected"
	EventTicketEscalated     EventType = "ticket_escalated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *string            `json:"user_id,omitempty"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// SystemActor is used when no authenticated subject triggered the event,
// such as scheduled escalation sweeps.
func SystemActor() Actor {
	return Actor{Type: domain.SubjectTypeSystem}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	UnitID       string                `json:"unit_id"`
	CategoryID   string                `json:"category_id"`
	Priority     domain.TicketPriority `json:"priority"`
	Title        string                `json:"title"`
	SlaDeadline  *time.Time            `json:"sla_deadline,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	ResolvedAt time.Time `json:"resolved_at"`
	Breached   bool      `json:"breached"`
}

// SlaBreachDetectedPayload payload.
type SlaBreachDetectedPayload struct {
	TicketNumber string    `json:"ticket_number"`
	Deadline     time.Time `json:"deadline"`
	DetectedAt   time.Time `json:"detected_at"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	EscalationID string            `json:"escalation_id"`
	RuleID       string            `json:"rule_id"`
	RuleName     string            `json:"rule_name"`
	ToRole       *domain.StaffRole `json:"to_role,omitempty"`
	Reason       string            `json:"reason"`
}
