package dto

import (
	"time"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
	"github.com/spec-kit/complaint-sla-service/internal/sla"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	UnitID        string                `json:"unit_id"`
	CategoryID    string                `json:"category_id"`
	PatientTypeID *string               `json:"patient_type_id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Priority      domain.TicketPriority `json:"priority"`
}

// UpdateStatusRequest payload for staff status transitions.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// SentimentRequest payload carrying an externally computed score.
type SentimentRequest struct {
	Score float64 `json:"score"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            string                `json:"id"`
	TicketNumber  string                `json:"ticket_number"`
	UnitID        string                `json:"unit_id"`
	CategoryID    string                `json:"category_id"`
	PatientTypeID *string               `json:"patient_type_id"`
	Title         string                `json:"title"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	SlaDeadline   *time.Time            `json:"sla_deadline"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info including the breach state
// at response time.
type TicketDetailResponse struct {
	ID             string                `json:"id"`
	TicketNumber   string                `json:"ticket_number"`
	UnitID         string                `json:"unit_id"`
	CategoryID     string                `json:"category_id"`
	PatientTypeID  *string               `json:"patient_type_id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	SentimentScore *float64              `json:"sentiment_score,omitempty"`
	SlaDeadline    *time.Time            `json:"sla_deadline"`
	BreachState    sla.BreachState       `json:"breach_state,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	ResolvedAt     *time.Time            `json:"resolved_at"`
	ClosedAt       *time.Time            `json:"closed_at"`
}

// EscalationResponse represents one escalation record.
type EscalationResponse struct {
	ID          string                  `json:"id"`
	TicketID    string                  `json:"ticket_id"`
	RuleID      *string                 `json:"rule_id"`
	ToRole      *domain.StaffRole       `json:"to_role"`
	Reason      string                  `json:"reason"`
	Status      domain.EscalationStatus `json:"status"`
	EscalatedAt time.Time               `json:"escalated_at"`
	ResolvedAt  *time.Time              `json:"resolved_at"`
}
