package sla

import (
	"time"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// TicketSnapshot is the read-only view the core evaluates. Snapshots are
// built by the caller from rows already fetched; the core never does I/O.
type TicketSnapshot struct {
	ID             string
	Priority       domain.TicketPriority
	Status         domain.TicketStatus
	CreatedAt      time.Time
	ResolvedAt     *time.Time
	SlaDeadline    *time.Time
	SentimentScore *float64
}

// SnapshotFromTicket projects a domain ticket onto the evaluator view.
func SnapshotFromTicket(t *domain.Ticket) TicketSnapshot {
	return TicketSnapshot{
		ID:             t.ID,
		Priority:       t.Priority,
		Status:         t.Status,
		CreatedAt:      t.CreatedAt,
		ResolvedAt:     t.ResolvedAt,
		SlaDeadline:    t.SlaDeadline,
		SentimentScore: t.SentimentScore,
	}
}

// EscalatedTicketView is the row shape folded into dashboard counters.
type EscalatedTicketView struct {
	TicketID    string
	Priority    domain.TicketPriority
	Status      domain.TicketStatus
	CreatedAt   time.Time
	EscalatedAt time.Time
}
