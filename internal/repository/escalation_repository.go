package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// EscalatedTicketRow joins an escalation with its ticket's fields needed for
// dashboard folding.
type EscalatedTicketRow struct {
	TicketID        string
	Priority        domain.TicketPriority
	Status          domain.TicketStatus
	TicketCreatedAt time.Time
	EscalatedAt     time.Time
}

// EscalationRepository persists escalation event records.
type EscalationRepository interface {
	Create(ctx context.Context, escalation *domain.Escalation) error
	Close(ctx context.Context, id string, resolvedAt time.Time) error
	GetByID(ctx context.Context, id string) (*domain.Escalation, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Escalation, error)
	ListEscalatedTickets(ctx context.Context) ([]EscalatedTicketRow, error)
}

type escalationRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRepository builds the repository.
func NewEscalationRepository(pool *pgxpool.Pool) EscalationRepository {
	return &escalationRepository{pool: pool}
}

func (r *escalationRepository) Create(ctx context.Context, escalation *domain.Escalation) error {
	const query = `
        INSERT INTO escalations (ticket_id, rule_id, from_unit_id, to_unit_id, from_role, to_role,
            reason, status, escalated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		escalation.TicketID,
		escalation.RuleID,
		escalation.FromUnitID,
		escalation.ToUnitID,
		escalation.FromRole,
		escalation.ToRole,
		escalation.Reason,
		escalation.Status,
		escalation.EscalatedAt,
	).Scan(&escalation.ID)
}

// Close marks the record resolved; everything else stays immutable.
func (r *escalationRepository) Close(ctx context.Context, id string, resolvedAt time.Time) error {
	const query = `
        UPDATE escalations SET status=$1, resolved_at=$2
        WHERE id=$3 AND resolved_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, domain.EscalationStatusResolved, resolvedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *escalationRepository) GetByID(ctx context.Context, id string) (*domain.Escalation, error) {
	const query = `
        SELECT id, ticket_id, rule_id, from_unit_id, to_unit_id, from_role, to_role,
               reason, status, escalated_at, resolved_at
        FROM escalations WHERE id=$1`
	var esc domain.Escalation
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&esc.ID,
		&esc.TicketID,
		&esc.RuleID,
		&esc.FromUnitID,
		&esc.ToUnitID,
		&esc.FromRole,
		&esc.ToRole,
		&esc.Reason,
		&esc.Status,
		&esc.EscalatedAt,
		&esc.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &esc, nil
}

func (r *escalationRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Escalation, error) {
	const query = `
        SELECT id, ticket_id, rule_id, from_unit_id, to_unit_id, from_role, to_role,
               reason, status, escalated_at, resolved_at
        FROM escalations WHERE ticket_id=$1 ORDER BY escalated_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Escalation
	for rows.Next() {
		var esc domain.Escalation
		if err := rows.Scan(
			&esc.ID,
			&esc.TicketID,
			&esc.RuleID,
			&esc.FromUnitID,
			&esc.ToUnitID,
			&esc.FromRole,
			&esc.ToRole,
			&esc.Reason,
			&esc.Status,
			&esc.EscalatedAt,
			&esc.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, esc)
	}
	return result, rows.Err()
}

// ListEscalatedTickets returns one row per escalated ticket (latest
// escalation wins) with the ticket fields the stats folder needs.
func (r *escalationRepository) ListEscalatedTickets(ctx context.Context) ([]EscalatedTicketRow, error) {
	const query = `
        SELECT DISTINCT ON (t.id) t.id, t.priority, t.status, t.created_at, e.escalated_at
        FROM escalations e
        JOIN tickets t ON t.id = e.ticket_id
        ORDER BY t.id, e.escalated_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EscalatedTicketRow
	for rows.Next() {
		var row EscalatedTicketRow
		if err := rows.Scan(
			&row.TicketID,
			&row.Priority,
			&row.Status,
			&row.TicketCreatedAt,
			&row.EscalatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
