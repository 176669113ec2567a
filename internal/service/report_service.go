package service

import (
	"context"
	"time"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
	"github.com/spec-kit/complaint-sla-service/internal/repository"
	"github.com/spec-kit/complaint-sla-service/internal/sla"
)

// defaultScanLimit caps how many rows a reporting or sweep pass loads when
// no limit is configured.
const defaultScanLimit = 10000

// ReportService produces dashboard aggregates. Every reporting pass uses a
// single now so classification stays consistent across rows.
type ReportService struct {
	tickets     repository.TicketRepository
	escalations repository.EscalationRepository
	scanLimit   int
	now         func() time.Time
}

// NewReportService constructs the service. scanLimit bounds how many tickets
// one reporting pass loads; zero or negative falls back to the default.
func NewReportService(tickets repository.TicketRepository, escalations repository.EscalationRepository, scanLimit int) *ReportService {
	if scanLimit <= 0 {
		scanLimit = defaultScanLimit
	}
	return &ReportService{
		tickets:     tickets,
		escalations: escalations,
		scanLimit:   scanLimit,
		now:         time.Now,
	}
}

// SummaryFilter narrows the ticket population for a summary.
type SummaryFilter struct {
	UnitID      *string
	CategoryID  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	CsatScore   *float64
}

// Summary folds the filtered tickets into breach and resolution aggregates.
// The CSAT score is supplied by the survey system and passed through.
func (s *ReportService) Summary(ctx context.Context, filter SummaryFilter) (sla.Summary, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		UnitID:      filter.UnitID,
		CategoryID:  filter.CategoryID,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       s.scanLimit,
	})
	if err != nil {
		return sla.Summary{}, err
	}

	snapshots := make([]sla.TicketSnapshot, 0, len(tickets))
	for i := range tickets {
		snapshots = append(snapshots, sla.SnapshotFromTicket(&tickets[i]))
	}

	summary, err := sla.Summarize(snapshots, s.now())
	if err != nil {
		return sla.Summary{}, err
	}
	summary.CsatScore = filter.CsatScore
	return summary, nil
}

// EscalationStats folds escalated tickets into dashboard counters.
func (s *ReportService) EscalationStats(ctx context.Context) (sla.EscalationStats, error) {
	rows, err := s.escalations.ListEscalatedTickets(ctx)
	if err != nil {
		return sla.EscalationStats{}, err
	}
	views := make([]sla.EscalatedTicketView, 0, len(rows))
	for i := range rows {
		views = append(views, sla.EscalatedTicketView{
			TicketID:    rows[i].TicketID,
			Priority:    rows[i].Priority,
			Status:      rows[i].Status,
			CreatedAt:   rows[i].TicketCreatedAt,
			EscalatedAt: rows[i].EscalatedAt,
		})
	}
	return sla.FoldStats(views, s.now()), nil
}

// BreachedOpenTickets lists unresolved tickets past their deadline, for the
// supervisor work queue.
func (s *ReportService) BreachedOpenTickets(ctx context.Context, unitID *string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		UnitID: unitID,
		Statuses: []domain.TicketStatus{
			domain.TicketStatusOpen,
			domain.TicketStatusInProgress,
			domain.TicketStatusEscalated,
		},
		Limit: s.scanLimit,
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	var breached []domain.Ticket
	for i := range tickets {
		state, err := sla.Classify(sla.SnapshotFromTicket(&tickets[i]), now)
		if err != nil {
			continue
		}
		if state == sla.StateBreachedOpen {
			breached = append(breached, tickets[i])
		}
	}
	return breached, nil
}
