package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

func newReportFixture(t *testing.T) (*ReportService, *fakeTicketRepo, *fakeEscalationRepo) {
	t.Helper()
	tickets := newFakeTicketRepo()
	escalations := newFakeEscalationRepo(tickets)
	svc := NewReportService(tickets, escalations, 0)
	svc.now = func() time.Time { return testNow }
	return svc, tickets, escalations
}

func TestSummaryPassesThroughCsat(t *testing.T) {
	svc, tickets, _ := newReportFixture(t)

	resolvedAt := at(-2)
	seedTicket(t, tickets, domain.Ticket{
		UnitID:      "unit-icu",
		Status:      domain.TicketStatusResolved,
		Priority:    domain.TicketPriorityHigh,
		CreatedAt:   at(-10),
		ResolvedAt:  &resolvedAt,
		SlaDeadline: deadlinePtr(at(-1)),
	})
	seedTicket(t, tickets, domain.Ticket{
		UnitID:      "unit-icu",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityLow,
		CreatedAt:   at(-3),
		SlaDeadline: deadlinePtr(at(-1)),
	})

	summary, err := svc.Summary(context.Background(), SummaryFilter{CsatScore: floatPtr(4.2)})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalTickets)
	assert.InDelta(t, 50.0, summary.BreachRate, 1e-9)
	assert.InDelta(t, 8.0, summary.AvgResolutionHours, 1e-9)
	require.NotNil(t, summary.CsatScore)
	assert.InDelta(t, 4.2, *summary.CsatScore, 1e-9)
}

func TestSummaryHonorsConfiguredScanLimit(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := NewReportService(tickets, newFakeEscalationRepo(tickets), 1)
	svc.now = func() time.Time { return testNow }

	for i := 0; i < 3; i++ {
		seedTicket(t, tickets, domain.Ticket{
			UnitID:    "unit-icu",
			Status:    domain.TicketStatusOpen,
			Priority:  domain.TicketPriorityLow,
			CreatedAt: at(-1),
		})
	}

	summary, err := svc.Summary(context.Background(), SummaryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalTickets)
}

func TestEscalationStatsFoldsJoinedRows(t *testing.T) {
	svc, tickets, escalations := newReportFixture(t)

	ticket := seedTicket(t, tickets, domain.Ticket{
		UnitID:    "unit-icu",
		Status:    domain.TicketStatusEscalated,
		Priority:  domain.TicketPriorityCritical,
		CreatedAt: at(-20),
	})
	require.NoError(t, escalations.Create(context.Background(), &domain.Escalation{
		TicketID:    ticket.ID,
		Reason:      "stale",
		Status:      domain.EscalationStatusPending,
		EscalatedAt: testNow.Add(-30 * time.Minute),
	}))

	stats, err := svc.EscalationStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalActive)
	assert.Equal(t, 1, stats.HighUrgency)
	assert.Equal(t, 1, stats.WaitingResponse)
	assert.Equal(t, 1, stats.NewToday)
	assert.Equal(t, 0, stats.CompletedThisMonth)
}

func TestBreachedOpenTicketsFiltersByDeadline(t *testing.T) {
	svc, tickets, _ := newReportFixture(t)

	breached := seedTicket(t, tickets, domain.Ticket{
		UnitID:      "unit-icu",
		Status:      domain.TicketStatusInProgress,
		Priority:    domain.TicketPriorityHigh,
		CreatedAt:   at(-48),
		SlaDeadline: deadlinePtr(at(-24)),
	})
	seedTicket(t, tickets, domain.Ticket{
		UnitID:      "unit-icu",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityLow,
		CreatedAt:   at(-1),
		SlaDeadline: deadlinePtr(at(48)),
	})
	seedTicket(t, tickets, domain.Ticket{
		UnitID:    "unit-icu",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityLow,
		CreatedAt: at(-100),
	})

	got, err := svc.BreachedOpenTickets(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, breached.ID, got[0].ID)
}
