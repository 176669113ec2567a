package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
	"github.com/spec-kit/complaint-sla-service/internal/events"
)

func int64Ptr(v int64) *int64 { return &v }

func floatPtr(v float64) *float64 { return &v }

func rolePtr(r string) *string { return &r }

func at(hours int) time.Time { return testNow.Add(time.Duration(hours) * time.Hour) }

func deadlinePtr(t time.Time) *time.Time { return &t }

func newEscalationFixture(t *testing.T, rules []domain.EscalationRule) (*EscalationService, *fakeTicketRepo, *fakeEscalationRepo) {
	t.Helper()

	tickets := newFakeTicketRepo()
	escalations := newFakeEscalationRepo(tickets)
	ruleRepo := &fakeEscalationRuleRepo{rules: rules}

	svc := NewEscalationService(EscalationDependencies{
		TicketRepo:         tickets,
		EscalationRuleRepo: ruleRepo,
		EscalationRepo:     escalations,
		Dispatcher:         events.NewInMemoryDispatcher(),
		Logger:             zap.NewNop(),
	})
	svc.now = func() time.Time { return testNow }
	return svc, tickets, escalations
}

func seedTicket(t *testing.T, tickets *fakeTicketRepo, ticket domain.Ticket) *domain.Ticket {
	t.Helper()
	require.NoError(t, tickets.Create(context.Background(), &ticket))
	return &ticket
}

func TestRunSweepEscalatesMatchingTicket(t *testing.T) {
	rules := []domain.EscalationRule{{
		ID:   "rule-stale-critical",
		Name: "stale critical complaints",
		Conditions: domain.TriggerConditions{
			Priorities:           []domain.TicketPriority{domain.TicketPriorityCritical},
			Statuses:             []domain.TicketStatus{domain.TicketStatusOpen},
			TimeThresholdSeconds: int64Ptr(3600),
		},
		Actions: []domain.EscalationAction{{
			Type:   domain.ActionEscalateToRole,
			Target: rolePtr("UNIT_HEAD"),
		}},
		IsActive: true,
	}}
	svc, tickets, escalations := newEscalationFixture(t, rules)

	stale := seedTicket(t, tickets, domain.Ticket{
		UnitID:    "unit-icu",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityCritical,
		CreatedAt: at(-2),
	})
	fresh := seedTicket(t, tickets, domain.Ticket{
		UnitID:    "unit-icu",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityCritical,
		CreatedAt: testNow.Add(-10 * time.Minute),
	})

	result, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.TicketsEvaluated)
	assert.Equal(t, 1, result.RuleMatches)
	assert.Equal(t, 1, result.Escalated)

	escalated, err := tickets.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, escalated.Status)

	untouched, err := tickets.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, untouched.Status)

	records, err := escalations.ListByTicket(context.Background(), stale.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.EscalationStatusPending, records[0].Status)
	require.NotNil(t, records[0].ToRole)
	assert.Equal(t, domain.StaffRoleUnitHead, *records[0].ToRole)
}

func TestRunSweepDoesNotEscalateTwiceForSameRule(t *testing.T) {
	rules := []domain.EscalationRule{{
		ID:   "rule-1",
		Name: "escalated follow-up",
		Conditions: domain.TriggerConditions{
			TimeThresholdSeconds: int64Ptr(60),
		},
		Actions:  []domain.EscalationAction{{Type: domain.ActionEscalateToRole}},
		IsActive: true,
	}}
	svc, tickets, escalations := newEscalationFixture(t, rules)

	ticket := seedTicket(t, tickets, domain.Ticket{
		UnitID:    "unit-icu",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityHigh,
		CreatedAt: at(-1),
	})

	_, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	_, err = svc.RunSweep(context.Background())
	require.NoError(t, err)

	records, err := escalations.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRunSweepBumpsPriority(t *testing.T) {
	rules := []domain.EscalationRule{{
		ID:   "rule-bump",
		Name: "bump negative sentiment",
		Conditions: domain.TriggerConditions{
			SentimentThreshold: floatPtr(3),
		},
		Actions:  []domain.EscalationAction{{Type: domain.ActionBumpPriority}},
		IsActive: true,
	}}
	svc, tickets, _ := newEscalationFixture(t, rules)

	angry := seedTicket(t, tickets, domain.Ticket{
		UnitID:         "unit-icu",
		Status:         domain.TicketStatusOpen,
		Priority:       domain.TicketPriorityMedium,
		SentimentScore: floatPtr(2.1),
		CreatedAt:      at(-1),
	})
	// no score supplied, sentiment condition fails closed
	unscored := seedTicket(t, tickets, domain.Ticket{
		UnitID:    "unit-icu",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityMedium,
		CreatedAt: at(-1),
	})

	result, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.PrioritiesBumped)

	bumped, err := tickets.GetByID(context.Background(), angry.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, bumped.Priority)

	same, err := tickets.GetByID(context.Background(), unscored.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityMedium, same.Priority)
}

func TestRunSweepDetectsBreaches(t *testing.T) {
	svc, tickets, _ := newEscalationFixture(t, nil)

	seedTicket(t, tickets, domain.Ticket{
		UnitID:      "unit-icu",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityHigh,
		CreatedAt:   at(-48),
		SlaDeadline: deadlinePtr(at(-24)),
	})
	seedTicket(t, tickets, domain.Ticket{
		UnitID:      "unit-icu",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityLow,
		CreatedAt:   at(-1),
		SlaDeadline: deadlinePtr(at(24)),
	})

	result, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.BreachesDetected)
}

func TestEvaluateTicketIsDryRun(t *testing.T) {
	rules := []domain.EscalationRule{{
		ID:       "rule-any",
		Name:     "matches everything",
		Actions:  []domain.EscalationAction{{Type: domain.ActionFlagReview}},
		IsActive: true,
	}}
	svc, tickets, escalations := newEscalationFixture(t, rules)

	ticket := seedTicket(t, tickets, domain.Ticket{
		UnitID:    "unit-icu",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityLow,
		CreatedAt: at(-1),
	})

	matches, err := svc.EvaluateTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "rule-any", matches[0].RuleID)

	records, err := escalations.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
}

func TestResolveEscalationClosesRecordOnce(t *testing.T) {
	svc, tickets, escalations := newEscalationFixture(t, nil)
	staff := &domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleUnitHead, Active: true}

	ticket := seedTicket(t, tickets, domain.Ticket{
		UnitID:    "unit-icu",
		Status:    domain.TicketStatusEscalated,
		Priority:  domain.TicketPriorityHigh,
		CreatedAt: at(-5),
	})
	record := &domain.Escalation{
		TicketID:    ticket.ID,
		Reason:      "manual",
		Status:      domain.EscalationStatusPending,
		EscalatedAt: at(-4),
	}
	require.NoError(t, escalations.Create(context.Background(), record))

	require.NoError(t, svc.ResolveEscalation(context.Background(), staff, record.ID))

	closed, err := escalations.GetByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscalationStatusResolved, closed.Status)
	require.NotNil(t, closed.ResolvedAt)

	// second close is rejected, the record is immutable once resolved
	require.Error(t, svc.ResolveEscalation(context.Background(), staff, record.ID))
}
