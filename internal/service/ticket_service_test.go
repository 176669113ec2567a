package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
	"github.com/spec-kit/complaint-sla-service/internal/events"
	"github.com/spec-kit/complaint-sla-service/internal/sla"
)

var testNow = time.Date(2025, 4, 7, 9, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newTicketFixture(t *testing.T, rules []domain.SlaRule) (*TicketService, *fakeTicketRepo, events.Dispatcher) {
	t.Helper()

	tickets := newFakeTicketRepo()
	units := newFakeUnitRepo(&domain.Unit{
		ID:         "unit-icu",
		Name:       "ICU",
		UnitTypeID: "type-clinical",
		IsActive:   true,
	})
	categories := newFakeCategoryRepo(&domain.ServiceCategory{
		ID:       "cat-care",
		Name:     "Quality of Care",
		IsActive: true,
	})
	patientTypes := newFakePatientTypeRepo(&domain.PatientType{
		ID:       "pt-inpatient",
		Name:     "Inpatient",
		IsActive: true,
	})
	slaRules := &fakeSlaRuleRepo{rules: rules}
	dispatcher := events.NewInMemoryDispatcher()

	svc := NewTicketService(TicketDependencies{
		TicketRepo:      tickets,
		UnitRepo:        units,
		CategoryRepo:    categories,
		PatientTypeRepo: patientTypes,
		SlaRuleRepo:     slaRules,
		Dispatcher:      dispatcher,
	})
	svc.now = func() time.Time { return testNow }
	return svc, tickets, dispatcher
}

func TestCreateTicketStampsDeadlineFromMostSpecificRule(t *testing.T) {
	rules := []domain.SlaRule{
		{
			ID:                  "rule-default",
			Name:                "default",
			ResolutionTimeHours: 72,
			IsActive:            true,
		},
		{
			ID:                  "rule-clinical-care",
			Name:                "clinical care",
			UnitTypeID:          strPtr("type-clinical"),
			ServiceCategoryID:   strPtr("cat-care"),
			ResolutionTimeHours: 24,
			IsActive:            true,
		},
	}
	svc, _, _ := newTicketFixture(t, rules)

	ticket, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		UnitID:     "unit-icu",
		CategoryID: "cat-care",
		Title:      "Long wait for pain medication",
		Priority:   domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	require.NotNil(t, ticket.SlaDeadline)
	assert.Equal(t, testNow.Add(24*time.Hour), *ticket.SlaDeadline)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "TKT-20250407-0001", ticket.TicketNumber)
}

func TestCreateTicketWithoutMatchingRuleLeavesDeadlineUnset(t *testing.T) {
	rules := []domain.SlaRule{
		{
			ID:                  "rule-other",
			Name:                "other unit type",
			UnitTypeID:          strPtr("type-administrative"),
			ResolutionTimeHours: 48,
			IsActive:            true,
		},
	}
	svc, _, _ := newTicketFixture(t, rules)

	ticket, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		UnitID:     "unit-icu",
		CategoryID: "cat-care",
		Title:      "Billing question",
	})
	require.NoError(t, err)
	assert.Nil(t, ticket.SlaDeadline)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
}

func TestCreateTicketAmbiguousRulesRejected(t *testing.T) {
	rules := []domain.SlaRule{
		{
			ID:                  "rule-a",
			UnitTypeID:          strPtr("type-clinical"),
			ResolutionTimeHours: 24,
			IsActive:            true,
		},
		{
			ID:                  "rule-b",
			ServiceCategoryID:   strPtr("cat-care"),
			ResolutionTimeHours: 48,
			IsActive:            true,
		},
	}
	svc, _, _ := newTicketFixture(t, rules)

	_, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		UnitID:     "unit-icu",
		CategoryID: "cat-care",
		Title:      "Conflicting rules",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sla.ErrAmbiguousConfiguration)
}

func TestTicketNumberSequencesPerDay(t *testing.T) {
	svc, _, _ := newTicketFixture(t, nil)

	first, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		UnitID: "unit-icu", CategoryID: "cat-care", Title: "first",
	})
	require.NoError(t, err)
	second, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		UnitID: "unit-icu", CategoryID: "cat-care", Title: "second",
	})
	require.NoError(t, err)

	assert.Equal(t, "TKT-20250407-0001", first.TicketNumber)
	assert.Equal(t, "TKT-20250407-0002", second.TicketNumber)
}

func TestCreateTicketPersistsServiceClockAsCreatedAt(t *testing.T) {
	rules := []domain.SlaRule{
		{ID: "rule-default", Name: "default", ResolutionTimeHours: 24, IsActive: true},
	}
	svc, tickets, _ := newTicketFixture(t, rules)

	ticket, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		UnitID: "unit-icu", CategoryID: "cat-care", Title: "complaint",
	})
	require.NoError(t, err)

	// the stored row carries the same instant that anchored the number
	// sequence and the deadline
	assert.True(t, ticket.CreatedAt.Equal(testNow))
	require.NotNil(t, ticket.SlaDeadline)
	assert.Equal(t, ticket.CreatedAt.Add(24*time.Hour), *ticket.SlaDeadline)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.True(t, stored.CreatedAt.Equal(testNow))
}

func TestUpdateStatusSetsResolvedAtOnce(t *testing.T) {
	svc, tickets, _ := newTicketFixture(t, nil)
	staff := &domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleAdmin, Active: true}

	ticket, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		UnitID: "unit-icu", CategoryID: "cat-care", Title: "noise complaint",
	})
	require.NoError(t, err)

	resolved, err := svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusResolved, "fixed")
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	firstResolvedAt := *resolved.ResolvedAt

	// reopen and resolve again; the original resolved_at stays
	_, err = svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusInProgress, "reopened")
	require.NoError(t, err)
	again, err := svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusResolved, "fixed again")
	require.NoError(t, err)
	require.NotNil(t, again.ResolvedAt)
	assert.Equal(t, firstResolvedAt, *again.ResolvedAt)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	svc, _, _ := newTicketFixture(t, nil)
	staff := &domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleAdmin, Active: true}

	ticket, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		UnitID: "unit-icu", CategoryID: "cat-care", Title: "complaint",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusClosed, "")
	require.Error(t, err)
}

func TestStaffScopeRestrictsUnit(t *testing.T) {
	svc, _, _ := newTicketFixture(t, nil)

	ticket, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		UnitID: "unit-icu", CategoryID: "cat-care", Title: "complaint",
	})
	require.NoError(t, err)

	otherUnit := &domain.StaffMember{ID: "staff-2", Role: domain.StaffRoleStaff, UnitID: strPtr("unit-er"), Active: true}
	_, err = svc.GetTicketForStaff(context.Background(), otherUnit, ticket.ID)
	require.Error(t, err)

	sameUnit := &domain.StaffMember{ID: "staff-3", Role: domain.StaffRoleStaff, UnitID: strPtr("unit-icu"), Active: true}
	got, err := svc.GetTicketForStaff(context.Background(), sameUnit, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	director := &domain.StaffMember{ID: "staff-4", Role: domain.StaffRoleDirector, Active: true}
	_, err = svc.GetTicketForStaff(context.Background(), director, ticket.ID)
	require.NoError(t, err)
}

func TestAttachSentimentValidatesSurveyScale(t *testing.T) {
	svc, _, _ := newTicketFixture(t, nil)

	ticket, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		UnitID: "unit-icu", CategoryID: "cat-care", Title: "complaint",
	})
	require.NoError(t, err)

	_, err = svc.AttachSentiment(context.Background(), ticket.ID, 0.5)
	require.Error(t, err)
	_, err = svc.AttachSentiment(context.Background(), ticket.ID, 10.5)
	require.Error(t, err)

	updated, err := svc.AttachSentiment(context.Background(), ticket.ID, 3.2)
	require.NoError(t, err)
	require.NotNil(t, updated.SentimentScore)
	assert.InDelta(t, 3.2, *updated.SentimentScore, 1e-9)
}

func TestCloseTicketAsUserRequiresResolvedState(t *testing.T) {
	svc, _, _ := newTicketFixture(t, nil)
	staff := &domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleAdmin, Active: true}

	ticket, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		UnitID: "unit-icu", CategoryID: "cat-care", Title: "complaint",
	})
	require.NoError(t, err)

	_, err = svc.CloseTicketAsUser(context.Background(), "user-1", ticket.ID)
	require.Error(t, err)

	_, err = svc.UpdateStatus(context.Background(), staff, ticket.ID, domain.TicketStatusResolved, "")
	require.NoError(t, err)

	closed, err := svc.CloseTicketAsUser(context.Background(), "user-1", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
}
