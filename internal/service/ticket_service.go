package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-sla-service/internal/cache"
	"github.com/spec-kit/complaint-sla-service/internal/domain"
	"github.com/spec-kit/complaint-sla-service/internal/events"
	"github.com/spec-kit/complaint-sla-service/internal/repository"
	"github.com/spec-kit/complaint-sla-service/internal/sla"
	apperrors "github.com/spec-kit/complaint-sla-service/pkg/errorutil"
)

// TicketService coordinates complaint ticket workflows, including SLA
// deadline stamping at creation time.
type TicketService struct {
	tickets      repository.TicketRepository
	units        repository.UnitRepository
	categories   repository.ServiceCategoryRepository
	patientTypes repository.PatientTypeRepository
	slaRules     repository.SlaRuleRepository
	ruleCache    *cache.RuleCache
	dispatcher   events.Dispatcher
	now          func() time.Time
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	UnitRepo        repository.UnitRepository
	CategoryRepo    repository.ServiceCategoryRepository
	PatientTypeRepo repository.PatientTypeRepository
	SlaRuleRepo     repository.SlaRuleRepository
	RuleCache       *cache.RuleCache
	Dispatcher      events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	UnitID        string
	CategoryID    string
	PatientTypeID *string
	Title         string
	Description   string
	Priority      domain.TicketPriority
}

// TicketUserFilter describes reporter-facing listing filters.
type TicketUserFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketStaffFilter describes staff listing filters.
type TicketStaffFilter struct {
	UnitID      *string
	CategoryID  *string
	AssigneeID  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:      deps.TicketRepo,
		units:        deps.UnitRepo,
		categories:   deps.CategoryRepo,
		patientTypes: deps.PatientTypeRepo,
		slaRules:     deps.SlaRuleRepo,
		ruleCache:    deps.RuleCache,
		dispatcher:   deps.Dispatcher,
		now:          time.Now,
	}
}

// CreateTicket creates a ticket for a reporter and stamps the SLA deadline
// from the matching rule. A missing rule leaves the deadline unset; an
// ambiguous rule table rejects the request so administrators fix it.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input TicketCreateInput) (*domain.Ticket, error) {
	unit, err := s.units.GetByID(ctx, input.UnitID)
	if err != nil {
		return nil, err
	}
	if !unit.IsActive {
		return nil, apperrors.NewValidationError("unit inactive", nil)
	}
	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, apperrors.NewValidationError("service category inactive", nil)
	}
	if input.PatientTypeID != nil {
		pt, err := s.patientTypes.GetByID(ctx, *input.PatientTypeID)
		if err != nil {
			return nil, err
		}
		if !pt.IsActive {
			return nil, apperrors.NewValidationError("patient type inactive", nil)
		}
	}

	createdAt := s.now()
	number, err := s.nextTicketNumber(ctx, createdAt)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		TicketNumber:  number,
		ReporterID:    userID,
		UnitID:        input.UnitID,
		CategoryID:    input.CategoryID,
		PatientTypeID: input.PatientTypeID,
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Status:        domain.TicketStatusOpen,
		Priority:      input.Priority,
		CreatedAt:     createdAt,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	deadline, err := s.stampDeadline(ctx, createdAt, unit, ticket)
	if err != nil {
		return nil, err
	}
	ticket.SlaDeadline = deadline

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    userActor(userID),
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			UnitID:       ticket.UnitID,
			CategoryID:   ticket.CategoryID,
			Priority:     ticket.Priority,
			Title:        ticket.Title,
			SlaDeadline:  ticket.SlaDeadline,
		},
	})
	return ticket, nil
}

// stampDeadline resolves the SLA rule for the ticket's key and computes the
// resolution deadline. ErrMissingConfiguration degrades to a nil deadline;
// ambiguous configuration is surfaced to the caller.
func (s *TicketService) stampDeadline(ctx context.Context, createdAt time.Time, unit *domain.Unit, ticket *domain.Ticket) (*time.Time, error) {
	rules, err := s.loadSlaRules(ctx)
	if err != nil {
		return nil, err
	}
	key := sla.RuleKey{
		UnitTypeID:        &unit.UnitTypeID,
		ServiceCategoryID: &ticket.CategoryID,
		PatientTypeID:     ticket.PatientTypeID,
	}
	rule, err := sla.ResolveRule(rules, key)
	if err != nil {
		if errors.Is(err, sla.ErrMissingConfiguration) {
			return nil, nil
		}
		return nil, err
	}
	deadline, err := sla.ComputeDeadline(createdAt, *rule)
	if err != nil {
		return nil, err
	}
	return &deadline, nil
}

func (s *TicketService) loadSlaRules(ctx context.Context) ([]domain.SlaRule, error) {
	if s.ruleCache != nil {
		return s.ruleCache.SlaRules(ctx, s.slaRules.ListActive)
	}
	return s.slaRules.ListActive(ctx)
}

// ListUserTickets returns paginated tickets for a reporter.
func (s *TicketService) ListUserTickets(ctx context.Context, userID string, filter TicketUserFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		ReporterID:  &userID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// GetTicketForUser fetches a ticket ensuring ownership.
func (s *TicketService) GetTicketForUser(ctx context.Context, userID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.ReporterID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// ListStaffTickets returns tickets accessible to staff, scoped to the staff
// member's unit unless they hold a hospital-wide role.
func (s *TicketService) ListStaffTickets(ctx context.Context, staff *domain.StaffMember, filter TicketStaffFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		UnitID:      filter.UnitID,
		CategoryID:  filter.CategoryID,
		AssigneeID:  filter.AssigneeID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	s.applyStaffScope(&repoFilter, staff)
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// GetTicketForStaff fetches a ticket ensuring staff access.
func (s *TicketService) GetTicketForStaff(ctx context.Context, staff *domain.StaffMember, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.staffCanAccessTicket(staff, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// UpdateStatus transitions a ticket by staff action. resolved_at is written
// the first time the ticket reaches RESOLVED and kept on reopen.
func (s *TicketService) UpdateStatus(ctx context.Context, staff *domain.StaffMember, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewForbidden("staff required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.staffCanAccessTicket(staff, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}

	oldStatus := ticket.Status
	now := s.now()
	switch newStatus {
	case domain.TicketStatusResolved:
		if ticket.ResolvedAt == nil {
			ticket.ResolvedAt = &now
		}
	case domain.TicketStatusClosed:
		ticket.ClosedAt = &now
	}
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    staffActor(staff.ID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	if newStatus == domain.TicketStatusResolved && ticket.ResolvedAt != nil {
		state, classifyErr := sla.Classify(sla.SnapshotFromTicket(ticket), now)
		breached := classifyErr == nil && state.IsBreach()
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketResolved,
			TicketID: ticket.ID,
			Actor:    staffActor(staff.ID),
			Payload: events.TicketResolvedPayload{
				ResolvedAt: *ticket.ResolvedAt,
				Breached:   breached,
			},
		})
	}
	return ticket, nil
}

// CloseTicketAsUser lets the reporter close their resolved ticket.
func (s *TicketService) CloseTicketAsUser(ctx context.Context, userID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.ReporterID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if ticket.Status != domain.TicketStatusResolved {
		return nil, apperrors.NewConflict("ticket cannot be closed in current status", nil)
	}
	now := s.now()
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    userActor(userID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Comment:   "reporter_closed",
		},
	})
	return ticket, nil
}

// AttachSentiment records an externally computed sentiment score on a ticket.
// Scores use the 1..10 survey scale that escalation thresholds compare against.
func (s *TicketService) AttachSentiment(ctx context.Context, ticketID string, score float64) (*domain.Ticket, error) {
	if score < sla.SentimentMin || score > sla.SentimentMax {
		return nil, apperrors.NewValidationError("sentiment score out of range", map[string]any{"score": score})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.SentimentScore = &score
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// BreachState classifies a ticket against its deadline at the current time.
func (s *TicketService) BreachState(ctx context.Context, ticketID string) (sla.BreachState, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return "", err
	}
	return sla.Classify(sla.SnapshotFromTicket(ticket), s.now())
}

func (s *TicketService) applyStaffScope(filter *repository.TicketFilter, staff *domain.StaffMember) {
	if staff == nil {
		return
	}
	switch staff.Role {
	case domain.StaffRoleAdmin, domain.StaffRoleDirector:
		return
	}
	if staff.UnitID != nil {
		filter.UnitID = staff.UnitID
	}
}

func (s *TicketService) staffCanAccessTicket(staff *domain.StaffMember, ticket *domain.Ticket) bool {
	if staff == nil {
		return false
	}
	switch staff.Role {
	case domain.StaffRoleAdmin, domain.StaffRoleDirector:
		return true
	}
	return staff.UnitID != nil && *staff.UnitID == ticket.UnitID
}

// nextTicketNumber builds TKT-YYYYMMDD-NNNN with a per-day sequence.
func (s *TicketService) nextTicketNumber(ctx context.Context, createdAt time.Time) (string, error) {
	count, err := s.tickets.CountCreatedOn(ctx, createdAt)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TKT-%s-%04d", createdAt.Format("20060102"), count+1), nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func userActor(userID string) events.Actor {
	return events.Actor{
		Type:   domain.SubjectTypeUser,
		UserID: &userID,
	}
}

func staffActor(staffID string) events.Actor {
	return events.Actor{
		Type:    domain.SubjectTypeStaff,
		StaffID: &staffID,
	}
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusEscalated, domain.TicketStatusResolved},
	domain.TicketStatusInProgress: {domain.TicketStatusEscalated, domain.TicketStatusResolved},
	domain.TicketStatusEscalated:  {domain.TicketStatusInProgress, domain.TicketStatusResolved},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed, domain.TicketStatusInProgress},
	domain.TicketStatusClosed:     {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
