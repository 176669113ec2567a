package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-sla-service/internal/cache"
	"github.com/spec-kit/complaint-sla-service/internal/domain"
	"github.com/spec-kit/complaint-sla-service/internal/events"
	"github.com/spec-kit/complaint-sla-service/internal/repository"
	"github.com/spec-kit/complaint-sla-service/internal/sla"
	apperrors "github.com/spec-kit/complaint-sla-service/pkg/errorutil"
)

// EscalationService runs escalation rule evaluation over tickets and applies
// the matched actions. Evaluation itself is pure; this layer does the I/O and
// side effects around it.
type EscalationService struct {
	tickets         repository.TicketRepository
	escalationRules repository.EscalationRuleRepository
	escalations     repository.EscalationRepository
	ruleCache       *cache.RuleCache
	dispatcher      events.Dispatcher
	logger          *zap.Logger
	scanLimit       int
	now             func() time.Time
}

// EscalationDependencies bundles collaborators for the escalation service.
type EscalationDependencies struct {
	TicketRepo         repository.TicketRepository
	EscalationRuleRepo repository.EscalationRuleRepository
	EscalationRepo     repository.EscalationRepository
	RuleCache          *cache.RuleCache
	Dispatcher         events.Dispatcher
	Logger             *zap.Logger
	// ScanLimit bounds how many tickets one sweep loads; zero falls back
	// to the default.
	ScanLimit int
}

// SweepResult reports what one evaluation pass did.
type SweepResult struct {
	TicketsEvaluated int `json:"tickets_evaluated"`
	RuleMatches      int `json:"rule_matches"`
	Escalated        int `json:"escalated"`
	PrioritiesBumped int `json:"priorities_bumped"`
	BreachesDetected int `json:"breaches_detected"`
}

// NewEscalationService constructs the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	scanLimit := deps.ScanLimit
	if scanLimit <= 0 {
		scanLimit = defaultScanLimit
	}
	return &EscalationService{
		tickets:         deps.TicketRepo,
		escalationRules: deps.EscalationRuleRepo,
		escalations:     deps.EscalationRepo,
		ruleCache:       deps.RuleCache,
		dispatcher:      deps.Dispatcher,
		logger:          logger,
		scanLimit:       scanLimit,
		now:             time.Now,
	}
}

// EvaluateTicket tests one ticket against all active rules without applying
// actions; used by the dry-run endpoint.
func (s *EscalationService) EvaluateTicket(ctx context.Context, ticketID string) ([]sla.RuleMatch, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	rules, err := s.loadRules(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := sla.SnapshotFromTicket(ticket)
	in := sla.EvaluateInput{Now: s.now(), Sentiment: ticket.SentimentScore}
	return sla.EvaluateAll(snapshot, rules, in), nil
}

// RunSweep evaluates every non-terminal ticket against the active rules and
// applies matched actions. The whole pass shares one now.
func (s *EscalationService) RunSweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	rules, err := s.loadRules(ctx)
	if err != nil {
		return result, err
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{
			domain.TicketStatusOpen,
			domain.TicketStatusInProgress,
			domain.TicketStatusEscalated,
		},
		Limit: s.scanLimit,
	})
	if err != nil {
		return result, err
	}

	now := s.now()
	for i := range tickets {
		ticket := &tickets[i]
		result.TicketsEvaluated++

		snapshot := sla.SnapshotFromTicket(ticket)
		if state, err := sla.Classify(snapshot, now); err == nil && state == sla.StateBreachedOpen {
			result.BreachesDetected++
			s.publishBreach(ctx, ticket, now)
		}

		in := sla.EvaluateInput{Now: now, Sentiment: ticket.SentimentScore}
		matches := sla.EvaluateAll(snapshot, rules, in)
		result.RuleMatches += len(matches)

		for _, match := range matches {
			if err := s.applyMatch(ctx, ticket, match, now, &result); err != nil {
				s.logger.Warn("escalation action failed",
					zap.String("ticket_id", ticket.ID),
					zap.String("rule_id", match.RuleID),
					zap.Error(err))
			}
		}
	}

	s.logger.Info("escalation sweep finished",
		zap.Int("tickets_evaluated", result.TicketsEvaluated),
		zap.Int("rule_matches", result.RuleMatches),
		zap.Int("escalated", result.Escalated),
		zap.Int("breaches_detected", result.BreachesDetected))
	return result, nil
}

func (s *EscalationService) applyMatch(ctx context.Context, ticket *domain.Ticket, match sla.RuleMatch, now time.Time, result *SweepResult) error {
	for _, action := range match.Actions {
		switch action.Type {
		case domain.ActionEscalateToRole:
			if err := s.escalateTicket(ctx, ticket, match, action, now); err != nil {
				return err
			}
			result.Escalated++
		case domain.ActionBumpPriority:
			if bumped := bumpPriority(ticket.Priority); bumped != ticket.Priority {
				ticket.Priority = bumped
				if err := s.tickets.Update(ctx, ticket); err != nil {
					return err
				}
				result.PrioritiesBumped++
			}
		case domain.ActionNotifyManager, domain.ActionNotifyAssignee, domain.ActionFlagReview:
			// routed through the escalated event; the notification
			// subscriber decides delivery
		}
	}
	return nil
}

// escalateTicket writes the escalation record and moves the ticket to
// ESCALATED. A ticket already escalated by this rule is not escalated twice.
func (s *EscalationService) escalateTicket(ctx context.Context, ticket *domain.Ticket, match sla.RuleMatch, action domain.EscalationAction, now time.Time) error {
	existing, err := s.escalations.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return err
	}
	for i := range existing {
		if existing[i].RuleID != nil && *existing[i].RuleID == match.RuleID && existing[i].ResolvedAt == nil {
			return nil
		}
	}

	var toRole *domain.StaffRole
	if action.Target != nil {
		role := domain.StaffRole(*action.Target)
		toRole = &role
	}
	reason := fmt.Sprintf("rule %q matched", match.RuleName)
	if action.Message != nil {
		reason = *action.Message
	}

	ruleID := match.RuleID
	escalation := &domain.Escalation{
		TicketID:    ticket.ID,
		RuleID:      &ruleID,
		FromUnitID:  &ticket.UnitID,
		ToRole:      toRole,
		Reason:      reason,
		Status:      domain.EscalationStatusPending,
		EscalatedAt: now,
	}
	if err := s.escalations.Create(ctx, escalation); err != nil {
		return err
	}

	if ticket.Status != domain.TicketStatusEscalated && !ticket.Status.IsTerminal() {
		ticket.Status = domain.TicketStatusEscalated
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketEscalated,
		TicketID: ticket.ID,
		Actor:    events.SystemActor(),
		Payload: events.TicketEscalatedPayload{
			EscalationID: escalation.ID,
			RuleID:       match.RuleID,
			RuleName:     match.RuleName,
			ToRole:       toRole,
			Reason:       reason,
		},
	})
	return nil
}

// ResolveEscalation closes an escalation record.
func (s *EscalationService) ResolveEscalation(ctx context.Context, staff *domain.StaffMember, escalationID string) error {
	if staff == nil {
		return apperrors.NewForbidden("staff required")
	}
	return s.escalations.Close(ctx, escalationID, s.now())
}

// ListTicketEscalations returns the escalation history of a ticket.
func (s *EscalationService) ListTicketEscalations(ctx context.Context, ticketID string) ([]domain.Escalation, error) {
	return s.escalations.ListByTicket(ctx, ticketID)
}

func (s *EscalationService) loadRules(ctx context.Context) ([]domain.EscalationRule, error) {
	if s.ruleCache != nil {
		return s.ruleCache.EscalationRules(ctx, s.escalationRules.ListActive)
	}
	return s.escalationRules.ListActive(ctx)
}

func (s *EscalationService) publishBreach(ctx context.Context, ticket *domain.Ticket, now time.Time) {
	if ticket.SlaDeadline == nil {
		return
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventSlaBreachDetected,
		TicketID: ticket.ID,
		Actor:    events.SystemActor(),
		Payload: events.SlaBreachDetectedPayload{
			TicketNumber: ticket.TicketNumber,
			Deadline:     *ticket.SlaDeadline,
			DetectedAt:   now,
		},
	})
}

func (s *EscalationService) publishEvent(ctx context.Context, event events.Event) {
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

func bumpPriority(p domain.TicketPriority) domain.TicketPriority {
	switch p {
	case domain.TicketPriorityLow:
		return domain.TicketPriorityMedium
	case domain.TicketPriorityMedium:
		return domain.TicketPriorityHigh
	case domain.TicketPriorityHigh:
		return domain.TicketPriorityCritical
	default:
		return p
	}
}
