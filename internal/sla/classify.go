package sla

import (
	"fmt"
	"time"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// BreachState is the outcome of classifying a ticket against its deadline.
type BreachState string

const (
	StateNoDeadline       BreachState = "NO_DEADLINE"
	StateOnTrack          BreachState = "ON_TRACK"
	StateBreachedOpen     BreachState = "BREACHED_OPEN"
	StateBreachedResolved BreachState = "BREACHED_RESOLVED"
	StateResolvedOnTime   BreachState = "RESOLVED_ON_TIME"
)

// IsBreach reports whether the state counts toward the breach rate.
func (s BreachState) IsBreach() bool {
	return s == StateBreachedOpen || s == StateBreachedResolved
}

// Classify evaluates the decision table top-down, first match wins:
//
//	no deadline                          -> NO_DEADLINE
//	resolved, resolved_at <= deadline    -> RESOLVED_ON_TIME
//	resolved, resolved_at >  deadline    -> BREACHED_RESOLVED
//	unresolved, now > deadline           -> BREACHED_OPEN
//	otherwise                            -> ON_TRACK
//
// The same now must be used for every ticket in a reporting pass.
func Classify(t TicketSnapshot, now time.Time) (BreachState, error) {
	if now.IsZero() {
		return "", fmt.Errorf("%w: zero now", ErrMalformedInput)
	}
	if t.SlaDeadline == nil {
		return StateNoDeadline, nil
	}
	if t.SlaDeadline.IsZero() {
		return "", fmt.Errorf("%w: zero sla_deadline on ticket %s", ErrMalformedInput, t.ID)
	}
	if t.Status == domain.TicketStatusResolved {
		if t.ResolvedAt == nil || t.ResolvedAt.IsZero() {
			return "", fmt.Errorf("%w: resolved ticket %s without resolved_at", ErrMalformedInput, t.ID)
		}
		if t.ResolvedAt.After(*t.SlaDeadline) {
			return StateBreachedResolved, nil
		}
		return StateResolvedOnTime, nil
	}
	if now.After(*t.SlaDeadline) {
		return StateBreachedOpen, nil
	}
	return StateOnTrack, nil
}
