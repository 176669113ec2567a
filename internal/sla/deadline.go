package sla

import (
	"fmt"
	"time"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// RuleKey is a ticket's lookup key into the SLA rule table.
type RuleKey struct {
	UnitTypeID        *string
	ServiceCategoryID *string
	PatientTypeID     *string
}

// ComputeDeadline returns createdAt plus the rule's resolution window.
//
// BusinessHoursOnly rules currently receive the same plain offset; skipping
// non-business intervals needs a business calendar that is not modeled yet.
func ComputeDeadline(createdAt time.Time, rule domain.SlaRule) (time.Time, error) {
	if createdAt.IsZero() {
		return time.Time{}, fmt.Errorf("%w: zero created_at", ErrMalformedInput)
	}
	if rule.ResolutionTimeHours <= 0 {
		return time.Time{}, fmt.Errorf("%w: non-positive resolution_time_hours %v", ErrMalformedInput, rule.ResolutionTimeHours)
	}
	return createdAt.Add(time.Duration(rule.ResolutionTimeHours * float64(time.Hour))), nil
}

// ResolveRule selects the active rule applying to key. The most specific
// match wins (all three keys set, then two, then one, then the catch-all).
// More than one active rule at the winning specificity is a configuration
// conflict and is surfaced as ErrAmbiguousConfiguration; no match at all is
// ErrMissingConfiguration.
func ResolveRule(rules []domain.SlaRule, key RuleKey) (*domain.SlaRule, error) {
	var best *domain.SlaRule
	bestSpecificity := -1
	ambiguous := false

	for i := range rules {
		rule := &rules[i]
		if !rule.IsActive || !ruleMatches(rule, key) {
			continue
		}
		spec := rule.Specificity()
		switch {
		case spec > bestSpecificity:
			best = rule
			bestSpecificity = spec
			ambiguous = false
		case spec == bestSpecificity:
			ambiguous = true
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: no active sla rule for key", ErrMissingConfiguration)
	}
	if ambiguous {
		return nil, fmt.Errorf("%w: multiple active sla rules with specificity %d", ErrAmbiguousConfiguration, bestSpecificity)
	}
	return best, nil
}

func ruleMatches(rule *domain.SlaRule, key RuleKey) bool {
	return keyMatches(rule.UnitTypeID, key.UnitTypeID) &&
		keyMatches(rule.ServiceCategoryID, key.ServiceCategoryID) &&
		keyMatches(rule.PatientTypeID, key.PatientTypeID)
}

// keyMatches treats a nil rule column as a wildcard; a set column requires
// the ticket to carry the same value.
func keyMatches(ruleVal, ticketVal *string) bool {
	if ruleVal == nil {
		return true
	}
	if ticketVal == nil {
		return false
	}
	return *ruleVal == *ticketVal
}
