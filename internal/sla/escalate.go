package sla

import (
	"time"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// Sentiment scores use the survey scale: 1 is most negative, 10 most
// positive. Thresholds match on score <= threshold.
const (
	SentimentMin = 1.0
	SentimentMax = 10.0
)

// EvaluateInput carries the per-pass context for rule evaluation. Sentiment
// comes from an external scoring service and may be absent.
type EvaluateInput struct {
	Now       time.Time
	Sentiment *float64
}

// EligibilityResult reports whether a ticket qualifies for a rule's actions.
// Actions are returned verbatim and unexecuted.
type EligibilityResult struct {
	Matches        bool
	MatchedActions []domain.EscalationAction
}

// RuleMatch pairs a matched rule with its actions for multi-rule passes.
type RuleMatch struct {
	RuleID   string
	RuleName string
	Actions  []domain.EscalationAction
}

// Evaluate tests a ticket against one rule. All present conditions must hold;
// an absent condition is no constraint. A sentiment threshold with no
// supplied score fails closed.
func Evaluate(t TicketSnapshot, rule domain.EscalationRule, in EvaluateInput) EligibilityResult {
	cond := rule.Conditions

	if len(cond.Priorities) > 0 && !containsPriority(cond.Priorities, t.Priority) {
		return EligibilityResult{}
	}
	if len(cond.Statuses) > 0 && !containsStatus(cond.Statuses, t.Status) {
		return EligibilityResult{}
	}
	if cond.TimeThresholdSeconds != nil {
		age := in.Now.Sub(t.CreatedAt)
		if age < time.Duration(*cond.TimeThresholdSeconds)*time.Second {
			return EligibilityResult{}
		}
	}
	if cond.SentimentThreshold != nil {
		if in.Sentiment == nil || *in.Sentiment > *cond.SentimentThreshold {
			return EligibilityResult{}
		}
	}

	return EligibilityResult{Matches: true, MatchedActions: rule.Actions}
}

// EvaluateAll walks rules in caller-supplied order and returns every active
// rule that matches. Rules are independent; no match short-circuits another.
func EvaluateAll(t TicketSnapshot, rules []domain.EscalationRule, in EvaluateInput) []RuleMatch {
	var matches []RuleMatch
	for i := range rules {
		rule := &rules[i]
		if !rule.IsActive {
			continue
		}
		result := Evaluate(t, *rule, in)
		if result.Matches {
			matches = append(matches, RuleMatch{
				RuleID:   rule.ID,
				RuleName: rule.Name,
				Actions:  result.MatchedActions,
			})
		}
	}
	return matches
}

func containsPriority(set []domain.TicketPriority, p domain.TicketPriority) bool {
	for _, candidate := range set {
		if candidate == p {
			return true
		}
	}
	return false
}

func containsStatus(set []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}
