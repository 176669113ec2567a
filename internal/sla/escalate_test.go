package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }

func criticalOpenTicket() TicketSnapshot {
	return TicketSnapshot{
		ID:        "t-esc",
		Priority:  domain.TicketPriorityCritical,
		Status:    domain.TicketStatusOpen,
		CreatedAt: baseTime,
	}
}

func TestEvaluate_AllConditionsHold(t *testing.T) {
	rule := domain.EscalationRule{
		ID: "r-1",
		Conditions: domain.TriggerConditions{
			Priorities:           []domain.TicketPriority{domain.TicketPriorityCritical},
			Statuses:             []domain.TicketStatus{domain.TicketStatusOpen},
			TimeThresholdSeconds: int64Ptr(3600),
		},
		Actions: []domain.EscalationAction{
			{Type: domain.ActionNotifyManager},
			{Type: domain.ActionEscalateToRole, Target: strPtr("DIRECTOR")},
		},
		IsActive: true,
	}

	result := Evaluate(criticalOpenTicket(), rule, EvaluateInput{Now: baseTime.Add(2 * time.Hour)})
	require.True(t, result.Matches)
	require.Len(t, result.MatchedActions, 2)
	assert.Equal(t, domain.ActionNotifyManager, result.MatchedActions[0].Type)
	assert.Equal(t, domain.ActionEscalateToRole, result.MatchedActions[1].Type)
}

// Conjunctive matching: one failing condition vetoes the rule.
func TestEvaluate_StatusMismatchVetoes(t *testing.T) {
	rule := domain.EscalationRule{
		Conditions: domain.TriggerConditions{
			Priorities: []domain.TicketPriority{domain.TicketPriorityCritical},
			Statuses:   []domain.TicketStatus{domain.TicketStatusOpen},
		},
		IsActive: true,
	}

	snap := criticalOpenTicket()
	snap.Status = domain.TicketStatusInProgress

	result := Evaluate(snap, rule, EvaluateInput{Now: baseTime.Add(time.Hour)})
	assert.False(t, result.Matches)
	assert.Empty(t, result.MatchedActions)
}

func TestEvaluate_EmptyConditionsMatchEverything(t *testing.T) {
	rule := domain.EscalationRule{
		Actions:  []domain.EscalationAction{{Type: domain.ActionFlagReview}},
		IsActive: true,
	}

	result := Evaluate(criticalOpenTicket(), rule, EvaluateInput{Now: baseTime})
	assert.True(t, result.Matches)
}

func TestEvaluate_TimeThreshold(t *testing.T) {
	rule := domain.EscalationRule{
		Conditions: domain.TriggerConditions{TimeThresholdSeconds: int64Ptr(7200)},
		IsActive:   true,
	}
	snap := criticalOpenTicket()

	tooYoung := Evaluate(snap, rule, EvaluateInput{Now: baseTime.Add(time.Hour)})
	assert.False(t, tooYoung.Matches)

	exactAge := Evaluate(snap, rule, EvaluateInput{Now: baseTime.Add(2 * time.Hour)})
	assert.True(t, exactAge.Matches)
}

func TestEvaluate_SentimentFailsClosed(t *testing.T) {
	rule := domain.EscalationRule{
		Conditions: domain.TriggerConditions{SentimentThreshold: floatPtr(5)},
		IsActive:   true,
	}
	snap := criticalOpenTicket()

	// No score supplied: the condition is unsatisfied, never skipped.
	noScore := Evaluate(snap, rule, EvaluateInput{Now: baseTime})
	assert.False(t, noScore.Matches)

	angry := Evaluate(snap, rule, EvaluateInput{Now: baseTime, Sentiment: floatPtr(3.2)})
	assert.True(t, angry.Matches)

	content := Evaluate(snap, rule, EvaluateInput{Now: baseTime, Sentiment: floatPtr(8.5)})
	assert.False(t, content.Matches)
}

func TestEvaluate_Idempotent(t *testing.T) {
	rule := domain.EscalationRule{
		Conditions: domain.TriggerConditions{
			Priorities: []domain.TicketPriority{domain.TicketPriorityCritical},
		},
		Actions:  []domain.EscalationAction{{Type: domain.ActionBumpPriority}},
		IsActive: true,
	}
	in := EvaluateInput{Now: baseTime.Add(time.Hour)}
	snap := criticalOpenTicket()

	first := Evaluate(snap, rule, in)
	second := Evaluate(snap, rule, in)
	assert.Equal(t, first, second)
}

func TestEvaluateAll_CollectsEveryMatch(t *testing.T) {
	rules := []domain.EscalationRule{
		{
			ID:         "critical-any",
			Conditions: domain.TriggerConditions{Priorities: []domain.TicketPriority{domain.TicketPriorityCritical}},
			Actions:    []domain.EscalationAction{{Type: domain.ActionNotifyManager}},
			IsActive:   true,
		},
		{
			ID:       "inactive",
			Actions:  []domain.EscalationAction{{Type: domain.ActionFlagReview}},
			IsActive: false,
		},
		{
			ID:         "open-only",
			Conditions: domain.TriggerConditions{Statuses: []domain.TicketStatus{domain.TicketStatusOpen}},
			Actions:    []domain.EscalationAction{{Type: domain.ActionBumpPriority}},
			IsActive:   true,
		},
	}

	matches := EvaluateAll(criticalOpenTicket(), rules, EvaluateInput{Now: baseTime.Add(time.Hour)})
	require.Len(t, matches, 2)
	// Caller-supplied order is preserved; no rule short-circuits another.
	assert.Equal(t, "critical-any", matches[0].RuleID)
	assert.Equal(t, "open-only", matches[1].RuleID)
}
