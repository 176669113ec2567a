package domain

import "time"

// EscalationActionType enumerates the actions a matched rule may request.
// Actions are returned to callers verbatim; executing them (notifications,
// priority bumps) is the notification/service layer's job.
type EscalationActionType string

const (
	ActionNotifyManager  EscalationActionType = "notify_manager"
	ActionNotifyAssignee EscalationActionType = "notify_assignee"
	ActionBumpPriority   EscalationActionType = "bump_priority"
	ActionFlagReview     EscalationActionType = "flag_review"
	ActionEscalateToRole EscalationActionType = "escalate_to_role"
)

// EscalationAction is a single requested action with optional routing target.
type EscalationAction struct {
	Type    EscalationActionType `json:"type"`
	Target  *string              `json:"target,omitempty"`
	Message *string              `json:"message,omitempty"`
}

// TriggerConditions are evaluated conjunctively; an empty field means
// "no constraint", never "never match".
type TriggerConditions struct {
	Priorities           []TicketPriority `json:"priorities,omitempty"`
	Statuses             []TicketStatus   `json:"statuses,omitempty"`
	TimeThresholdSeconds *int64           `json:"time_threshold_seconds,omitempty"`
	SentimentThreshold   *float64         `json:"sentiment_threshold,omitempty"`
}

// EscalationRule is an administrator-authored trigger definition. Evaluation
// never mutates the rule.
type EscalationRule struct {
	ID         string
	Name       string
	Conditions TriggerConditions
	Actions    []EscalationAction
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
