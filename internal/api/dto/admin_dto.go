package dto

import (
	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// UnitRequest payload for creating/updating units.
type UnitRequest struct {
	Name        string `json:"name"`
	UnitTypeID  string `json:"unit_type_id"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// ServiceCategoryRequest payload.
type ServiceCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PatientTypeRequest payload.
type PatientTypeRequest struct {
	Name string `json:"name"`
}

// SlaRuleRequest payload. Nil key fields act as wildcards.
type SlaRuleRequest struct {
	Name                string   `json:"name"`
	UnitTypeID          *string  `json:"unit_type_id"`
	ServiceCategoryID   *string  `json:"service_category_id"`
	PatientTypeID       *string  `json:"patient_type_id"`
	ResponseTimeHours   float64  `json:"response_time_hours"`
	ResolutionTimeHours float64  `json:"resolution_time_hours"`
	EscalationTimeHours *float64 `json:"escalation_time_hours"`
	BusinessHoursOnly   bool     `json:"business_hours_only"`
	IsActive            *bool    `json:"is_active"`
}

// EscalationRuleRequest payload.
type EscalationRuleRequest struct {
	Name       string                    `json:"name"`
	Conditions domain.TriggerConditions  `json:"trigger_conditions"`
	Actions    []domain.EscalationAction `json:"actions"`
	IsActive   *bool                     `json:"is_active"`
}
