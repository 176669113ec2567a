package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

func newAdminFixture() (*AdminService, *domain.StaffMember) {
	svc := NewAdminService(AdminDependencies{
		EscalationRuleRepo: &fakeEscalationRuleRepo{},
	})
	admin := &domain.StaffMember{ID: "staff-admin", Role: domain.StaffRoleAdmin, Active: true}
	return svc, admin
}

func TestCreateEscalationRuleValidatesSentimentThreshold(t *testing.T) {
	svc, admin := newAdminFixture()

	rule := &domain.EscalationRule{
		Name: "angry reporters",
		Conditions: domain.TriggerConditions{
			SentimentThreshold: floatPtr(0.5),
		},
		Actions:  []domain.EscalationAction{{Type: domain.ActionFlagReview}},
		IsActive: true,
	}
	_, err := svc.CreateEscalationRule(context.Background(), admin, rule)
	require.Error(t, err)

	rule.Conditions.SentimentThreshold = floatPtr(11)
	_, err = svc.CreateEscalationRule(context.Background(), admin, rule)
	require.Error(t, err)

	rule.Conditions.SentimentThreshold = floatPtr(3)
	created, err := svc.CreateEscalationRule(context.Background(), admin, rule)
	require.NoError(t, err)
	assert.Equal(t, 3.0, *created.Conditions.SentimentThreshold)
}

func TestCreateEscalationRuleRequiresAction(t *testing.T) {
	svc, admin := newAdminFixture()

	_, err := svc.CreateEscalationRule(context.Background(), admin, &domain.EscalationRule{
		Name:     "no actions",
		IsActive: true,
	})
	require.Error(t, err)
}
