package service

import (
	"context"

	"github.com/spec-kit/complaint-sla-service/internal/cache"
	"github.com/spec-kit/complaint-sla-service/internal/domain"
	"github.com/spec-kit/complaint-sla-service/internal/repository"
	"github.com/spec-kit/complaint-sla-service/internal/sla"
	apperrors "github.com/spec-kit/complaint-sla-service/pkg/errorutil"
)

// AdminService manages master data and the SLA/escalation rule tables.
// Rule edits invalidate the shared rule cache so evaluation picks them up.
type AdminService struct {
	units           repository.UnitRepository
	categories      repository.ServiceCategoryRepository
	patientTypes    repository.PatientTypeRepository
	slaRules        repository.SlaRuleRepository
	escalationRules repository.EscalationRuleRepository
	staff           repository.StaffRepository
	ruleCache       *cache.RuleCache
}

// AdminDependencies encapsulates repositories for admin management.
type AdminDependencies struct {
	UnitRepo           repository.UnitRepository
	CategoryRepo       repository.ServiceCategoryRepository
	PatientTypeRepo    repository.PatientTypeRepository
	SlaRuleRepo        repository.SlaRuleRepository
	EscalationRuleRepo repository.EscalationRuleRepository
	StaffRepo          repository.StaffRepository
	RuleCache          *cache.RuleCache
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	return &AdminService{
		units:           deps.UnitRepo,
		categories:      deps.CategoryRepo,
		patientTypes:    deps.PatientTypeRepo,
		slaRules:        deps.SlaRuleRepo,
		escalationRules: deps.EscalationRuleRepo,
		staff:           deps.StaffRepo,
		ruleCache:       deps.RuleCache,
	}
}

func requireAdmin(actor *domain.StaffMember) error {
	if actor == nil || actor.Role != domain.StaffRoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

func validateEscalationRule(rule *domain.EscalationRule) error {
	if len(rule.Actions) == 0 {
		return apperrors.NewValidationError("at least one action is required", nil)
	}
	if t := rule.Conditions.SentimentThreshold; t != nil && (*t < sla.SentimentMin || *t > sla.SentimentMax) {
		return apperrors.NewValidationError("sentiment threshold out of range", map[string]any{
			"sentiment_threshold": *t,
			"min":                 sla.SentimentMin,
			"max":                 sla.SentimentMax,
		})
	}
	return nil
}

// CreateUnit registers a hospital unit.
func (s *AdminService) CreateUnit(ctx context.Context, actor *domain.StaffMember, unit *domain.Unit) (*domain.Unit, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	unit.IsActive = true
	if err := s.units.Create(ctx, unit); err != nil {
		return nil, apperrors.MapError(err)
	}
	return unit, nil
}

// UpdateUnit modifies unit metadata.
func (s *AdminService) UpdateUnit(ctx context.Context, actor *domain.StaffMember, unit *domain.Unit) (*domain.Unit, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.units.Update(ctx, unit); err != nil {
		return nil, apperrors.MapError(err)
	}
	return unit, nil
}

// ListUnits returns active units; open to any authenticated caller so the
// intake form can render.
func (s *AdminService) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	return s.units.ListActive(ctx)
}

// CreateServiceCategory registers a complaint category.
func (s *AdminService) CreateServiceCategory(ctx context.Context, actor *domain.StaffMember, category *domain.ServiceCategory) (*domain.ServiceCategory, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	category.IsActive = true
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// ListServiceCategories returns active categories.
func (s *AdminService) ListServiceCategories(ctx context.Context) ([]domain.ServiceCategory, error) {
	return s.categories.ListActive(ctx)
}

// CreatePatientType registers a patient type.
func (s *AdminService) CreatePatientType(ctx context.Context, actor *domain.StaffMember, pt *domain.PatientType) (*domain.PatientType, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	pt.IsActive = true
	if err := s.patientTypes.Create(ctx, pt); err != nil {
		return nil, apperrors.MapError(err)
	}
	return pt, nil
}

// ListPatientTypes returns active patient types.
func (s *AdminService) ListPatientTypes(ctx context.Context) ([]domain.PatientType, error) {
	return s.patientTypes.ListActive(ctx)
}

// CreateSlaRule adds an SLA rule and drops the rule cache.
func (s *AdminService) CreateSlaRule(ctx context.Context, actor *domain.StaffMember, rule *domain.SlaRule) (*domain.SlaRule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if rule.ResolutionTimeHours <= 0 {
		return nil, apperrors.NewValidationError("resolution_time_hours must be positive", nil)
	}
	if err := s.slaRules.Create(ctx, rule); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.ruleCache.Invalidate(ctx)
	return rule, nil
}

// UpdateSlaRule modifies an SLA rule and drops the rule cache.
func (s *AdminService) UpdateSlaRule(ctx context.Context, actor *domain.StaffMember, rule *domain.SlaRule) (*domain.SlaRule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if rule.ResolutionTimeHours <= 0 {
		return nil, apperrors.NewValidationError("resolution_time_hours must be positive", nil)
	}
	if err := s.slaRules.Update(ctx, rule); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.ruleCache.Invalidate(ctx)
	return rule, nil
}

// ListSlaRules returns all SLA rules for administration.
func (s *AdminService) ListSlaRules(ctx context.Context, actor *domain.StaffMember) ([]domain.SlaRule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.slaRules.List(ctx)
}

// CreateEscalationRule adds an escalation rule and drops the rule cache.
func (s *AdminService) CreateEscalationRule(ctx context.Context, actor *domain.StaffMember, rule *domain.EscalationRule) (*domain.EscalationRule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateEscalationRule(rule); err != nil {
		return nil, err
	}
	if err := s.escalationRules.Create(ctx, rule); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.ruleCache.Invalidate(ctx)
	return rule, nil
}

// UpdateEscalationRule modifies an escalation rule and drops the rule cache.
func (s *AdminService) UpdateEscalationRule(ctx context.Context, actor *domain.StaffMember, rule *domain.EscalationRule) (*domain.EscalationRule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateEscalationRule(rule); err != nil {
		return nil, err
	}
	if err := s.escalationRules.Update(ctx, rule); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.ruleCache.Invalidate(ctx)
	return rule, nil
}

// ListEscalationRules returns all escalation rules for administration.
func (s *AdminService) ListEscalationRules(ctx context.Context, actor *domain.StaffMember) ([]domain.EscalationRule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.escalationRules.List(ctx)
}

// ListStaffMembers lists staff with filters.
func (s *AdminService) ListStaffMembers(ctx context.Context, actor *domain.StaffMember, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.staff.List(ctx, filter)
}
