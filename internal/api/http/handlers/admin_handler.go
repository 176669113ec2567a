package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-sla-service/internal/api/dto"
	"github.com/spec-kit/complaint-sla-service/internal/domain"
	"github.com/spec-kit/complaint-sla-service/internal/repository"
	"github.com/spec-kit/complaint-sla-service/internal/service"
	apperrors "github.com/spec-kit/complaint-sla-service/pkg/errorutil"
)

// AdminHandler exposes master data and rule administration endpoints.
type AdminHandler struct {
	admin *service.AdminService
	auth  *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService, authService *service.AuthService) *AdminHandler {
	return &AdminHandler{admin: adminService, auth: authService}
}

// CreateUnit POST /admin/units.
func (h *AdminHandler) CreateUnit(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UnitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.UnitTypeID == "" {
		return apperrors.NewValidationError("name and unit_type_id required", nil)
	}
	unit := &domain.Unit{
		Name:        req.Name,
		UnitTypeID:  req.UnitTypeID,
		Description: req.Description,
	}
	created, err := h.admin.CreateUnit(c.Context(), staff, unit)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": created})
}

// ListUnits GET /units. Open to all authenticated callers for intake forms.
func (h *AdminHandler) ListUnits(c *fiber.Ctx) error {
	units, err := h.admin.ListUnits(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": units})
}

// CreateServiceCategory POST /admin/categories.
func (h *AdminHandler) CreateServiceCategory(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ServiceCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	category := &domain.ServiceCategory{Name: req.Name, Description: req.Description}
	created, err := h.admin.CreateServiceCategory(c.Context(), staff, category)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": created})
}

// ListServiceCategories GET /categories.
func (h *AdminHandler) ListServiceCategories(c *fiber.Ctx) error {
	categories, err := h.admin.ListServiceCategories(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categories})
}

// CreatePatientType POST /admin/patient-types.
func (h *AdminHandler) CreatePatientType(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.PatientTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	created, err := h.admin.CreatePatientType(c.Context(), staff, &domain.PatientType{Name: req.Name})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": created})
}

// ListPatientTypes GET /patient-types.
func (h *AdminHandler) ListPatientTypes(c *fiber.Ctx) error {
	types, err := h.admin.ListPatientTypes(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": types})
}

// CreateSlaRule POST /admin/sla-rules.
func (h *AdminHandler) CreateSlaRule(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.SlaRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule := slaRuleFromRequest(&req)
	created, err := h.admin.CreateSlaRule(c.Context(), staff, rule)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": created})
}

// UpdateSlaRule PUT /admin/sla-rules/:id.
func (h *AdminHandler) UpdateSlaRule(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.SlaRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule := slaRuleFromRequest(&req)
	rule.ID = c.Params("id")
	updated, err := h.admin.UpdateSlaRule(c.Context(), staff, rule)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updated})
}

// ListSlaRules GET /admin/sla-rules.
func (h *AdminHandler) ListSlaRules(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	rules, err := h.admin.ListSlaRules(c.Context(), staff)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rules})
}

// CreateEscalationRule POST /admin/escalation-rules.
func (h *AdminHandler) CreateEscalationRule(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.EscalationRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule := escalationRuleFromRequest(&req)
	created, err := h.admin.CreateEscalationRule(c.Context(), staff, rule)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": created})
}

// UpdateEscalationRule PUT /admin/escalation-rules/:id.
func (h *AdminHandler) UpdateEscalationRule(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.EscalationRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule := escalationRuleFromRequest(&req)
	rule.ID = c.Params("id")
	updated, err := h.admin.UpdateEscalationRule(c.Context(), staff, rule)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updated})
}

// ListEscalationRules GET /admin/escalation-rules.
func (h *AdminHandler) ListEscalationRules(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	rules, err := h.admin.ListEscalationRules(c.Context(), staff)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rules})
}

// CreateStaff POST /admin/staff.
func (h *AdminHandler) CreateStaff(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	if staff.Role != domain.StaffRoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return apperrors.NewValidationError("name, email, password, role required", nil)
	}
	created, err := h.auth.CreateStaff(c.Context(), req.Name, req.Email, req.Password, req.Role, req.UnitID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":      created.ID,
		"name":    created.Name,
		"email":   created.Email,
		"role":    created.Role,
		"unit_id": created.UnitID,
	}})
}

// ListStaff GET /admin/staff.
func (h *AdminHandler) ListStaff(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	filter := repository.StaffFilter{
		Limit:  parseInt(c.Query("page_size"), 100),
		Offset: (parseInt(c.Query("page"), 1) - 1) * parseInt(c.Query("page_size"), 100),
	}
	if unitID := c.Query("unit_id"); unitID != "" {
		filter.UnitID = &unitID
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := domain.StaffRole(roleStr)
		filter.Role = &role
	}
	members, err := h.admin.ListStaffMembers(c.Context(), staff, filter)
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(members))
	for i := range members {
		items = append(items, fiber.Map{
			"id":      members[i].ID,
			"name":    members[i].Name,
			"email":   members[i].Email,
			"role":    members[i].Role,
			"unit_id": members[i].UnitID,
			"active":  members[i].Active,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func slaRuleFromRequest(req *dto.SlaRuleRequest) *domain.SlaRule {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &domain.SlaRule{
		Name:                req.Name,
		UnitTypeID:          req.UnitTypeID,
		ServiceCategoryID:   req.ServiceCategoryID,
		PatientTypeID:       req.PatientTypeID,
		ResponseTimeHours:   req.ResponseTimeHours,
		ResolutionTimeHours: req.ResolutionTimeHours,
		EscalationTimeHours: req.EscalationTimeHours,
		BusinessHoursOnly:   req.BusinessHoursOnly,
		IsActive:            active,
	}
}

func escalationRuleFromRequest(req *dto.EscalationRuleRequest) *domain.EscalationRule {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &domain.EscalationRule{
		Name:       req.Name,
		Conditions: req.Conditions,
		Actions:    req.Actions,
		IsActive:   active,
	}
}
