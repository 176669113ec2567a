package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-sla-service/internal/api/dto"
	"github.com/spec-kit/complaint-sla-service/internal/service"
)

// DashboardHandler exposes aggregate reporting endpoints.
type DashboardHandler struct {
	reports *service.ReportService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(reports *service.ReportService) *DashboardHandler {
	return &DashboardHandler{reports: reports}
}

// Summary GET /staff/dashboard/summary.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	if _, err := staffFromContext(c); err != nil {
		return err
	}
	filter := service.SummaryFilter{}
	if unitID := c.Query("unit_id"); unitID != "" {
		filter.UnitID = &unitID
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		filter.CategoryID = &categoryID
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	if csat := c.Query("csat_score"); csat != "" {
		if parsed, err := strconv.ParseFloat(csat, 64); err == nil {
			filter.CsatScore = &parsed
		}
	}
	summary, err := h.reports.Summary(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// EscalationStats GET /staff/dashboard/escalations.
func (h *DashboardHandler) EscalationStats(c *fiber.Ctx) error {
	if _, err := staffFromContext(c); err != nil {
		return err
	}
	stats, err := h.reports.EscalationStats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// BreachedTickets GET /staff/dashboard/breached.
func (h *DashboardHandler) BreachedTickets(c *fiber.Ctx) error {
	if _, err := staffFromContext(c); err != nil {
		return err
	}
	var unitID *string
	if v := c.Query("unit_id"); v != "" {
		unitID = &v
	}
	tickets, err := h.reports.BreachedOpenTickets(c.Context(), unitID)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
