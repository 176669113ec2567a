package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-sla-service/internal/service"
)

// EscalationsHandler exposes evaluation passes and escalation lifecycle.
type EscalationsHandler struct {
	escalations *service.EscalationService
}

// NewEscalationsHandler constructs handler.
func NewEscalationsHandler(escalations *service.EscalationService) *EscalationsHandler {
	return &EscalationsHandler{escalations: escalations}
}

// RunSweep POST /staff/escalations/sweep. Triggers a full evaluation pass;
// normally invoked by an external scheduler hitting this endpoint.
func (h *EscalationsHandler) RunSweep(c *fiber.Ctx) error {
	if _, err := staffFromContext(c); err != nil {
		return err
	}
	result, err := h.escalations.RunSweep(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// EvaluateTicket GET /staff/tickets/:id/evaluate. Dry-run rule evaluation.
func (h *EscalationsHandler) EvaluateTicket(c *fiber.Ctx) error {
	if _, err := staffFromContext(c); err != nil {
		return err
	}
	matches, err := h.escalations.EvaluateTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"matched": len(matches) > 0,
		"rules":   matches,
	}})
}

// ResolveEscalation POST /staff/escalations/:id/resolve.
func (h *EscalationsHandler) ResolveEscalation(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	if err := h.escalations.ResolveEscalation(c.Context(), staff, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"resolved": true}})
}
