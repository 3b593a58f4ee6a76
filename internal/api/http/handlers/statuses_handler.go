package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/twin-workflow-service/internal/api/dto"
	"github.com/spec-kit/twin-workflow-service/internal/service"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

// StatusesHandler manages customer status configuration endpoints.
type StatusesHandler struct {
	statuses *service.StatusService
}

// NewStatusesHandler constructs handler.
func NewStatusesHandler(statuses *service.StatusService) *StatusesHandler {
	return &StatusesHandler{statuses: statuses}
}

// ListStatuses GET /customers/:customerId/statuses.
func (h *StatusesHandler) ListStatuses(c *fiber.Ctx) error {
	rows, err := h.statuses.ListStatuses(c.Context(), c.Params("customerId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromStatuses(rows)})
}

// UpsertStatuses PUT /customers/:customerId/statuses.
func (h *StatusesHandler) UpsertStatuses(c *fiber.Ctx) error {
	var req dto.UpsertStatusesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	customerID := c.Params("customerId")
	if err := h.statuses.CreateOrUpdateStatuses(c.Context(), customerID, req.ToStatuses(customerID)); err != nil {
		return err
	}
	rows, err := h.statuses.ListStatuses(c.Context(), customerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromStatuses(rows)})
}
