package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/twin-workflow-service/internal/api/dto"
	"github.com/spec-kit/twin-workflow-service/internal/domain"
	"github.com/spec-kit/twin-workflow-service/internal/service"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

// TicketsHandler manages the site-scoped ticket endpoints.
type TicketsHandler struct {
	workflow *service.WorkflowService
	statuses *service.StatusService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(workflow *service.WorkflowService, statuses *service.StatusService) *TicketsHandler {
	return &TicketsHandler{workflow: workflow, statuses: statuses}
}

// CreateTicket POST /sites/:siteId/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	ticket, err := h.workflow.CreateTicket(c.Context(), c.Params("siteId"), req.ToCreateInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": h.projectTicket(c, ticket)})
}

// CreateTickets POST /sites/:siteId/tickets/batch.
func (h *TicketsHandler) CreateTickets(c *fiber.Ctx) error {
	var req dto.CreateTicketsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	inputs := make([]service.TicketCreateInput, 0, len(req.Tickets))
	for i := range req.Tickets {
		inputs = append(inputs, req.Tickets[i].ToCreateInput())
	}
	tickets, err := h.workflow.CreateTickets(c.Context(), c.Params("siteId"), inputs)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, h.projectTicket(c, &tickets[i]))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": items})
}

// UpdateTicket PATCH /sites/:siteId/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	ticket, err := h.workflow.UpdateTicket(c.Context(), c.Params("siteId"), c.Params("id"), req.ToUpdateInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.projectTicket(c, ticket)})
}

// GetTicket GET /sites/:siteId/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	detail, err := h.workflow.GetTicket(c.Context(), c.Params("siteId"), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicketDetail(detail, h.statusName(c, detail.Ticket))})
}

// GetTicketBySequenceNumber GET /tickets/by-number/:sequenceNumber.
func (h *TicketsHandler) GetTicketBySequenceNumber(c *fiber.Ctx) error {
	detail, err := h.workflow.GetTicketBySequenceNumber(c.Context(), c.Params("sequenceNumber"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicketDetail(detail, h.statusName(c, detail.Ticket))})
}

// ListTickets GET /sites/:siteId/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	query, err := parseSiteTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.workflow.GetSiteTickets(c.Context(), c.Query("customerId"), c.Params("siteId"), query)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, h.projectTicket(c, &tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CountTickets GET /sites/:siteId/tickets/count.
func (h *TicketsHandler) CountTickets(c *fiber.Ctx) error {
	statuses, err := parseIntList(c.Query("statuses"))
	if err != nil {
		return err
	}
	count, err := h.workflow.GetTicketsCount(c.Context(), c.Params("siteId"), statuses, parseBoolPtr(c.Query("isScheduled")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"count": count}})
}

// GetAuditTrail GET /sites/:siteId/tickets/:id/audit-trail.
func (h *TicketsHandler) GetAuditTrail(c *fiber.Ctx) error {
	rows, err := h.workflow.GetTicketAuditTrail(c.Context(), c.Params("siteId"), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		items = append(items, fiber.Map{
			"id":             row.ID,
			"record_id":      row.RecordID,
			"table_name":     row.TableName,
			"column_name":    row.ColumnName,
			"operation_type": row.OperationType,
			"old_value":      row.OldValue,
			"new_value":      row.NewValue,
			"source_id":      row.SourceID,
			"source_type":    row.SourceType,
			"timestamp":      row.Timestamp,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /sites/:siteId/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	comment, err := h.workflow.AddComment(c.Context(), c.Params("siteId"), c.Params("id"), domain.Comment{
		Text:        req.Text,
		CreatorID:   req.CreatorID,
		CreatorName: req.CreatorName,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromComment(comment)})
}

// DeleteComment DELETE /sites/:siteId/tickets/:id/comments/:commentId.
func (h *TicketsHandler) DeleteComment(c *fiber.Ctx) error {
	if err := h.workflow.DeleteComment(c.Context(), c.Params("id"), c.Params("commentId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddAttachment POST /sites/:siteId/tickets/:id/attachments.
func (h *TicketsHandler) AddAttachment(c *fiber.Ctx) error {
	var req dto.CreateAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	attachment, err := h.workflow.AddAttachment(c.Context(), c.Params("siteId"), c.Params("id"), domain.Attachment{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		StorageKey:  req.StorageKey,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromAttachment(attachment)})
}

// DeleteAttachment DELETE /sites/:siteId/tickets/:id/attachments/:attachmentId.
func (h *TicketsHandler) DeleteAttachment(c *fiber.Ctx) error {
	if err := h.workflow.DeleteAttachment(c.Context(), c.Params("id"), c.Params("attachmentId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CompleteTask PATCH /sites/:siteId/tickets/:id/tasks/:taskId.
func (h *TicketsHandler) CompleteTask(c *fiber.Ctx) error {
	var req dto.CompleteTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.workflow.CompleteTask(c.Context(), c.Params("id"), c.Params("taskId"), req.IsCompleted, req.NumberValue); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TicketsHandler) projectTicket(c *fiber.Ctx, ticket *domain.Ticket) dto.TicketResponse {
	return dto.FromTicket(ticket, h.statusName(c, ticket))
}

func (h *TicketsHandler) statusName(c *fiber.Ctx, ticket *domain.Ticket) string {
	cfg, err := h.statuses.ConfigForCustomer(c.Context(), ticket.CustomerID)
	if err != nil {
		return domain.StatusName(ticket.Status)
	}
	if name := cfg.Name(ticket.Status); name != "" {
		return name
	}
	return domain.StatusName(ticket.Status)
}

func parseSiteTicketQuery(c *fiber.Ctx) (service.SiteTicketQuery, error) {
	query := service.SiteTicketQuery{
		FloorCode:    queryPtr(c, "floorCode"),
		AssigneeID:   queryPtr(c, "assigneeId"),
		Unassigned:   parseBoolPtr(c.Query("unassigned")),
		ExternalID:   queryPtr(c, "externalId"),
		IsScheduled:  parseBoolPtr(c.Query("isScheduled")),
		CategoryID:   queryPtr(c, "categoryId"),
		SpaceTwinID:  queryPtr(c, "spaceTwinId"),
		OrderBy:      c.Query("orderBy"),
		CreatedAfter: parseTime(c.Query("createdAfter")),
	}

	if tab := c.Query("tab"); tab != "" {
		t := domain.Tab(tab)
		query.Tab = &t
	}
	statuses, err := parseIntList(c.Query("statuses"))
	if err != nil {
		return query, err
	}
	query.Statuses = statuses

	if src := c.Query("sourceTypes"); src != "" {
		for _, part := range strings.Split(src, ",") {
			query.SourceTypes = append(query.SourceTypes, domain.SourceType(strings.TrimSpace(part)))
		}
	}

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("pageSize"), 50)
	query.Offset = (page - 1) * pageSize
	query.Limit = pageSize
	return query, nil
}

func queryPtr(c *fiber.Ctx, key string) *string {
	if val := c.Query(key); val != "" {
		return &val
	}
	return nil
}

func parseBoolPtr(val string) *bool {
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseIntList(val string) ([]int, error) {
	if val == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(val, ",") {
		parsed, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, apperrors.NewValidationError("statuses must be integers", map[string]any{"field": "Statuses", "value": part})
		}
		out = append(out, parsed)
	}
	return out, nil
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
