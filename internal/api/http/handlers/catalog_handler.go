package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/twin-workflow-service/internal/api/dto"
	"github.com/spec-kit/twin-workflow-service/internal/domain"
	"github.com/spec-kit/twin-workflow-service/internal/service"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

// CatalogHandler manages per-site categories and reporters.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCategories GET /sites/:siteId/categories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	rows, err := h.catalog.ListCategories(c.Context(), c.Params("siteId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCategories(rows)})
}

// CreateCategory POST /sites/:siteId/categories.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	category, err := h.catalog.CreateCategory(c.Context(), c.Params("siteId"), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromCategory(category)})
}

// RenameCategory PATCH /sites/:siteId/categories/:id.
func (h *CatalogHandler) RenameCategory(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	category, err := h.catalog.RenameCategory(c.Context(), c.Params("siteId"), c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCategory(category)})
}

// DeleteCategory DELETE /sites/:siteId/categories/:id.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.catalog.DeleteCategory(c.Context(), c.Params("siteId"), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListReporters GET /sites/:siteId/reporters.
func (h *CatalogHandler) ListReporters(c *fiber.Ctx) error {
	rows, err := h.catalog.ListReporters(c.Context(), c.Params("siteId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromReporters(rows)})
}

// GetReporter GET /sites/:siteId/reporters/:id.
func (h *CatalogHandler) GetReporter(c *fiber.Ctx) error {
	reporter, err := h.catalog.GetReporter(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromReporter(reporter)})
}

// CreateReporter POST /sites/:siteId/reporters.
func (h *CatalogHandler) CreateReporter(c *fiber.Ctx) error {
	var req dto.CreateReporterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	reporter, err := h.catalog.CreateReporter(c.Context(), domain.Reporter{
		CustomerID: req.CustomerID,
		SiteID:     c.Params("siteId"),
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Company:    req.Company,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromReporter(reporter)})
}
