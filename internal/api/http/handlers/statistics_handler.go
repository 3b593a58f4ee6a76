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

// StatisticsHandler serves the aggregation endpoints.
type StatisticsHandler struct {
	statistics *service.StatisticsService
}

// NewStatisticsHandler constructs handler.
func NewStatisticsHandler(statistics *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statistics: statistics}
}

// GetSiteStatistics GET /statistics/sites.
func (h *StatisticsHandler) GetSiteStatistics(c *fiber.Ctx) error {
	siteIDs, err := requireIDList(c, "siteIds")
	if err != nil {
		return err
	}
	stats, err := h.statistics.GetSiteStatistics(c.Context(), c.Query("customerId"), siteIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSiteStatistics(stats)})
}

// GetSiteStatisticsByStatus GET /statistics/sites/status.
func (h *StatisticsHandler) GetSiteStatisticsByStatus(c *fiber.Ctx) error {
	siteIDs, err := requireIDList(c, "siteIds")
	if err != nil {
		return err
	}
	stats, err := h.statistics.GetSiteStatisticsByStatus(c.Context(), c.Query("customerId"), siteIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromStatusTabCounts(stats)})
}

// GetInsightStatistics GET /statistics/insights.
func (h *StatisticsHandler) GetInsightStatistics(c *fiber.Ctx) error {
	insightIDs, err := requireIDList(c, "insightIds")
	if err != nil {
		return err
	}
	stats, err := h.statistics.GetInsightStatistics(c.Context(), c.Query("customerId"), insightIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromInsightStatistics(stats)})
}

// GetTwinStatistics GET /statistics/twins.
func (h *StatisticsHandler) GetTwinStatistics(c *fiber.Ctx) error {
	twinIDs, err := requireIDList(c, "twinIds")
	if err != nil {
		return err
	}
	var sourceTypes []domain.SourceType
	if src := c.Query("sourceTypes"); src != "" {
		for _, part := range strings.Split(src, ",") {
			sourceTypes = append(sourceTypes, domain.SourceType(strings.TrimSpace(part)))
		}
	}
	stats, err := h.statistics.GetTwinStatistics(c.Context(), twinIDs, sourceTypes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTwinStatistics(stats)})
}

// GetTwinStatusStatistics GET /statistics/twins/status.
func (h *StatisticsHandler) GetTwinStatusStatistics(c *fiber.Ctx) error {
	twinIDs, err := requireIDList(c, "twinIds")
	if err != nil {
		return err
	}
	stats, err := h.statistics.GetTwinStatusStatistics(c.Context(), c.Query("customerId"), twinIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromStatusTabCounts(stats)})
}

// GetCategoryCounts GET /statistics/twins/:spaceTwinId/categories.
func (h *StatisticsHandler) GetCategoryCounts(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.NewValidationError("limit must be an integer", map[string]any{"field": "Limit", "value": raw})
		}
		limit = parsed
	}
	counts, err := h.statistics.GetTicketCategoryCounts(c.Context(), c.Params("spaceTwinId"), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCategoryCounts(*counts)})
}

// GetDateCounts GET /statistics/twins/:spaceTwinId/dates.
func (h *StatisticsHandler) GetDateCounts(c *fiber.Ctx) error {
	start, err := requireDate(c, "startDate")
	if err != nil {
		return err
	}
	end, err := requireDate(c, "endDate")
	if err != nil {
		return err
	}
	counts, err := h.statistics.GetTicketCountsByCreatedDate(c.Context(), c.Params("spaceTwinId"), start, end)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromDateCounts(counts)})
}

func requireIDList(c *fiber.Ctx, key string) ([]string, error) {
	raw := c.Query(key)
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.NewValidationError(key+" required", map[string]any{"field": key})
	}
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids, nil
}

func requireDate(c *fiber.Ctx, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, apperrors.NewValidationError(key+" required", map[string]any{"field": key})
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
	}
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(key+" must be a date", map[string]any{"field": key, "value": raw})
	}
	return t, nil
}
