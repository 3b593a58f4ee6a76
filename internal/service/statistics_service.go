package service

import (
	"context"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
	"github.com/spec-kit/twin-workflow-service/internal/repository"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

// StatisticsService computes the read-only aggregate counts. Repositories
// pre-filter rows; bucketing, zero-fill and top-N folding happen here so the
// semantics stay testable against fakes.
type StatisticsService struct {
	stats    repository.StatisticsRepository
	statuses *StatusService
	clock    clockwork.Clock
}

// NewStatisticsService constructs the service.
func NewStatisticsService(stats repository.StatisticsRepository, statuses *StatusService, clock clockwork.Clock) *StatisticsService {
	return &StatisticsService{stats: stats, statuses: statuses, clock: clock}
}

// GetSiteStatistics counts non-closed tickets per requested site by priority
// plus overdue and open totals. Every requested site id gets a row, zeroed
// when it has no tickets.
func (s *StatisticsService) GetSiteStatistics(ctx context.Context, customerID string, siteIDs []string) ([]domain.SiteStatistics, error) {
	if len(siteIDs) == 0 {
		return nil, apperrors.NewValidationError("at least one site id required", map[string]any{"field": "SiteIds"})
	}
	cfg, err := s.statuses.ConfigForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.stats.RowsBySites(ctx, siteIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	bySite := make(map[string]*domain.SiteStatistics, len(siteIDs))
	result := make([]domain.SiteStatistics, len(siteIDs))
	for i, siteID := range siteIDs {
		result[i] = domain.SiteStatistics{SiteID: siteID}
		bySite[siteID] = &result[i]
	}

	for _, row := range rows {
		stat, ok := bySite[row.SiteID]
		if !ok {
			continue
		}
		tab := cfg.TabOf(row.Status)
		if tab == domain.TabClosed {
			continue
		}
		switch row.Priority {
		case domain.PriorityUrgent:
			stat.UrgentCount++
		case domain.PriorityHigh:
			stat.HighCount++
		case domain.PriorityMedium:
			stat.MediumCount++
		case domain.PriorityLow:
			stat.LowCount++
		}
		if isOverdue(row.DueDate, now) {
			stat.OverdueCount++
		}
		if tab != domain.TabResolved {
			stat.OpenCount++
		}
	}
	return result, nil
}

// GetInsightStatistics counts tickets per requested insight. Requested
// insights with no tickets still get a zeroed row.
func (s *StatisticsService) GetInsightStatistics(ctx context.Context, customerID string, insightIDs []string) ([]domain.InsightStatistics, error) {
	if len(insightIDs) == 0 {
		return nil, apperrors.NewValidationError("at least one insight id required", map[string]any{"field": "InsightIds"})
	}
	cfg, err := s.statuses.ConfigForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.stats.RowsByInsights(ctx, insightIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	byInsight := make(map[string]*domain.InsightStatistics, len(insightIDs))
	result := make([]domain.InsightStatistics, len(insightIDs))
	for i, insightID := range insightIDs {
		result[i] = domain.InsightStatistics{InsightID: insightID}
		byInsight[insightID] = &result[i]
	}

	for _, row := range rows {
		if row.InsightID == nil {
			continue
		}
		stat, ok := byInsight[*row.InsightID]
		if !ok {
			continue
		}
		stat.TotalCount++
		if isOverdue(row.DueDate, now) && cfg.TabOf(row.Status) != domain.TabClosed {
			stat.OverdueCount++
		}
		if row.Occurrence > 0 {
			stat.ScheduledCount++
		}
	}
	return result, nil
}

// GetSiteStatisticsByStatus breaks all tickets per requested site down into
// the Open/Resolved/Closed tabs.
func (s *StatisticsService) GetSiteStatisticsByStatus(ctx context.Context, customerID string, siteIDs []string) ([]domain.StatusTabCounts, error) {
	if len(siteIDs) == 0 {
		return nil, apperrors.NewValidationError("at least one site id required", map[string]any{"field": "SiteIds"})
	}
	cfg, err := s.statuses.ConfigForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.stats.RowsBySites(ctx, siteIDs)
	if err != nil {
		return nil, err
	}

	bySite := make(map[string]*domain.StatusTabCounts, len(siteIDs))
	result := make([]domain.StatusTabCounts, len(siteIDs))
	for i, siteID := range siteIDs {
		result[i] = domain.StatusTabCounts{ID: siteID}
		bySite[siteID] = &result[i]
	}
	for _, row := range rows {
		if stat, ok := bySite[row.SiteID]; ok {
			countTab(stat, cfg.TabOf(row.Status))
		}
	}
	return result, nil
}

// GetTwinStatistics counts non-scheduled tickets per twin, optionally
// filtered by source type. Twins with no matching tickets are absent from
// the result.
func (s *StatisticsService) GetTwinStatistics(ctx context.Context, twinIDs []string, sourceTypes []domain.SourceType) ([]domain.TwinTicketStatistics, error) {
	if len(twinIDs) == 0 {
		return nil, apperrors.NewValidationError("at least one twin id required", map[string]any{"field": "TwinIds"})
	}
	rows, err := s.stats.RowsByTwins(ctx, twinIDs, sourceTypes, false)
	if err != nil {
		return nil, err
	}

	byTwin := make(map[string]*domain.TwinTicketStatistics)
	var order []string
	for _, row := range rows {
		stat, ok := byTwin[row.TwinID]
		if !ok {
			stat = &domain.TwinTicketStatistics{TwinID: row.TwinID, HighestPriority: row.Priority}
			byTwin[row.TwinID] = stat
			order = append(order, row.TwinID)
		}
		stat.TicketCount++
		if row.Priority < stat.HighestPriority {
			stat.HighestPriority = row.Priority
		}
	}

	result := make([]domain.TwinTicketStatistics, 0, len(order))
	for _, twinID := range order {
		result = append(result, *byTwin[twinID])
	}
	return result, nil
}

// GetTwinStatusStatistics breaks all tickets per twin (scheduled included)
// down into tabs. As with GetTwinStatistics, zero-match twins are omitted.
func (s *StatisticsService) GetTwinStatusStatistics(ctx context.Context, customerID string, twinIDs []string) ([]domain.StatusTabCounts, error) {
	if len(twinIDs) == 0 {
		return nil, apperrors.NewValidationError("at least one twin id required", map[string]any{"field": "TwinIds"})
	}
	cfg, err := s.statuses.ConfigForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.stats.RowsByTwins(ctx, twinIDs, nil, true)
	if err != nil {
		return nil, err
	}

	byTwin := make(map[string]*domain.StatusTabCounts)
	var order []string
	for _, row := range rows {
		stat, ok := byTwin[row.TwinID]
		if !ok {
			stat = &domain.StatusTabCounts{ID: row.TwinID}
			byTwin[row.TwinID] = stat
			order = append(order, row.TwinID)
		}
		countTab(stat, cfg.TabOf(row.Status))
	}

	result := make([]domain.StatusTabCounts, 0, len(order))
	for _, twinID := range order {
		result = append(result, *byTwin[twinID])
	}
	return result, nil
}

// GetTicketCategoryCounts returns the top-limit categories by ticket count
// for a space. Uncategorized tickets and categories beyond the limit fold
// into OtherCount; limit 0 folds everything.
func (s *StatisticsService) GetTicketCategoryCounts(ctx context.Context, spaceTwinID string, limit int) (*domain.CategoryCounts, error) {
	if spaceTwinID == "" {
		return nil, apperrors.NewValidationError("space twin id required", map[string]any{"field": "SpaceTwinId"})
	}
	if limit < 0 {
		return nil, apperrors.NewValidationError("limit must not be negative", map[string]any{"field": "Limit"})
	}
	counts, err := s.stats.CategoryCountsBySpaceTwin(ctx, spaceTwinID)
	if err != nil {
		return nil, err
	}

	named := make([]domain.CategoryCount, 0, len(counts))
	other := 0
	for _, count := range counts {
		if count.Category == "" {
			other += count.Count
			continue
		}
		named = append(named, count)
	}
	sort.SliceStable(named, func(i, j int) bool { return named[i].Count > named[j].Count })

	if limit < len(named) {
		for _, count := range named[limit:] {
			other += count.Count
		}
		named = named[:limit]
	}
	return &domain.CategoryCounts{Categories: named, OtherCount: other}, nil
}

// GetTicketCountsByCreatedDate groups a space's tickets by creation date
// over an inclusive range. Dates with no tickets are omitted.
func (s *StatisticsService) GetTicketCountsByCreatedDate(ctx context.Context, spaceTwinID string, start, end time.Time) ([]domain.DateCount, error) {
	if spaceTwinID == "" {
		return nil, apperrors.NewValidationError("space twin id required", map[string]any{"field": "SpaceTwinId"})
	}
	if start.After(end) {
		return nil, apperrors.NewValidationError("start date must not be after end date", map[string]any{
			"field": "StartDate", "start_date": start.Format("2006-01-02"), "end_date": end.Format("2006-01-02"),
		})
	}
	return s.stats.CountsByCreatedDate(ctx, spaceTwinID, start, end)
}

func isOverdue(dueDate *time.Time, now time.Time) bool {
	return dueDate != nil && dueDate.Before(now)
}

func countTab(stat *domain.StatusTabCounts, tab domain.Tab) {
	switch tab {
	case domain.TabResolved:
		stat.ResolvedCount++
	case domain.TabClosed:
		stat.ClosedCount++
	default:
		stat.OpenCount++
	}
}
