package service

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

var statsNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestStatisticsService(repo *fakeStatsRepo) *StatisticsService {
	statuses := newTestStatusService(&fakeStatusRepo{rows: defaultStatusRows()})
	return NewStatisticsService(repo, statuses, clockwork.NewFakeClockAt(statsNow))
}

func statRows(n int, mutate func(i int, row *domain.TicketStatRow)) []domain.TicketStatRow {
	rows := make([]domain.TicketStatRow, n)
	for i := range rows {
		rows[i] = domain.TicketStatRow{SiteID: "site-1", Status: domain.StatusInProgress}
		mutate(i, &rows[i])
	}
	return rows
}

func TestGetSiteStatisticsBucketsPriorityAndOverdue(t *testing.T) {
	future := statsNow.Add(30 * 24 * time.Hour)
	past := statsNow.Add(-30 * 24 * time.Hour)

	var rows []domain.TicketStatRow
	// ten low-priority in progress, due next month
	rows = append(rows, statRows(10, func(i int, row *domain.TicketStatRow) {
		row.Priority = domain.PriorityLow
		row.DueDate = &future
	})...)
	// ten urgent in progress, due last month
	rows = append(rows, statRows(10, func(i int, row *domain.TicketStatRow) {
		row.Priority = domain.PriorityUrgent
		row.DueDate = &past
	})...)
	// ten low closed, due last month: excluded entirely
	rows = append(rows, statRows(10, func(i int, row *domain.TicketStatRow) {
		row.Priority = domain.PriorityLow
		row.Status = domain.StatusClosed
		row.DueDate = &past
	})...)

	svc := newTestStatisticsService(&fakeStatsRepo{rows: rows})
	stats, err := svc.GetSiteStatistics(context.Background(), "cust-1", []string{"site-1"})
	require.NoError(t, err)
	require.Len(t, stats, 1)

	assert.Equal(t, 10, stats[0].OverdueCount)
	assert.Equal(t, 10, stats[0].UrgentCount)
	assert.Equal(t, 10, stats[0].LowCount)
	assert.Equal(t, 0, stats[0].HighCount)
	assert.Equal(t, 0, stats[0].MediumCount)
	assert.Equal(t, 20, stats[0].OpenCount)
}

func TestGetSiteStatisticsZeroFillsRequestedSites(t *testing.T) {
	svc := newTestStatisticsService(&fakeStatsRepo{})
	stats, err := svc.GetSiteStatistics(context.Background(), "cust-1", []string{"site-a", "site-b"})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, domain.SiteStatistics{SiteID: "site-a"}, stats[0])
	assert.Equal(t, domain.SiteStatistics{SiteID: "site-b"}, stats[1])
}

func TestGetSiteStatisticsRequiresSites(t *testing.T) {
	svc := newTestStatisticsService(&fakeStatsRepo{})
	_, err := svc.GetSiteStatistics(context.Background(), "cust-1", nil)
	require.Error(t, err)
	assert.Equal(t, "SiteIds", apperrors.ToDomainError(err).Details["field"])
}

func TestGetInsightStatisticsCountsAndZeroFills(t *testing.T) {
	insight := "insight-1"
	past := statsNow.Add(-time.Hour)

	rows := statRows(3, func(i int, row *domain.TicketStatRow) {
		row.InsightID = &insight
	})
	rows[0].DueDate = &past
	rows[1].Occurrence = 2
	rows[2].Status = domain.StatusClosed
	rows[2].DueDate = &past

	svc := newTestStatisticsService(&fakeStatsRepo{rows: rows})
	stats, err := svc.GetInsightStatistics(context.Background(), "cust-1", []string{"insight-1", "insight-2"})
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, 3, stats[0].TotalCount)
	// the closed overdue ticket does not count as overdue
	assert.Equal(t, 1, stats[0].OverdueCount)
	assert.Equal(t, 1, stats[0].ScheduledCount)

	assert.Equal(t, domain.InsightStatistics{InsightID: "insight-2"}, stats[1])
}

func TestGetTwinStatisticsOmitsZeroTwinsAndSkipsScheduled(t *testing.T) {
	rows := []domain.TicketStatRow{
		{TwinID: "twin-1", Status: domain.StatusOpen, Priority: domain.PriorityMedium},
		{TwinID: "twin-1", Status: domain.StatusOpen, Priority: domain.PriorityUrgent},
		{TwinID: "twin-1", Status: domain.StatusOpen, Priority: domain.PriorityLow, Occurrence: 1},
		{TwinID: "twin-2", Status: domain.StatusOpen, Priority: domain.PriorityLow, Occurrence: 3},
	}
	repo := &fakeStatsRepo{rows: rows}
	svc := newTestStatisticsService(repo)

	stats, err := svc.GetTwinStatistics(context.Background(), []string{"twin-1", "twin-2", "twin-3"}, nil)
	require.NoError(t, err)
	assert.False(t, repo.lastIncludeScheduled)

	// twin-2 only has scheduled tickets, twin-3 none at all: both omitted
	require.Len(t, stats, 1)
	assert.Equal(t, "twin-1", stats[0].TwinID)
	assert.Equal(t, 2, stats[0].TicketCount)
	assert.Equal(t, domain.PriorityUrgent, stats[0].HighestPriority)
}

func TestGetTwinStatusStatisticsIncludesScheduled(t *testing.T) {
	rows := []domain.TicketStatRow{
		{TwinID: "twin-1", Status: domain.StatusOpen, Occurrence: 1},
		{TwinID: "twin-1", Status: domain.StatusResolved},
		{TwinID: "twin-1", Status: domain.StatusClosed},
	}
	repo := &fakeStatsRepo{rows: rows}
	svc := newTestStatisticsService(repo)

	stats, err := svc.GetTwinStatusStatistics(context.Background(), "cust-1", []string{"twin-1", "twin-2"})
	require.NoError(t, err)
	assert.True(t, repo.lastIncludeScheduled)

	require.Len(t, stats, 1)
	assert.Equal(t, domain.StatusTabCounts{ID: "twin-1", OpenCount: 1, ResolvedCount: 1, ClosedCount: 1}, stats[0])
}

func TestGetSiteStatisticsByStatusZeroFills(t *testing.T) {
	rows := []domain.TicketStatRow{
		{SiteID: "site-1", Status: domain.StatusOpen},
		{SiteID: "site-1", Status: domain.StatusResolved},
	}
	svc := newTestStatisticsService(&fakeStatsRepo{rows: rows})

	stats, err := svc.GetSiteStatisticsByStatus(context.Background(), "cust-1", []string{"site-1", "site-2"})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, domain.StatusTabCounts{ID: "site-1", OpenCount: 1, ResolvedCount: 1}, stats[0])
	assert.Equal(t, domain.StatusTabCounts{ID: "site-2"}, stats[1])
}

func TestGetTicketCategoryCountsFoldsBeyondLimit(t *testing.T) {
	categories := []domain.CategoryCount{
		{Category: "HVAC", Count: 10},
		{Category: "Plumbing", Count: 7},
		{Category: "Electrical", Count: 5},
		{Category: "Cleaning", Count: 4},
		{Category: "", Count: 3},
	}
	svc := newTestStatisticsService(&fakeStatsRepo{categories: categories})

	counts, err := svc.GetTicketCategoryCounts(context.Background(), "space-1", 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.CategoryCount{
		{Category: "HVAC", Count: 10},
		{Category: "Plumbing", Count: 7},
	}, counts.Categories)
	assert.Equal(t, 12, counts.OtherCount)
}

func TestGetTicketCategoryCountsLimitZeroFoldsEverything(t *testing.T) {
	categories := []domain.CategoryCount{
		{Category: "HVAC", Count: 10},
		{Category: "Plumbing", Count: 7},
		{Category: "Electrical", Count: 5},
		{Category: "Cleaning", Count: 4},
		{Category: "", Count: 3},
	}
	svc := newTestStatisticsService(&fakeStatsRepo{categories: categories})

	counts, err := svc.GetTicketCategoryCounts(context.Background(), "space-1", 0)
	require.NoError(t, err)
	assert.Empty(t, counts.Categories)
	assert.Equal(t, 29, counts.OtherCount)
}

func TestGetTicketCategoryCountsNegativeLimitRejected(t *testing.T) {
	svc := newTestStatisticsService(&fakeStatsRepo{})
	_, err := svc.GetTicketCategoryCounts(context.Background(), "space-1", -1)
	require.Error(t, err)
	assert.Equal(t, "Limit", apperrors.ToDomainError(err).Details["field"])
}

func TestGetTicketCountsByCreatedDateValidatesRange(t *testing.T) {
	svc := newTestStatisticsService(&fakeStatsRepo{})
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetTicketCountsByCreatedDate(context.Background(), "space-1", start, end)
	require.Error(t, err)
	assert.Equal(t, "StartDate", apperrors.ToDomainError(err).Details["field"])
}

func TestGetTicketCountsByCreatedDatePassesThroughSparseBuckets(t *testing.T) {
	dates := []domain.DateCount{
		{Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Count: 2},
		{Date: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), Count: 1},
	}
	svc := newTestStatisticsService(&fakeStatsRepo{dates: dates})

	counts, err := svc.GetTicketCountsByCreatedDate(context.Background(), "space-1",
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, dates, counts)
}
