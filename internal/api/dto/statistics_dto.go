package dto

import (
	"time"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

// SiteStatisticsResponse projection.
type SiteStatisticsResponse struct {
	SiteID       string `json:"site_id"`
	OverdueCount int    `json:"overdue_count"`
	UrgentCount  int    `json:"urgent_count"`
	HighCount    int    `json:"high_count"`
	MediumCount  int    `json:"medium_count"`
	LowCount     int    `json:"low_count"`
	OpenCount    int    `json:"open_count"`
}

// InsightStatisticsResponse projection.
type InsightStatisticsResponse struct {
	InsightID      string `json:"insight_id"`
	TotalCount     int    `json:"total_count"`
	OverdueCount   int    `json:"overdue_count"`
	ScheduledCount int    `json:"scheduled_count"`
}

// TwinStatisticsResponse projection.
type TwinStatisticsResponse struct {
	TwinID          string `json:"twin_id"`
	TicketCount     int    `json:"ticket_count"`
	HighestPriority int    `json:"highest_priority"`
}

// StatusTabCountsResponse projection.
type StatusTabCountsResponse struct {
	ID            string `json:"id"`
	OpenCount     int    `json:"open_count"`
	ResolvedCount int    `json:"resolved_count"`
	ClosedCount   int    `json:"closed_count"`
}

// CategoryCountResponse one entry of the category breakdown.
type CategoryCountResponse struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryCountsResponse projection.
type CategoryCountsResponse struct {
	Categories []CategoryCountResponse `json:"categories"`
	OtherCount int                     `json:"other_count"`
}

// DateCountResponse one created-date bucket.
type DateCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// FromSiteStatistics projection.
func FromSiteStatistics(stats []domain.SiteStatistics) []SiteStatisticsResponse {
	out := make([]SiteStatisticsResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, SiteStatisticsResponse(s))
	}
	return out
}

// FromInsightStatistics projection.
func FromInsightStatistics(stats []domain.InsightStatistics) []InsightStatisticsResponse {
	out := make([]InsightStatisticsResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, InsightStatisticsResponse(s))
	}
	return out
}

// FromTwinStatistics projection.
func FromTwinStatistics(stats []domain.TwinTicketStatistics) []TwinStatisticsResponse {
	out := make([]TwinStatisticsResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, TwinStatisticsResponse(s))
	}
	return out
}

// FromStatusTabCounts projection.
func FromStatusTabCounts(stats []domain.StatusTabCounts) []StatusTabCountsResponse {
	out := make([]StatusTabCountsResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, StatusTabCountsResponse(s))
	}
	return out
}

// FromCategoryCounts projection.
func FromCategoryCounts(counts domain.CategoryCounts) CategoryCountsResponse {
	resp := CategoryCountsResponse{
		Categories: make([]CategoryCountResponse, 0, len(counts.Categories)),
		OtherCount: counts.OtherCount,
	}
	for _, c := range counts.Categories {
		resp.Categories = append(resp.Categories, CategoryCountResponse(c))
	}
	return resp
}

// FromDateCounts projection. Dates render as calendar days.
func FromDateCounts(counts []domain.DateCount) []DateCountResponse {
	out := make([]DateCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, DateCountResponse{
			Date:  c.Date.Format(time.DateOnly),
			Count: c.Count,
		})
	}
	return out
}
