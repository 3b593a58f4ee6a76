package domain

import "time"

// SiteStatistics counts non-closed tickets for one site by priority plus
// overdue and open totals. A requested site with no tickets still gets a row
// with every count zero.
type SiteStatistics struct {
	SiteID       string
	OverdueCount int
	UrgentCount  int
	HighCount    int
	MediumCount  int
	LowCount     int
	OpenCount    int
}

// InsightStatistics counts tickets associated with one insight.
type InsightStatistics struct {
	InsightID      string
	TotalCount     int
	OverdueCount   int
	ScheduledCount int
}

// TwinTicketStatistics counts non-scheduled tickets for one twin.
// HighestPriority is the numerically smallest priority among them.
type TwinTicketStatistics struct {
	TwinID          string
	TicketCount     int
	HighestPriority int
}

// StatusTabCounts is the Open/Resolved/Closed breakdown for a site or twin.
type StatusTabCounts struct {
	ID            string
	OpenCount     int
	ResolvedCount int
	ClosedCount   int
}

// CategoryCount is one entry of the top-N category breakdown.
type CategoryCount struct {
	Category string
	Count    int
}

// CategoryCounts carries the top-N categories plus the fold-over bucket for
// uncategorized tickets and categories beyond the limit.
type CategoryCounts struct {
	Categories []CategoryCount
	OtherCount int
}

// DateCount is a created-date bucket; dates with zero tickets are omitted.
type DateCount struct {
	Date  time.Time
	Count int
}

// TicketStatRow is the projection statistics services bucket over.
type TicketStatRow struct {
	SiteID     string
	InsightID  *string
	TwinID     string
	Status     int
	Priority   int
	Occurrence int
	SourceType SourceType
	DueDate    *time.Time
}
