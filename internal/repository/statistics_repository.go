package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

// StatisticsRepository returns the row projections and grouped counts the
// statistics service buckets over. All methods are read-only.
type StatisticsRepository interface {
	RowsBySites(ctx context.Context, siteIDs []string) ([]domain.TicketStatRow, error)
	RowsByInsights(ctx context.Context, insightIDs []string) ([]domain.TicketStatRow, error)
	RowsByTwins(ctx context.Context, twinIDs []string, sourceTypes []domain.SourceType, includeScheduled bool) ([]domain.TicketStatRow, error)
	CategoryCountsBySpaceTwin(ctx context.Context, spaceTwinID string) ([]domain.CategoryCount, error)
	CountsByCreatedDate(ctx context.Context, spaceTwinID string, start, end time.Time) ([]domain.DateCount, error)
}

type statisticsRepository struct {
	pool *pgxpool.Pool
}

// NewStatisticsRepository instantiates repository.
func NewStatisticsRepository(pool *pgxpool.Pool) StatisticsRepository {
	return &statisticsRepository{pool: pool}
}

const statColumns = `site_id, insight_id, twin_id, status, priority, occurrence, source_type, due_date`

func (r *statisticsRepository) RowsBySites(ctx context.Context, siteIDs []string) ([]domain.TicketStatRow, error) {
	query := `SELECT ` + statColumns + ` FROM tickets WHERE site_id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, siteIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStatRows(rows)
}

func (r *statisticsRepository) RowsByInsights(ctx context.Context, insightIDs []string) ([]domain.TicketStatRow, error) {
	query := `SELECT ` + statColumns + ` FROM tickets WHERE insight_id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, insightIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStatRows(rows)
}

func (r *statisticsRepository) RowsByTwins(ctx context.Context, twinIDs []string, sourceTypes []domain.SourceType, includeScheduled bool) ([]domain.TicketStatRow, error) {
	clauses := []string{"twin_id = ANY($1)"}
	args := []any{twinIDs}
	if !includeScheduled {
		clauses = append(clauses, "occurrence = 0")
	}
	if len(sourceTypes) > 0 {
		placeholders := make([]string, len(sourceTypes))
		for i, src := range sourceTypes {
			args = append(args, src)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("source_type IN (%s)", strings.Join(placeholders, ",")))
	}
	query := `SELECT ` + statColumns + ` FROM tickets WHERE ` + strings.Join(clauses, " AND ")
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStatRows(rows)
}

func (r *statisticsRepository) CategoryCountsBySpaceTwin(ctx context.Context, spaceTwinID string) ([]domain.CategoryCount, error) {
	const query = `
        SELECT COALESCE(c.name, ''), COUNT(*)
        FROM tickets t LEFT JOIN ticket_categories c ON c.id = t.category_id
        WHERE t.space_twin_id=$1
        GROUP BY COALESCE(c.name, '')
        ORDER BY COUNT(*) DESC, COALESCE(c.name, '')`
	rows, err := r.pool.Query(ctx, query, spaceTwinID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CategoryCount
	for rows.Next() {
		var count domain.CategoryCount
		if err := rows.Scan(&count.Category, &count.Count); err != nil {
			return nil, err
		}
		result = append(result, count)
	}
	return result, rows.Err()
}

func (r *statisticsRepository) CountsByCreatedDate(ctx context.Context, spaceTwinID string, start, end time.Time) ([]domain.DateCount, error) {
	const query = `
        SELECT created_date::date AS day, COUNT(*)
        FROM tickets
        WHERE space_twin_id=$1 AND created_date::date BETWEEN $2::date AND $3::date
        GROUP BY day
        ORDER BY day`
	rows, err := r.pool.Query(ctx, query, spaceTwinID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DateCount
	for rows.Next() {
		var count domain.DateCount
		if err := rows.Scan(&count.Date, &count.Count); err != nil {
			return nil, err
		}
		result = append(result, count)
	}
	return result, rows.Err()
}

func scanStatRows(rows pgx.Rows) ([]domain.TicketStatRow, error) {
	var result []domain.TicketStatRow
	for rows.Next() {
		var row domain.TicketStatRow
		if err := rows.Scan(
			&row.SiteID,
			&row.InsightID,
			&row.TwinID,
			&row.Status,
			&row.Priority,
			&row.Occurrence,
			&row.SourceType,
			&row.DueDate,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
