package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

// DiagnosticRepository stores the detected-issue links of a ticket.
type DiagnosticRepository interface {
	CreateBatch(ctx context.Context, diagnostics []domain.Diagnostic) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Diagnostic, error)
}

type diagnosticRepository struct {
	pool *pgxpool.Pool
}

// NewDiagnosticRepository instantiates repository.
func NewDiagnosticRepository(pool *pgxpool.Pool) DiagnosticRepository {
	return &diagnosticRepository{pool: pool}
}

func (r *diagnosticRepository) CreateBatch(ctx context.Context, diagnostics []domain.Diagnostic) error {
	const query = `
        INSERT INTO ticket_diagnostics (id, ticket_id, insight_id, insight_name)
        VALUES ($1,$2,$3,$4)`
	for i := range diagnostics {
		d := &diagnostics[i]
		if _, err := r.pool.Exec(ctx, query, d.ID, d.TicketID, d.InsightID, d.InsightName); err != nil {
			return err
		}
	}
	return nil
}

func (r *diagnosticRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Diagnostic, error) {
	const query = `
        SELECT id, ticket_id, insight_id, insight_name
        FROM ticket_diagnostics WHERE ticket_id=$1`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Diagnostic
	for rows.Next() {
		var diagnostic domain.Diagnostic
		if err := rows.Scan(
			&diagnostic.ID,
			&diagnostic.TicketID,
			&diagnostic.InsightID,
			&diagnostic.InsightName,
		); err != nil {
			return nil, err
		}
		result = append(result, diagnostic)
	}
	return result, rows.Err()
}
