package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

// TicketStatusRepository loads the status/tab configuration tables.
type TicketStatusRepository interface {
	// ListForCustomer returns the customer's rows plus the global rows
	// (customer_id NULL). Per-code fallback is applied by the caller.
	ListForCustomer(ctx context.Context, customerID string) ([]domain.TicketStatus, error)
	Upsert(ctx context.Context, customerID string, rows []domain.TicketStatus) error
	ListTransitions(ctx context.Context) ([]domain.StatusTransition, error)
}

type ticketStatusRepository struct {
	pool *pgxpool.Pool
}

// NewTicketStatusRepository instantiates repository.
func NewTicketStatusRepository(pool *pgxpool.Pool) TicketStatusRepository {
	return &ticketStatusRepository{pool: pool}
}

func (r *ticketStatusRepository) ListForCustomer(ctx context.Context, customerID string) ([]domain.TicketStatus, error) {
	const query = `
        SELECT customer_id, status_code, status, tab
        FROM ticket_statuses
        WHERE customer_id=$1 OR customer_id IS NULL
        ORDER BY customer_id NULLS FIRST, status_code`
	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStatuses(rows)
}

func (r *ticketStatusRepository) Upsert(ctx context.Context, customerID string, statuses []domain.TicketStatus) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
            INSERT INTO ticket_statuses (customer_id, status_code, status, tab)
            VALUES ($1,$2,$3,$4)
            ON CONFLICT (customer_id, status_code)
            DO UPDATE SET status=EXCLUDED.status, tab=EXCLUDED.tab`
		for _, row := range statuses {
			if _, err := tx.Exec(ctx, query, customerID, row.StatusCode, row.Status, row.Tab); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ticketStatusRepository) ListTransitions(ctx context.Context) ([]domain.StatusTransition, error) {
	const query = `SELECT from_status, to_status FROM ticket_status_transitions`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusTransition
	for rows.Next() {
		var tr domain.StatusTransition
		if err := rows.Scan(&tr.FromStatus, &tr.ToStatus); err != nil {
			return nil, err
		}
		result = append(result, tr)
	}
	return result, rows.Err()
}

func scanStatuses(rows pgx.Rows) ([]domain.TicketStatus, error) {
	var result []domain.TicketStatus
	for rows.Next() {
		var status domain.TicketStatus
		if err := rows.Scan(&status.CustomerID, &status.StatusCode, &status.Status, &status.Tab); err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, rows.Err()
}
