package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

// TaskRepository stores ticket checklist tasks.
type TaskRepository interface {
	CreateBatch(ctx context.Context, tasks []domain.Task) error
	SetCompleted(ctx context.Context, ticketID, id string, completed bool, numberValue *float64) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Task, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) CreateBatch(ctx context.Context, tasks []domain.Task) error {
	const query = `
        INSERT INTO ticket_tasks (id, ticket_id, name, is_completed, order_index,
            number_value, type, decimal_place, min_value, max_value, unit)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, task := range tasks {
			if _, err := tx.Exec(ctx, query,
				task.ID,
				task.TicketID,
				task.Name,
				task.IsCompleted,
				task.OrderIndex,
				task.NumberValue,
				task.Type,
				task.DecimalPlace,
				task.MinValue,
				task.MaxValue,
				task.Unit,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *taskRepository) SetCompleted(ctx context.Context, ticketID, id string, completed bool, numberValue *float64) error {
	const query = `
        UPDATE ticket_tasks SET is_completed=$3, number_value=COALESCE($4, number_value)
        WHERE ticket_id=$1 AND id=$2`
	cmd, err := r.pool.Exec(ctx, query, ticketID, id, completed, numberValue)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Task, error) {
	const query = `
        SELECT id, ticket_id, name, is_completed, order_index,
               number_value, type, decimal_place, min_value, max_value, unit
        FROM ticket_tasks WHERE ticket_id=$1 ORDER BY order_index`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.TicketID,
			&task.Name,
			&task.IsCompleted,
			&task.OrderIndex,
			&task.NumberValue,
			&task.Type,
			&task.DecimalPlace,
			&task.MinValue,
			&task.MaxValue,
			&task.Unit,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}
