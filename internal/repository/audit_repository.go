package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

// AuditTrailRepository reads the append-only audit trail. Writes happen
// inside the ticket repository's transaction.
type AuditTrailRepository interface {
	ListByRecord(ctx context.Context, recordID string) ([]domain.AuditTrail, error)
}

type auditTrailRepository struct {
	pool *pgxpool.Pool
}

// NewAuditTrailRepository instantiates repository.
func NewAuditTrailRepository(pool *pgxpool.Pool) AuditTrailRepository {
	return &auditTrailRepository{pool: pool}
}

func (r *auditTrailRepository) ListByRecord(ctx context.Context, recordID string) ([]domain.AuditTrail, error) {
	const query = `
        SELECT id, record_id, table_name, column_name, operation_type,
               old_value, new_value, source_id, source_type, timestamp
        FROM audit_trails WHERE record_id=$1 ORDER BY timestamp, column_name`
	rows, err := r.pool.Query(ctx, query, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditTrail
	for rows.Next() {
		var entry domain.AuditTrail
		if err := rows.Scan(
			&entry.ID,
			&entry.RecordID,
			&entry.TableName,
			&entry.ColumnName,
			&entry.OperationType,
			&entry.OldValue,
			&entry.NewValue,
			&entry.SourceID,
			&entry.SourceType,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
