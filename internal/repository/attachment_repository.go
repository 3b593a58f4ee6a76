package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

// AttachmentRepository stores ticket attachment metadata. File bodies live
// in external storage keyed by StorageKey.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	Delete(ctx context.Context, ticketID, id string) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository instantiates repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO ticket_attachments (id, ticket_id, file_name, content_type, size_bytes, storage_key, created_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		attachment.ID,
		attachment.TicketID,
		attachment.FileName,
		attachment.ContentType,
		attachment.SizeBytes,
		attachment.StorageKey,
		attachment.CreatedDate,
	)
	return err
}

func (r *attachmentRepository) Delete(ctx context.Context, ticketID, id string) error {
	const query = `DELETE FROM ticket_attachments WHERE ticket_id=$1 AND id=$2`
	cmd, err := r.pool.Exec(ctx, query, ticketID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, file_name, content_type, size_bytes, storage_key, created_date
        FROM ticket_attachments WHERE ticket_id=$1 ORDER BY created_date`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.TicketID,
			&attachment.FileName,
			&attachment.ContentType,
			&attachment.SizeBytes,
			&attachment.StorageKey,
			&attachment.CreatedDate,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
