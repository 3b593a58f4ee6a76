package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SequenceRepository allocates strictly increasing ticket numbers per site.
type SequenceRepository interface {
	// Reserve claims n consecutive numbers for the site and returns the
	// first of them. Counters start at 1 for a site with no prior tickets.
	Reserve(ctx context.Context, siteID string, n int) (int64, error)
}

type sequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository instantiates repository.
func NewSequenceRepository(pool *pgxpool.Pool) SequenceRepository {
	return &sequenceRepository{pool: pool}
}

// Reserve relies on the row-level lock the upsert takes on the site's
// counter row: concurrent writers for one site serialize, different sites
// never contend.
func (r *sequenceRepository) Reserve(ctx context.Context, siteID string, n int) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("reserve count must be positive, got %d", n)
	}
	const query = `
        INSERT INTO ticket_sequences (site_id, next_number)
        VALUES ($1, $2)
        ON CONFLICT (site_id)
        DO UPDATE SET next_number = ticket_sequences.next_number + $2
        RETURNING next_number`
	var last int64
	if err := r.pool.QueryRow(ctx, query, siteID, n).Scan(&last); err != nil {
		return 0, err
	}
	return last - int64(n) + 1, nil
}
