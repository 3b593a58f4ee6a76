package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

// CategoryRepository stores per-site ticket categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, siteID, id string) (*domain.Category, error)
	ListBySite(ctx context.Context, siteID string) ([]domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
	Rename(ctx context.Context, siteID, id, name string) error
	Delete(ctx context.Context, siteID, id string) error
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository instantiates repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) GetByID(ctx context.Context, siteID, id string) (*domain.Category, error) {
	const query = `SELECT id, site_id, name FROM ticket_categories WHERE site_id=$1 AND id=$2`
	var category domain.Category
	if err := r.pool.QueryRow(ctx, query, siteID, id).Scan(&category.ID, &category.SiteID, &category.Name); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListBySite(ctx context.Context, siteID string) ([]domain.Category, error) {
	const query = `SELECT id, site_id, name FROM ticket_categories WHERE site_id=$1 ORDER BY name`
	rows, err := r.pool.Query(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.SiteID, &category.Name); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `INSERT INTO ticket_categories (id, site_id, name) VALUES ($1,$2,$3)`
	_, err := r.pool.Exec(ctx, query, category.ID, category.SiteID, category.Name)
	return err
}

func (r *categoryRepository) Rename(ctx context.Context, siteID, id, name string) error {
	const query = `UPDATE ticket_categories SET name=$3 WHERE site_id=$1 AND id=$2`
	cmd, err := r.pool.Exec(ctx, query, siteID, id, name)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, siteID, id string) error {
	const query = `DELETE FROM ticket_categories WHERE site_id=$1 AND id=$2`
	cmd, err := r.pool.Exec(ctx, query, siteID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
