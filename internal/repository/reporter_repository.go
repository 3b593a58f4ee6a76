package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

// ReporterRepository stores ticket reporters. Creation within a ticket
// mutation happens in the ticket repository's transaction.
type ReporterRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Reporter, error)
	ListBySite(ctx context.Context, siteID string) ([]domain.Reporter, error)
	FindExact(ctx context.Context, siteID, name, phone, email, company string) (*domain.Reporter, error)
	Create(ctx context.Context, reporter *domain.Reporter) error
}

type reporterRepository struct {
	pool *pgxpool.Pool
}

// NewReporterRepository instantiates repository.
func NewReporterRepository(pool *pgxpool.Pool) ReporterRepository {
	return &reporterRepository{pool: pool}
}

const reporterColumns = `id, customer_id, site_id, name, phone, email, company`

func (r *reporterRepository) GetByID(ctx context.Context, id string) (*domain.Reporter, error) {
	query := `SELECT ` + reporterColumns + ` FROM reporters WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *reporterRepository) ListBySite(ctx context.Context, siteID string) ([]domain.Reporter, error) {
	query := `SELECT ` + reporterColumns + ` FROM reporters WHERE site_id=$1 ORDER BY name`
	rows, err := r.pool.Query(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Reporter
	for rows.Next() {
		var reporter domain.Reporter
		if err := scanReporter(rows, &reporter); err != nil {
			return nil, err
		}
		result = append(result, reporter)
	}
	return result, rows.Err()
}

// FindExact matches on full contact-field equality; returns pgx.ErrNoRows
// when nothing matches.
func (r *reporterRepository) FindExact(ctx context.Context, siteID, name, phone, email, company string) (*domain.Reporter, error) {
	query := `SELECT ` + reporterColumns + `
        FROM reporters WHERE site_id=$1 AND name=$2 AND phone=$3 AND email=$4 AND company=$5
        LIMIT 1`
	return r.fetchSingle(ctx, query, siteID, name, phone, email, company)
}

func (r *reporterRepository) Create(ctx context.Context, reporter *domain.Reporter) error {
	const query = `
        INSERT INTO reporters (id, customer_id, site_id, name, phone, email, company)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		reporter.ID,
		reporter.CustomerID,
		reporter.SiteID,
		reporter.Name,
		reporter.Phone,
		reporter.Email,
		reporter.Company,
	)
	return err
}

func (r *reporterRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Reporter, error) {
	var reporter domain.Reporter
	row := r.pool.QueryRow(ctx, query, args...)
	if err := row.Scan(
		&reporter.ID,
		&reporter.CustomerID,
		&reporter.SiteID,
		&reporter.Name,
		&reporter.Phone,
		&reporter.Email,
		&reporter.Company,
	); err != nil {
		return nil, err
	}
	return &reporter, nil
}

func scanReporter(rows pgx.Rows, reporter *domain.Reporter) error {
	return rows.Scan(
		&reporter.ID,
		&reporter.CustomerID,
		&reporter.SiteID,
		&reporter.Name,
		&reporter.Phone,
		&reporter.Email,
		&reporter.Company,
	)
}
