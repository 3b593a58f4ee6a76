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

// TicketFilter captures the site-listing query surface. Pointer fields are
// optional; nil means "not filtered".
type TicketFilter struct {
	SiteID       string
	Statuses     []int
	FloorCode    *string
	AssigneeID   *string
	Unassigned   *bool
	SourceTypes  []domain.SourceType
	ExternalID   *string
	CreatedAfter *time.Time
	IsScheduled  *bool
	CategoryID   *string
	SpaceTwinID  *string
	OrderBy      []OrderBy
	Limit        int
	Offset       int
}

// OrderBy is one validated ordering key. Column must come from
// OrderableColumns; the repository does not re-validate.
type OrderBy struct {
	Column string
	Desc   bool
}

// OrderableColumns maps caller-facing order fields (lower-cased) to SQL
// columns. Fields outside this map are a validation error upstream.
var OrderableColumns = map[string]string{
	"status":         "t.status",
	"priority":       "t.priority",
	"createddate":    "t.created_date",
	"updateddate":    "t.updated_date",
	"duedate":        "t.due_date",
	"assigneename":   "t.assignee_name",
	"category":       "category",
	"sequencenumber": "t.sequence_number",
	"summary":        "t.summary",
}

// TicketWrite bundles everything one ticket mutation persists atomically:
// the ticket row, its audit rows, and a reporter created on no exact match.
type TicketWrite struct {
	Ticket   *domain.Ticket
	Audits   []domain.AuditTrail
	Reporter *domain.Reporter
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	CreateBatch(ctx context.Context, writes []TicketWrite) error
	Update(ctx context.Context, write TicketWrite) error
	GetByID(ctx context.Context, siteID, id string) (*domain.Ticket, error)
	GetBySequenceNumber(ctx context.Context, sequenceNumber string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, siteID string, statuses []int, isScheduled *bool) (int, error)
	HasOpenTicketsForInsight(ctx context.Context, insightID string, openStatuses []int, excludeTicketID string) (bool, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `t.id, t.customer_id, t.site_id, t.floor_code, t.sequence_number,
	t.priority, t.status, t.issue_type, t.issue_id, t.issue_name, t.insight_id, t.insight_name,
	t.summary, t.description, t.cause, t.solution, t.notes, t.category_id, COALESCE(c.name, '') AS category,
	t.reporter_id, t.reporter_name, t.reporter_phone, t.reporter_email, t.reporter_company,
	t.assignee_type, t.assignee_id, t.assignee_name, t.creator_id,
	t.due_date, t.created_date, t.updated_date, t.started_date, t.resolved_date, t.closed_date,
	t.source_type, t.source_id, t.source_name,
	t.external_id, t.external_status, t.external_metadata, t.external_created_date, t.external_updated_date,
	t.last_updated_by_external_source, t.occurrence, t.template_id, t.twin_id, t.space_twin_id,
	t.custom_properties, t.searchable_property_keys`

const ticketJoin = ` FROM tickets t LEFT JOIN ticket_categories c ON c.id = t.category_id`

func (r *ticketRepository) CreateBatch(ctx context.Context, writes []TicketWrite) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, write := range writes {
			if err := insertReporter(ctx, tx, write.Reporter); err != nil {
				return err
			}
			if err := insertTicket(ctx, tx, write.Ticket); err != nil {
				return err
			}
			if err := insertAuditRows(ctx, tx, write.Audits); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ticketRepository) Update(ctx context.Context, write TicketWrite) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertReporter(ctx, tx, write.Reporter); err != nil {
			return err
		}
		if err := updateTicket(ctx, tx, write.Ticket); err != nil {
			return err
		}
		return insertAuditRows(ctx, tx, write.Audits)
	})
}

func insertTicket(ctx context.Context, tx pgx.Tx, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, customer_id, site_id, floor_code, sequence_number,
            priority, status, issue_type, issue_id, issue_name, insight_id, insight_name,
            summary, description, cause, solution, notes, category_id,
            reporter_id, reporter_name, reporter_phone, reporter_email, reporter_company,
            assignee_type, assignee_id, assignee_name, creator_id,
            due_date, created_date, updated_date, started_date, resolved_date, closed_date,
            source_type, source_id, source_name,
            external_id, external_status, external_metadata, external_created_date, external_updated_date,
            last_updated_by_external_source, occurrence, template_id, twin_id, space_twin_id,
            custom_properties, searchable_property_keys)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
            $21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,$39,
            $40,$41,$42,$43,$44,$45,$46,$47,$48)`
	_, err := tx.Exec(ctx, query, ticketArgs(ticket)...)
	return err
}

func updateTicket(ctx context.Context, tx pgx.Tx, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET floor_code=$2, priority=$3, status=$4,
            issue_type=$5, issue_id=$6, issue_name=$7, insight_id=$8, insight_name=$9,
            summary=$10, description=$11, cause=$12, solution=$13, notes=$14, category_id=$15,
            reporter_id=$16, reporter_name=$17, reporter_phone=$18, reporter_email=$19, reporter_company=$20,
            assignee_type=$21, assignee_id=$22, assignee_name=$23,
            due_date=$24, updated_date=$25, started_date=$26, resolved_date=$27, closed_date=$28,
            external_status=$29, external_metadata=$30, external_created_date=$31, external_updated_date=$32,
            last_updated_by_external_source=$33, twin_id=$34, space_twin_id=$35,
            custom_properties=$36, searchable_property_keys=$37
        WHERE id=$1`
	cmd, err := tx.Exec(ctx, query,
		ticket.ID,
		ticket.FloorCode,
		ticket.Priority,
		ticket.Status,
		ticket.IssueType,
		ticket.IssueID,
		ticket.IssueName,
		ticket.InsightID,
		ticket.InsightName,
		ticket.Summary,
		ticket.Description,
		ticket.Cause,
		ticket.Solution,
		ticket.Notes,
		ticket.CategoryID,
		ticket.ReporterID,
		ticket.ReporterName,
		ticket.ReporterPhone,
		ticket.ReporterEmail,
		ticket.ReporterCompany,
		ticket.AssigneeType,
		ticket.AssigneeID,
		ticket.AssigneeName,
		ticket.DueDate,
		ticket.UpdatedDate,
		ticket.StartedDate,
		ticket.ResolvedDate,
		ticket.ClosedDate,
		ticket.ExternalStatus,
		ticket.ExternalMetadata,
		ticket.ExternalCreatedDate,
		ticket.ExternalUpdatedDate,
		ticket.LastUpdatedByExternalSource,
		ticket.TwinID,
		ticket.SpaceTwinID,
		ticket.CustomProperties,
		ticket.ExtendableSearchablePropertyKeys,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func insertAuditRows(ctx context.Context, tx pgx.Tx, rows []domain.AuditTrail) error {
	const query = `
        INSERT INTO audit_trails (id, record_id, table_name, column_name, operation_type,
            old_value, new_value, source_id, source_type, timestamp)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	for _, row := range rows {
		if _, err := tx.Exec(ctx, query,
			row.ID,
			row.RecordID,
			row.TableName,
			row.ColumnName,
			row.OperationType,
			row.OldValue,
			row.NewValue,
			row.SourceID,
			row.SourceType,
			row.Timestamp,
		); err != nil {
			return err
		}
	}
	return nil
}

func insertReporter(ctx context.Context, tx pgx.Tx, reporter *domain.Reporter) error {
	if reporter == nil {
		return nil
	}
	const query = `
        INSERT INTO reporters (id, customer_id, site_id, name, phone, email, company)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := tx.Exec(ctx, query,
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

func (r *ticketRepository) GetByID(ctx context.Context, siteID, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ticketJoin + ` WHERE t.id=$1`
	args := []any{id}
	if siteID != "" {
		query += ` AND t.site_id=$2`
		args = append(args, siteID)
	}
	return r.fetchSingle(ctx, query, args...)
}

func (r *ticketRepository) GetBySequenceNumber(ctx context.Context, sequenceNumber string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ticketJoin + ` WHERE t.sequence_number=$1`
	return r.fetchSingle(ctx, query, sequenceNumber)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tickets[0], nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"t.site_id=$1"}
	args := []any{filter.SiteID}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.FloorCode != nil {
		args = append(args, *filter.FloorCode)
		clauses = append(clauses, fmt.Sprintf("t.floor_code=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("t.assignee_id=$%d", len(args)))
	}
	if filter.Unassigned != nil && *filter.Unassigned {
		clauses = append(clauses, fmt.Sprintf("t.assignee_type='%s'", domain.AssigneeTypeNoAssignee))
	}
	if len(filter.SourceTypes) > 0 {
		placeholders := make([]string, len(filter.SourceTypes))
		for i, src := range filter.SourceTypes {
			args = append(args, src)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.source_type IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.ExternalID != nil {
		args = append(args, *filter.ExternalID)
		clauses = append(clauses, fmt.Sprintf("t.external_id=$%d", len(args)))
	}
	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		clauses = append(clauses, fmt.Sprintf("t.created_date >= $%d", len(args)))
	}
	if filter.IsScheduled != nil {
		if *filter.IsScheduled {
			clauses = append(clauses, "t.occurrence > 0")
		} else {
			clauses = append(clauses, "t.occurrence = 0")
		}
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("t.category_id=$%d", len(args)))
	}
	if filter.SpaceTwinID != nil {
		args = append(args, *filter.SpaceTwinID)
		clauses = append(clauses, fmt.Sprintf("t.space_twin_id=$%d", len(args)))
	}

	orderClause := "t.created_date DESC"
	if len(filter.OrderBy) > 0 {
		parts := make([]string, len(filter.OrderBy))
		for i, ob := range filter.OrderBy {
			dir := "ASC"
			if ob.Desc {
				dir = "DESC"
			}
			parts[i] = ob.Column + " " + dir
		}
		orderClause = strings.Join(parts, ", ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s%s WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		ticketColumns, ticketJoin, strings.Join(clauses, " AND "), orderClause, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Count(ctx context.Context, siteID string, statuses []int, isScheduled *bool) (int, error) {
	clauses := []string{"site_id=$1"}
	args := []any{siteID}
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if isScheduled != nil {
		if *isScheduled {
			clauses = append(clauses, "occurrence > 0")
		} else {
			clauses = append(clauses, "occurrence = 0")
		}
	}
	query := `SELECT COUNT(*) FROM tickets WHERE ` + strings.Join(clauses, " AND ")
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) HasOpenTicketsForInsight(ctx context.Context, insightID string, openStatuses []int, excludeTicketID string) (bool, error) {
	args := []any{insightID}
	clauses := []string{"insight_id=$1"}
	if len(openStatuses) > 0 {
		placeholders := make([]string, len(openStatuses))
		for i, status := range openStatuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if excludeTicketID != "" {
		args = append(args, excludeTicketID)
		clauses = append(clauses, fmt.Sprintf("id <> $%d", len(args)))
	}
	query := `SELECT EXISTS (SELECT 1 FROM tickets WHERE ` + strings.Join(clauses, " AND ") + `)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func ticketArgs(ticket *domain.Ticket) []any {
	return []any{
		ticket.ID,
		ticket.CustomerID,
		ticket.SiteID,
		ticket.FloorCode,
		ticket.SequenceNumber,
		ticket.Priority,
		ticket.Status,
		ticket.IssueType,
		ticket.IssueID,
		ticket.IssueName,
		ticket.InsightID,
		ticket.InsightName,
		ticket.Summary,
		ticket.Description,
		ticket.Cause,
		ticket.Solution,
		ticket.Notes,
		ticket.CategoryID,
		ticket.ReporterID,
		ticket.ReporterName,
		ticket.ReporterPhone,
		ticket.ReporterEmail,
		ticket.ReporterCompany,
		ticket.AssigneeType,
		ticket.AssigneeID,
		ticket.AssigneeName,
		ticket.CreatorID,
		ticket.DueDate,
		ticket.CreatedDate,
		ticket.UpdatedDate,
		ticket.StartedDate,
		ticket.ResolvedDate,
		ticket.ClosedDate,
		ticket.SourceType,
		ticket.SourceID,
		ticket.SourceName,
		ticket.ExternalID,
		ticket.ExternalStatus,
		ticket.ExternalMetadata,
		ticket.ExternalCreatedDate,
		ticket.ExternalUpdatedDate,
		ticket.LastUpdatedByExternalSource,
		ticket.Occurrence,
		ticket.TemplateID,
		ticket.TwinID,
		ticket.SpaceTwinID,
		ticket.CustomProperties,
		ticket.ExtendableSearchablePropertyKeys,
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.CustomerID,
			&ticket.SiteID,
			&ticket.FloorCode,
			&ticket.SequenceNumber,
			&ticket.Priority,
			&ticket.Status,
			&ticket.IssueType,
			&ticket.IssueID,
			&ticket.IssueName,
			&ticket.InsightID,
			&ticket.InsightName,
			&ticket.Summary,
			&ticket.Description,
			&ticket.Cause,
			&ticket.Solution,
			&ticket.Notes,
			&ticket.CategoryID,
			&ticket.Category,
			&ticket.ReporterID,
			&ticket.ReporterName,
			&ticket.ReporterPhone,
			&ticket.ReporterEmail,
			&ticket.ReporterCompany,
			&ticket.AssigneeType,
			&ticket.AssigneeID,
			&ticket.AssigneeName,
			&ticket.CreatorID,
			&ticket.DueDate,
			&ticket.CreatedDate,
			&ticket.UpdatedDate,
			&ticket.StartedDate,
			&ticket.ResolvedDate,
			&ticket.ClosedDate,
			&ticket.SourceType,
			&ticket.SourceID,
			&ticket.SourceName,
			&ticket.ExternalID,
			&ticket.ExternalStatus,
			&ticket.ExternalMetadata,
			&ticket.ExternalCreatedDate,
			&ticket.ExternalUpdatedDate,
			&ticket.LastUpdatedByExternalSource,
			&ticket.Occurrence,
			&ticket.TemplateID,
			&ticket.TwinID,
			&ticket.SpaceTwinID,
			&ticket.CustomProperties,
			&ticket.ExtendableSearchablePropertyKeys,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
