package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/spec-kit/twin-workflow-service/internal/client"
	"github.com/spec-kit/twin-workflow-service/internal/config"
	"github.com/spec-kit/twin-workflow-service/internal/domain"
	"github.com/spec-kit/twin-workflow-service/internal/events"
	"github.com/spec-kit/twin-workflow-service/internal/repository"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

// WorkflowService orchestrates ticket creation and mutation: sequence
// allocation, twin resolution, transition validation, audit recording and
// the single-transaction persistence of all of it.
type WorkflowService struct {
	tickets     repository.TicketRepository
	sequences   repository.SequenceRepository
	reporters   repository.ReporterRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	tasks       repository.TaskRepository
	diagnostics repository.DiagnosticRepository
	audits      repository.AuditTrailRepository
	statuses    *StatusService
	validator   *TransitionValidator
	recorder    AuditRecorder
	resolver    *TwinResolver
	directory   client.DirectoryClient
	insights    client.InsightClient
	dispatcher  events.Dispatcher
	clock       clockwork.Clock
	logger      *zap.Logger
	cfg         config.WorkflowConfig
}

// WorkflowDependencies bundles collaborators for the workflow service.
type WorkflowDependencies struct {
	TicketRepo     repository.TicketRepository
	SequenceRepo   repository.SequenceRepository
	ReporterRepo   repository.ReporterRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	TaskRepo       repository.TaskRepository
	DiagnosticRepo repository.DiagnosticRepository
	AuditRepo      repository.AuditTrailRepository
	Statuses       *StatusService
	Validator      *TransitionValidator
	Resolver       *TwinResolver
	Directory      client.DirectoryClient
	Insights       client.InsightClient
	Dispatcher     events.Dispatcher
	Clock          clockwork.Clock
	Logger         *zap.Logger
}

// NewWorkflowService constructs the service.
func NewWorkflowService(cfg config.WorkflowConfig, deps WorkflowDependencies) *WorkflowService {
	return &WorkflowService{
		tickets:     deps.TicketRepo,
		sequences:   deps.SequenceRepo,
		reporters:   deps.ReporterRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		tasks:       deps.TaskRepo,
		diagnostics: deps.DiagnosticRepo,
		audits:      deps.AuditRepo,
		statuses:    deps.Statuses,
		validator:   deps.Validator,
		resolver:    deps.Resolver,
		directory:   deps.Directory,
		insights:    deps.Insights,
		dispatcher:  deps.Dispatcher,
		clock:       deps.Clock,
		logger:      deps.Logger,
		cfg:         cfg,
	}
}

// TaskInput describes one checklist task supplied at creation.
type TaskInput struct {
	Name         string
	Type         string
	OrderIndex   int
	DecimalPlace *int
	MinValue     *float64
	MaxValue     *float64
	Unit         string
}

// TicketCreateInput is the workflow-level creation payload.
type TicketCreateInput struct {
	CustomerID           string
	FloorCode            string
	SequenceNumberPrefix string

	Priority int
	Status   *int

	IssueType   domain.IssueType
	IssueID     *string
	IssueName   string
	InsightID   *string
	InsightName string

	Summary     string
	Description string
	Cause       string
	Solution    string
	Notes       string

	CategoryID *string

	ReporterID      *string
	ReporterName    string
	ReporterPhone   string
	ReporterEmail   string
	ReporterCompany string

	AssigneeType domain.AssigneeType
	AssigneeID   *string
	AssigneeName string

	CreatorID string
	DueDate   *time.Time

	SourceType domain.SourceType
	SourceID   *string
	SourceName string

	ExternalID                  string
	ExternalStatus              string
	ExternalMetadata            string
	ExternalCreatedDate         *time.Time
	ExternalUpdatedDate         *time.Time
	LastUpdatedByExternalSource bool

	Occurrence int
	TemplateID *string

	// TwinID, when non-blank, overrides automatic resolution. UniqueID is
	// the legacy asset id resolution runs against otherwise.
	TwinID      string
	SpaceTwinID string
	UniqueID    string

	CustomProperties       map[string]string
	SearchablePropertyKeys []string

	Tasks       []TaskInput
	Diagnostics []DiagnosticInput
}

// DiagnosticInput links a created ticket to a detected-issue record.
type DiagnosticInput struct {
	InsightID   string
	InsightName string
}

// TicketUpdateInput is the workflow-level update payload. Nil pointers mean
// "field omitted, preserve current value". TwinID distinguishes omitted
// (nil) from present-but-empty (clear).
type TicketUpdateInput struct {
	Priority *int
	Status   *int

	FloorCode   *string
	Summary     *string
	Description *string
	Cause       *string
	Solution    *string
	Notes       *string
	CategoryID  *string

	ReporterID      *string
	ReporterName    *string
	ReporterPhone   *string
	ReporterEmail   *string
	ReporterCompany *string

	AssigneeType *domain.AssigneeType
	AssigneeID   *string
	AssigneeName *string

	DueDate *time.Time

	TwinID      *string
	SpaceTwinID *string

	ExternalStatus              *string
	ExternalMetadata            *string
	ExternalCreatedDate         *time.Time
	ExternalUpdatedDate         *time.Time
	LastUpdatedByExternalSource bool

	CustomProperties       map[string]string
	SearchablePropertyKeys []string

	SourceType domain.SourceType
	SourceID   *string
	UpdaterID  string
}

// TicketDetail pairs a ticket with its loaded associations and the derived
// insight-resolution hint.
type TicketDetail struct {
	Ticket            *domain.Ticket
	CanResolveInsight bool
}

// SiteTicketQuery is the listing surface for one site's tickets.
type SiteTicketQuery struct {
	Tab          *domain.Tab
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
	OrderBy      string
	Limit        int
	Offset       int
}

// CreateTicket creates a single ticket.
func (s *WorkflowService) CreateTicket(ctx context.Context, siteID string, input TicketCreateInput) (*domain.Ticket, error) {
	created, err := s.CreateTickets(ctx, siteID, []TicketCreateInput{input})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// CreateTickets creates a batch of tickets for one site atomically. Sequence
// numbers are reserved consecutively up front; twin resolution runs as one
// batched lookup across all tickets.
func (s *WorkflowService) CreateTickets(ctx context.Context, siteID string, inputs []TicketCreateInput) ([]domain.Ticket, error) {
	if siteID == "" {
		return nil, apperrors.NewValidationError("site id required", map[string]any{"field": "SiteId"})
	}
	if len(inputs) == 0 {
		return nil, apperrors.NewValidationError("at least one ticket required", map[string]any{"field": "Tickets"})
	}
	// status config and lifecycle stamping are per customer, so a batch is
	// scoped to exactly one
	customerID := inputs[0].CustomerID
	for i := range inputs {
		if err := validateCreateInput(&inputs[i]); err != nil {
			return nil, err
		}
		if inputs[i].CustomerID != customerID {
			return nil, apperrors.NewValidationError("batch tickets must share one customer", map[string]any{"field": "CustomerId"})
		}
	}

	cfg, err := s.statuses.ConfigForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	first, err := s.sequences.Reserve(ctx, siteID, len(inputs))
	if err != nil {
		return nil, err
	}

	resolved := s.resolveForCreate(ctx, siteID, inputs)
	now := s.clock.Now().UTC()

	writes := make([]repository.TicketWrite, 0, len(inputs))
	tickets := make([]domain.Ticket, 0, len(inputs))
	for i := range inputs {
		input := &inputs[i]
		ticket := buildTicket(siteID, input, now)
		ticket.SequenceNumber = fmt.Sprintf("%s-T-%d", input.SequenceNumberPrefix, first+int64(i))
		applyResolution(ticket, input, siteID, resolved)
		stampStatusDates(ticket, cfg, nil, now)
		if ticket.SourceType == domain.SourceTypeMapped && ticket.SourceName == "" {
			ticket.SourceName = s.cfg.MappedSourceName
		}

		s.resolveAssigneeName(ctx, siteID, ticket)
		reporter := s.reporterForWrite(ctx, ticket, input)
		audits := s.recorder.Record(nil, ticket, Provenance{
			SourceType: ticket.SourceType,
			SourceID:   input.SourceID,
			CreatorID:  input.CreatorID,
		}, now)

		writes = append(writes, repository.TicketWrite{Ticket: ticket, Audits: audits, Reporter: reporter})
		tickets = append(tickets, *ticket)
	}

	if err := s.tickets.CreateBatch(ctx, writes); err != nil {
		return nil, err
	}
	if err := s.createTasks(ctx, inputs, tickets); err != nil {
		return nil, err
	}
	if err := s.createDiagnostics(ctx, inputs, tickets); err != nil {
		return nil, err
	}

	s.notifyInsights(ctx, siteID, tickets)
	for i := range tickets {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketCreated,
			TicketID: tickets[i].ID,
			SiteID:   siteID,
			Payload: events.TicketCreatedPayload{
				SequenceNumber: tickets[i].SequenceNumber,
				Priority:       tickets[i].Priority,
				Status:         tickets[i].Status,
				SourceType:     tickets[i].SourceType,
			},
		})
	}
	return tickets, nil
}

// UpdateTicket applies a partial update, enforcing the status state machine
// and recording the audit diff in the same transaction.
func (s *WorkflowService) UpdateTicket(ctx context.Context, siteID, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, siteID, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	before := *ticket

	if input.Status != nil && *input.Status != ticket.Status {
		fromStatus := ticket.Status
		if err := s.validator.Validate(ctx, ticket.CustomerID, &fromStatus, *input.Status); err != nil {
			return nil, err
		}
	}

	applyUpdate(ticket, &input)
	if err := validateTicketInvariants(ticket); err != nil {
		return nil, err
	}

	cfg, err := s.statuses.ConfigForCustomer(ctx, ticket.CustomerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if input.LastUpdatedByExternalSource && input.ExternalUpdatedDate != nil {
		ticket.UpdatedDate = *input.ExternalUpdatedDate
	} else {
		ticket.UpdatedDate = now
	}
	if before.Status != ticket.Status {
		stampStatusDates(ticket, cfg, &before, now)
	}

	if ticket.AssigneeID != nil && (before.AssigneeID == nil || *before.AssigneeID != *ticket.AssigneeID) {
		s.resolveAssigneeName(ctx, siteID, ticket)
	}
	reporter := s.reporterForUpdate(ctx, ticket, &before, &input)
	audits := s.recorder.Record(&before, ticket, Provenance{
		SourceType: input.SourceType,
		SourceID:   input.SourceID,
		CreatorID:  input.UpdaterID,
	}, now)

	if err := s.tickets.Update(ctx, repository.TicketWrite{Ticket: ticket, Audits: audits, Reporter: reporter}); err != nil {
		return nil, err
	}

	if before.Status != ticket.Status {
		if ticket.InsightID != nil {
			s.notifyInsightStatus(ctx, siteID, *ticket.InsightID, statusDisplayName(cfg, ticket.Status))
		}
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			SiteID:   siteID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: before.Status,
				NewStatus: ticket.Status,
			},
		})
	}
	if assigneeChanged(&before, ticket) {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			SiteID:   siteID,
			Payload: events.TicketAssignedPayload{
				AssigneeID:   ticket.AssigneeID,
				AssigneeType: ticket.AssigneeType,
				AssigneeName: ticket.AssigneeName,
			},
		})
	}
	return ticket, nil
}

func assigneeChanged(before, after *domain.Ticket) bool {
	return before.AssigneeType != after.AssigneeType ||
		stringOrEmpty(before.AssigneeID) != stringOrEmpty(after.AssigneeID)
}

// GetTicket loads a ticket with its associations and the insight-resolution
// hint.
func (s *WorkflowService) GetTicket(ctx context.Context, siteID, ticketID string) (*TicketDetail, error) {
	ticket, err := s.tickets.GetByID(ctx, siteID, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return s.buildDetail(ctx, ticket)
}

// GetTicketBySequenceNumber looks a ticket up by its human-readable number.
func (s *WorkflowService) GetTicketBySequenceNumber(ctx context.Context, sequenceNumber string) (*TicketDetail, error) {
	if strings.TrimSpace(sequenceNumber) == "" {
		return nil, apperrors.NewValidationError("sequence number required", map[string]any{"field": "SequenceNumber"})
	}
	ticket, err := s.tickets.GetBySequenceNumber(ctx, sequenceNumber)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"sequence_number": sequenceNumber})
		}
		return nil, err
	}
	return s.buildDetail(ctx, ticket)
}

// GetSiteTickets lists a site's tickets with filtering, ordering and paging.
// Listing scheduled tickets for a site without the scheduled-tickets feature
// returns an empty result.
func (s *WorkflowService) GetSiteTickets(ctx context.Context, customerID, siteID string, query SiteTicketQuery) ([]domain.Ticket, error) {
	if siteID == "" {
		return nil, apperrors.NewValidationError("site id required", map[string]any{"field": "SiteId"})
	}

	if query.IsScheduled != nil && *query.IsScheduled {
		site, err := s.directory.GetSite(ctx, siteID)
		if err != nil {
			return nil, err
		}
		if !site.Features.IsScheduledTicketsEnabled {
			return []domain.Ticket{}, nil
		}
	}

	statuses := query.Statuses
	if query.Tab != nil {
		cfg, err := s.statuses.ConfigForCustomer(ctx, customerID)
		if err != nil {
			return nil, err
		}
		statuses = cfg.CodesInTab(*query.Tab)
		if len(statuses) == 0 {
			return []domain.Ticket{}, nil
		}
	}

	orderBy, err := ParseOrderBy(query.OrderBy)
	if err != nil {
		return nil, err
	}

	return s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		SiteID:       siteID,
		Statuses:     statuses,
		FloorCode:    query.FloorCode,
		AssigneeID:   query.AssigneeID,
		Unassigned:   query.Unassigned,
		SourceTypes:  query.SourceTypes,
		ExternalID:   query.ExternalID,
		CreatedAfter: query.CreatedAfter,
		IsScheduled:  query.IsScheduled,
		CategoryID:   query.CategoryID,
		SpaceTwinID:  query.SpaceTwinID,
		OrderBy:      orderBy,
		Limit:        query.Limit,
		Offset:       query.Offset,
	})
}

// GetTicketsCount counts a site's tickets by status set and scheduled flag.
func (s *WorkflowService) GetTicketsCount(ctx context.Context, siteID string, statuses []int, isScheduled *bool) (int, error) {
	if siteID == "" {
		return 0, apperrors.NewValidationError("site id required", map[string]any{"field": "SiteId"})
	}
	return s.tickets.Count(ctx, siteID, statuses, isScheduled)
}

// ParseOrderBy validates a "field [asc|desc], field [asc|desc]" expression
// against the orderable columns; an unknown field is a validation error
// naming it.
func ParseOrderBy(expr string) ([]repository.OrderBy, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	var result []repository.OrderBy
	for _, part := range strings.Split(expr, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 || len(fields) > 2 {
			return nil, apperrors.NewValidationError("invalid orderBy expression", map[string]any{"field": "OrderByField", "value": strings.TrimSpace(part)})
		}
		column, ok := repository.OrderableColumns[strings.ToLower(fields[0])]
		if !ok {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("unsupported orderBy field %s", fields[0]),
				map[string]any{"field": "OrderByField", "value": fields[0]},
			)
		}
		desc := false
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return nil, apperrors.NewValidationError("orderBy direction must be asc or desc", map[string]any{"field": "OrderByField", "value": fields[1]})
			}
		}
		result = append(result, repository.OrderBy{Column: column, Desc: desc})
	}
	return result, nil
}

func validateCreateInput(input *TicketCreateInput) error {
	if strings.TrimSpace(input.SequenceNumberPrefix) == "" {
		return apperrors.NewValidationError("sequence number prefix required", map[string]any{"field": "SequenceNumberPrefix"})
	}
	if input.Priority < domain.PriorityUrgent || input.Priority > domain.PriorityLow {
		return apperrors.NewValidationError("priority out of range", map[string]any{"field": "Priority", "value": input.Priority})
	}
	if input.AssigneeType == "" {
		input.AssigneeType = domain.AssigneeTypeNoAssignee
	}
	if err := validateAssignee(input.AssigneeType, input.AssigneeID); err != nil {
		return err
	}
	if input.SourceType == "" {
		input.SourceType = domain.SourceTypePlatform
	}
	if input.IssueType == "" {
		input.IssueType = domain.IssueTypeNoIssue
	}
	return nil
}

func validateTicketInvariants(ticket *domain.Ticket) error {
	if ticket.Priority < domain.PriorityUrgent || ticket.Priority > domain.PriorityLow {
		return apperrors.NewValidationError("priority out of range", map[string]any{"field": "Priority", "value": ticket.Priority})
	}
	return validateAssignee(ticket.AssigneeType, ticket.AssigneeID)
}

// validateAssignee enforces the invariant that NoAssignee has no assignee id
// and every other type has one. Violations are rejected, never corrected.
func validateAssignee(assigneeType domain.AssigneeType, assigneeID *string) error {
	hasID := assigneeID != nil && strings.TrimSpace(*assigneeID) != ""
	if assigneeType == domain.AssigneeTypeNoAssignee && hasID {
		return apperrors.NewValidationError("assignee id must be empty for unassigned tickets", map[string]any{"field": "AssigneeId"})
	}
	if assigneeType != domain.AssigneeTypeNoAssignee && !hasID {
		return apperrors.NewValidationError("assignee id required", map[string]any{"field": "AssigneeId", "assignee_type": string(assigneeType)})
	}
	return nil
}

func buildTicket(siteID string, input *TicketCreateInput, now time.Time) *domain.Ticket {
	createdDate := now
	updatedDate := now
	if input.LastUpdatedByExternalSource {
		if input.ExternalCreatedDate != nil {
			createdDate = *input.ExternalCreatedDate
		}
		if input.ExternalUpdatedDate != nil {
			updatedDate = *input.ExternalUpdatedDate
		}
	}
	return &domain.Ticket{
		ID:                               uuid.NewString(),
		CustomerID:                       input.CustomerID,
		SiteID:                           siteID,
		FloorCode:                        input.FloorCode,
		Priority:                         input.Priority,
		Status:                           statusOrDefault(input.Status),
		IssueType:                        input.IssueType,
		IssueID:                          input.IssueID,
		IssueName:                        input.IssueName,
		InsightID:                        input.InsightID,
		InsightName:                      input.InsightName,
		Summary:                          input.Summary,
		Description:                      input.Description,
		Cause:                            input.Cause,
		Solution:                         input.Solution,
		Notes:                            input.Notes,
		CategoryID:                       input.CategoryID,
		ReporterID:                       input.ReporterID,
		ReporterName:                     input.ReporterName,
		ReporterPhone:                    input.ReporterPhone,
		ReporterEmail:                    input.ReporterEmail,
		ReporterCompany:                  input.ReporterCompany,
		AssigneeType:                     input.AssigneeType,
		AssigneeID:                       input.AssigneeID,
		AssigneeName:                     input.AssigneeName,
		CreatorID:                        input.CreatorID,
		DueDate:                          input.DueDate,
		CreatedDate:                      createdDate,
		UpdatedDate:                      updatedDate,
		SourceType:                       input.SourceType,
		SourceID:                         input.SourceID,
		SourceName:                       input.SourceName,
		ExternalID:                       input.ExternalID,
		ExternalStatus:                   input.ExternalStatus,
		ExternalMetadata:                 input.ExternalMetadata,
		ExternalCreatedDate:              input.ExternalCreatedDate,
		ExternalUpdatedDate:              input.ExternalUpdatedDate,
		LastUpdatedByExternalSource:      input.LastUpdatedByExternalSource,
		Occurrence:                       input.Occurrence,
		TemplateID:                       input.TemplateID,
		TwinID:                           input.TwinID,
		SpaceTwinID:                      input.SpaceTwinID,
		CustomProperties:                 input.CustomProperties,
		ExtendableSearchablePropertyKeys: input.SearchablePropertyKeys,
	}
}

func statusOrDefault(status *int) int {
	if status == nil {
		return domain.StatusOpen
	}
	return *status
}

// resolveForCreate batches all unresolved unique ids of the create call,
// including the site id itself for the space twin, into one lookup. A failed
// lookup leaves twins unresolved instead of failing the write.
func (s *WorkflowService) resolveForCreate(ctx context.Context, siteID string, inputs []TicketCreateInput) map[string]string {
	var uniqueIDs []string
	needSpaceTwin := false
	for i := range inputs {
		if inputs[i].TwinID == "" && inputs[i].UniqueID != "" {
			uniqueIDs = append(uniqueIDs, inputs[i].UniqueID)
		}
		if inputs[i].SpaceTwinID == "" {
			needSpaceTwin = true
		}
	}
	if needSpaceTwin {
		uniqueIDs = append(uniqueIDs, siteID)
	}
	if len(uniqueIDs) == 0 {
		return nil
	}

	resolved, err := s.resolver.Resolve(ctx, siteID, uniqueIDs)
	if err != nil {
		s.logger.Warn("twin resolution failed, leaving twin ids unresolved",
			zap.String("site_id", siteID), zap.Error(err))
		return nil
	}
	return resolved
}

func applyResolution(ticket *domain.Ticket, input *TicketCreateInput, siteID string, resolved map[string]string) {
	if ticket.TwinID == "" && input.UniqueID != "" {
		ticket.TwinID = resolved[input.UniqueID]
	}
	if ticket.SpaceTwinID == "" {
		ticket.SpaceTwinID = resolved[siteID]
	}
}

// stampStatusDates sets the lifecycle dates a status implies. On update only
// the dates belonging to the newly entered status change.
func stampStatusDates(ticket *domain.Ticket, cfg *domain.StatusConfig, before *domain.Ticket, now time.Time) {
	if ticket.Status == domain.StatusInProgress && (before == nil || before.Status != domain.StatusInProgress) {
		ticket.StartedDate = &now
	}
	tab := cfg.TabOf(ticket.Status)
	if tab == domain.TabResolved && ticket.ResolvedDate == nil {
		ticket.ResolvedDate = &now
	}
	if tab == domain.TabClosed && ticket.ClosedDate == nil {
		ticket.ClosedDate = &now
	}
}

// reporterForWrite returns a new reporter row to create within the ticket
// transaction when contact details match no existing reporter exactly.
func (s *WorkflowService) reporterForWrite(ctx context.Context, ticket *domain.Ticket, input *TicketCreateInput) *domain.Reporter {
	if input.ReporterID != nil || input.ReporterName == "" {
		return nil
	}
	return s.matchOrNewReporter(ctx, ticket)
}

func (s *WorkflowService) reporterForUpdate(ctx context.Context, ticket *domain.Ticket, before *domain.Ticket, input *TicketUpdateInput) *domain.Reporter {
	if input.ReporterID != nil || ticket.ReporterName == "" {
		return nil
	}
	contactChanged := ticket.ReporterName != before.ReporterName ||
		ticket.ReporterPhone != before.ReporterPhone ||
		ticket.ReporterEmail != before.ReporterEmail ||
		ticket.ReporterCompany != before.ReporterCompany
	if !contactChanged {
		return nil
	}
	return s.matchOrNewReporter(ctx, ticket)
}

func (s *WorkflowService) matchOrNewReporter(ctx context.Context, ticket *domain.Ticket) *domain.Reporter {
	existing, err := s.reporters.FindExact(ctx, ticket.SiteID, ticket.ReporterName, ticket.ReporterPhone, ticket.ReporterEmail, ticket.ReporterCompany)
	if err == nil {
		ticket.ReporterID = &existing.ID
		return nil
	}
	if err != pgx.ErrNoRows {
		s.logger.Warn("reporter lookup failed", zap.Error(err))
		return nil
	}
	reporter := &domain.Reporter{
		ID:         uuid.NewString(),
		CustomerID: ticket.CustomerID,
		SiteID:     ticket.SiteID,
		Name:       ticket.ReporterName,
		Phone:      ticket.ReporterPhone,
		Email:      ticket.ReporterEmail,
		Company:    ticket.ReporterCompany,
	}
	ticket.ReporterID = &reporter.ID
	return reporter
}

// resolveAssigneeName fills a missing display name for user assignees from
// the site directory. Best effort: a directory failure leaves the name empty.
func (s *WorkflowService) resolveAssigneeName(ctx context.Context, siteID string, ticket *domain.Ticket) {
	if ticket.AssigneeType != domain.AssigneeTypeCustomerUser || ticket.AssigneeID == nil || ticket.AssigneeName != "" {
		return
	}
	users, err := s.directory.GetSiteUsers(ctx, siteID)
	if err != nil {
		s.logger.Warn("assignee name lookup failed", zap.String("site_id", siteID), zap.Error(err))
		return
	}
	for _, user := range users {
		if user.ID == *ticket.AssigneeID {
			ticket.AssigneeName = user.FullName()
			return
		}
	}
}

func (s *WorkflowService) createTasks(ctx context.Context, inputs []TicketCreateInput, tickets []domain.Ticket) error {
	var tasks []domain.Task
	for i := range inputs {
		for _, taskInput := range inputs[i].Tasks {
			tasks = append(tasks, domain.Task{
				ID:           uuid.NewString(),
				TicketID:     tickets[i].ID,
				Name:         taskInput.Name,
				Type:         taskInput.Type,
				OrderIndex:   taskInput.OrderIndex,
				DecimalPlace: taskInput.DecimalPlace,
				MinValue:     taskInput.MinValue,
				MaxValue:     taskInput.MaxValue,
				Unit:         taskInput.Unit,
			})
		}
	}
	if len(tasks) == 0 {
		return nil
	}
	return s.tasks.CreateBatch(ctx, tasks)
}

func (s *WorkflowService) createDiagnostics(ctx context.Context, inputs []TicketCreateInput, tickets []domain.Ticket) error {
	var diagnostics []domain.Diagnostic
	for i := range inputs {
		for _, diagnosticInput := range inputs[i].Diagnostics {
			diagnostics = append(diagnostics, domain.Diagnostic{
				ID:          uuid.NewString(),
				TicketID:    tickets[i].ID,
				InsightID:   diagnosticInput.InsightID,
				InsightName: diagnosticInput.InsightName,
			})
		}
	}
	if len(diagnostics) == 0 {
		return nil
	}
	return s.diagnostics.CreateBatch(ctx, diagnostics)
}

// notifyInsights moves insights with newly created tickets to InProgress.
// Fire-and-forget: failures are logged, never rolled into the write.
func (s *WorkflowService) notifyInsights(ctx context.Context, siteID string, tickets []domain.Ticket) {
	var insightIDs []string
	seen := map[string]bool{}
	for i := range tickets {
		if tickets[i].InsightID != nil && !seen[*tickets[i].InsightID] {
			seen[*tickets[i].InsightID] = true
			insightIDs = append(insightIDs, *tickets[i].InsightID)
		}
	}
	if len(insightIDs) == 0 {
		return
	}
	if err := s.insights.BatchUpdateInsightStatus(ctx, siteID, insightIDs, "InProgress"); err != nil {
		s.logger.Warn("insight notification failed", zap.String("site_id", siteID), zap.Error(err))
	}
}

func (s *WorkflowService) notifyInsightStatus(ctx context.Context, siteID, insightID, status string) {
	if err := s.insights.UpdateInsightStatus(ctx, siteID, insightID, status); err != nil {
		s.logger.Warn("insight notification failed",
			zap.String("site_id", siteID),
			zap.String("insight_id", insightID),
			zap.Error(err))
	}
}

func (s *WorkflowService) buildDetail(ctx context.Context, ticket *domain.Ticket) (*TicketDetail, error) {
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	diagnostics, err := s.diagnostics.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Comments = comments
	ticket.Attachments = attachments
	ticket.Tasks = tasks
	ticket.Diagnostics = diagnostics

	detail := &TicketDetail{Ticket: ticket}
	if ticket.InsightID != nil {
		cfg, err := s.statuses.ConfigForCustomer(ctx, ticket.CustomerID)
		if err != nil {
			return nil, err
		}
		openStatuses := append(cfg.CodesInTab(domain.TabOpen), cfg.CodesInTab(domain.TabResolved)...)
		hasOpen, err := s.tickets.HasOpenTicketsForInsight(ctx, *ticket.InsightID, openStatuses, ticket.ID)
		if err != nil {
			return nil, err
		}
		detail.CanResolveInsight = !hasOpen
	}
	return detail, nil
}

func applyUpdate(ticket *domain.Ticket, input *TicketUpdateInput) {
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.Status != nil {
		ticket.Status = *input.Status
	}
	if input.FloorCode != nil {
		ticket.FloorCode = *input.FloorCode
	}
	if input.Summary != nil {
		ticket.Summary = *input.Summary
	}
	if input.Description != nil {
		ticket.Description = *input.Description
	}
	if input.Cause != nil {
		ticket.Cause = *input.Cause
	}
	if input.Solution != nil {
		ticket.Solution = *input.Solution
	}
	if input.Notes != nil {
		ticket.Notes = *input.Notes
	}
	if input.CategoryID != nil {
		ticket.CategoryID = input.CategoryID
	}
	if input.ReporterID != nil {
		ticket.ReporterID = input.ReporterID
	}
	if input.ReporterName != nil {
		ticket.ReporterName = *input.ReporterName
	}
	if input.ReporterPhone != nil {
		ticket.ReporterPhone = *input.ReporterPhone
	}
	if input.ReporterEmail != nil {
		ticket.ReporterEmail = *input.ReporterEmail
	}
	if input.ReporterCompany != nil {
		ticket.ReporterCompany = *input.ReporterCompany
	}
	if input.AssigneeType != nil {
		ticket.AssigneeType = *input.AssigneeType
		ticket.AssigneeID = input.AssigneeID
		if input.AssigneeName != nil {
			ticket.AssigneeName = *input.AssigneeName
		}
		if *input.AssigneeType == domain.AssigneeTypeNoAssignee {
			ticket.AssigneeID = nil
			ticket.AssigneeName = ""
		}
	}
	if input.DueDate != nil {
		ticket.DueDate = input.DueDate
	}
	// nil = omitted, preserve; non-blank = override; explicit empty = clear.
	// A whitespace-only value counts as omitted.
	if input.TwinID != nil {
		if *input.TwinID == "" {
			ticket.TwinID = ""
		} else if strings.TrimSpace(*input.TwinID) != "" {
			ticket.TwinID = *input.TwinID
		}
	}
	if input.SpaceTwinID != nil && strings.TrimSpace(*input.SpaceTwinID) != "" {
		ticket.SpaceTwinID = *input.SpaceTwinID
	}
	if input.ExternalStatus != nil {
		ticket.ExternalStatus = *input.ExternalStatus
	}
	if input.ExternalMetadata != nil {
		ticket.ExternalMetadata = *input.ExternalMetadata
	}
	if input.ExternalCreatedDate != nil {
		ticket.ExternalCreatedDate = input.ExternalCreatedDate
	}
	if input.ExternalUpdatedDate != nil {
		ticket.ExternalUpdatedDate = input.ExternalUpdatedDate
	}
	if input.LastUpdatedByExternalSource {
		ticket.LastUpdatedByExternalSource = true
	}
	if input.CustomProperties != nil {
		ticket.CustomProperties = input.CustomProperties
	}
	if input.SearchablePropertyKeys != nil {
		ticket.ExtendableSearchablePropertyKeys = input.SearchablePropertyKeys
	}
}

func (s *WorkflowService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// GetTicketAuditTrail lists the audit rows recorded for one ticket.
func (s *WorkflowService) GetTicketAuditTrail(ctx context.Context, siteID, ticketID string) ([]domain.AuditTrail, error) {
	if _, err := s.tickets.GetByID(ctx, siteID, ticketID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return s.audits.ListByRecord(ctx, ticketID)
}

// AddComment attaches a comment to a ticket.
func (s *WorkflowService) AddComment(ctx context.Context, siteID, ticketID string, comment domain.Comment) (*domain.Comment, error) {
	if strings.TrimSpace(comment.Text) == "" {
		return nil, apperrors.NewValidationError("comment text required", map[string]any{"field": "Text"})
	}
	ticket, err := s.tickets.GetByID(ctx, siteID, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	comment.ID = uuid.NewString()
	comment.TicketID = ticket.ID
	comment.CreatedDate = s.clock.Now().UTC()
	if err := s.comments.Create(ctx, &comment); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		SiteID:   siteID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			AuthorID:    comment.CreatorID,
			BodyPreview: preview(comment.Text, 120),
		},
	})
	return &comment, nil
}

// DeleteComment removes a comment from a ticket.
func (s *WorkflowService) DeleteComment(ctx context.Context, ticketID, commentID string) error {
	return s.comments.Delete(ctx, ticketID, commentID)
}

// AddAttachment records attachment metadata for a ticket.
func (s *WorkflowService) AddAttachment(ctx context.Context, siteID, ticketID string, attachment domain.Attachment) (*domain.Attachment, error) {
	ticket, err := s.tickets.GetByID(ctx, siteID, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	attachment.ID = uuid.NewString()
	attachment.TicketID = ticket.ID
	attachment.CreatedDate = s.clock.Now().UTC()
	if err := s.attachments.Create(ctx, &attachment); err != nil {
		return nil, err
	}
	return &attachment, nil
}

// DeleteAttachment removes attachment metadata from a ticket.
func (s *WorkflowService) DeleteAttachment(ctx context.Context, ticketID, attachmentID string) error {
	return s.attachments.Delete(ctx, ticketID, attachmentID)
}

// CompleteTask marks a checklist task done or undone.
func (s *WorkflowService) CompleteTask(ctx context.Context, ticketID, taskID string, completed bool, numberValue *float64) error {
	return s.tasks.SetCompleted(ctx, ticketID, taskID, completed, numberValue)
}

func preview(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
