package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/twin-workflow-service/internal/client"
	"github.com/spec-kit/twin-workflow-service/internal/domain"
	"github.com/spec-kit/twin-workflow-service/internal/events"
	"github.com/spec-kit/twin-workflow-service/internal/repository"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	val, ok := c.entries[key]
	return val, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

type fakeStatusRepo struct {
	rows        []domain.TicketStatus
	transitions []domain.StatusTransition
	upserted    [][]domain.TicketStatus
	listCalls   int
}

func (r *fakeStatusRepo) ListForCustomer(ctx context.Context, customerID string) ([]domain.TicketStatus, error) {
	r.listCalls++
	var out []domain.TicketStatus
	for _, row := range r.rows {
		if row.CustomerID == nil || *row.CustomerID == customerID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeStatusRepo) Upsert(ctx context.Context, customerID string, rows []domain.TicketStatus) error {
	r.upserted = append(r.upserted, rows)
	r.rows = append(r.rows, rows...)
	return nil
}

func (r *fakeStatusRepo) ListTransitions(ctx context.Context) ([]domain.StatusTransition, error) {
	return r.transitions, nil
}

func defaultStatusRows() []domain.TicketStatus {
	return []domain.TicketStatus{
		{StatusCode: domain.StatusOpen, Status: "Open", Tab: domain.TabOpen},
		{StatusCode: domain.StatusReassign, Status: "Reassign", Tab: domain.TabOpen},
		{StatusCode: domain.StatusInProgress, Status: "InProgress", Tab: domain.TabOpen},
		{StatusCode: domain.StatusLimitedAvailability, Status: "LimitedAvailability", Tab: domain.TabOpen},
		{StatusCode: domain.StatusResolved, Status: "Resolved", Tab: domain.TabResolved},
		{StatusCode: domain.StatusClosed, Status: "Closed", Tab: domain.TabClosed},
	}
}

type fakeStatsRepo struct {
	rows       []domain.TicketStatRow
	categories []domain.CategoryCount
	dates      []domain.DateCount

	lastTwinIDs          []string
	lastSourceTypes      []domain.SourceType
	lastIncludeScheduled bool
}

func (r *fakeStatsRepo) RowsBySites(ctx context.Context, siteIDs []string) ([]domain.TicketStatRow, error) {
	requested := map[string]bool{}
	for _, id := range siteIDs {
		requested[id] = true
	}
	var out []domain.TicketStatRow
	for _, row := range r.rows {
		if requested[row.SiteID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeStatsRepo) RowsByInsights(ctx context.Context, insightIDs []string) ([]domain.TicketStatRow, error) {
	requested := map[string]bool{}
	for _, id := range insightIDs {
		requested[id] = true
	}
	var out []domain.TicketStatRow
	for _, row := range r.rows {
		if row.InsightID != nil && requested[*row.InsightID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeStatsRepo) RowsByTwins(ctx context.Context, twinIDs []string, sourceTypes []domain.SourceType, includeScheduled bool) ([]domain.TicketStatRow, error) {
	r.lastTwinIDs = twinIDs
	r.lastSourceTypes = sourceTypes
	r.lastIncludeScheduled = includeScheduled

	requested := map[string]bool{}
	for _, id := range twinIDs {
		requested[id] = true
	}
	sources := map[domain.SourceType]bool{}
	for _, st := range sourceTypes {
		sources[st] = true
	}
	var out []domain.TicketStatRow
	for _, row := range r.rows {
		if !requested[row.TwinID] {
			continue
		}
		if !includeScheduled && row.Occurrence > 0 {
			continue
		}
		if len(sourceTypes) > 0 && !sources[row.SourceType] {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *fakeStatsRepo) CategoryCountsBySpaceTwin(ctx context.Context, spaceTwinID string) ([]domain.CategoryCount, error) {
	return r.categories, nil
}

func (r *fakeStatsRepo) CountsByCreatedDate(ctx context.Context, spaceTwinID string, start, end time.Time) ([]domain.DateCount, error) {
	return r.dates, nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	writes  []repository.TicketWrite
	updates []repository.TicketWrite

	hasOpenForInsight bool
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) CreateBatch(ctx context.Context, writes []repository.TicketWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, writes...)
	for _, write := range writes {
		copied := *write.Ticket
		r.tickets[copied.ID] = &copied
	}
	return nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, write repository.TicketWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[write.Ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.updates = append(r.updates, write)
	copied := *write.Ticket
	r.tickets[copied.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, siteID, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok || ticket.SiteID != siteID {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetBySequenceNumber(ctx context.Context, sequenceNumber string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.SequenceNumber == sequenceNumber {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	statuses := map[int]bool{}
	for _, s := range filter.Statuses {
		statuses[s] = true
	}
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.SiteID != filter.SiteID {
			continue
		}
		if len(filter.Statuses) > 0 && !statuses[ticket.Status] {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) Count(ctx context.Context, siteID string, statuses []int, isScheduled *bool) (int, error) {
	tickets, err := r.ListWithFilter(ctx, repository.TicketFilter{SiteID: siteID, Statuses: statuses})
	if err != nil {
		return 0, err
	}
	return len(tickets), nil
}

func (r *fakeTicketRepo) HasOpenTicketsForInsight(ctx context.Context, insightID string, openStatuses []int, excludeTicketID string) (bool, error) {
	return r.hasOpenForInsight, nil
}

type fakeSequenceRepo struct {
	mu   sync.Mutex
	next map[string]int64
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{next: map[string]int64{}}
}

func (r *fakeSequenceRepo) Reserve(ctx context.Context, siteID string, n int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	first := r.next[siteID] + 1
	r.next[siteID] += int64(n)
	return first, nil
}

type fakeReporterRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Reporter
	created []*domain.Reporter
}

func newFakeReporterRepo() *fakeReporterRepo {
	return &fakeReporterRepo{byID: map[string]*domain.Reporter{}}
}

func (r *fakeReporterRepo) GetByID(ctx context.Context, id string) (*domain.Reporter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reporter, ok := r.byID[id]; ok {
		return reporter, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeReporterRepo) ListBySite(ctx context.Context, siteID string) ([]domain.Reporter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Reporter
	for _, reporter := range r.byID {
		if reporter.SiteID == siteID {
			out = append(out, *reporter)
		}
	}
	return out, nil
}

func (r *fakeReporterRepo) FindExact(ctx context.Context, siteID, name, phone, email, company string) (*domain.Reporter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reporter := range r.byID {
		if reporter.SiteID == siteID && reporter.Matches(name, phone, email, company) {
			return reporter, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeReporterRepo) Create(ctx context.Context, reporter *domain.Reporter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *reporter
	r.byID[copied.ID] = &copied
	r.created = append(r.created, &copied)
	return nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, ticketID, id string) error { return nil }

func (r *fakeCommentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range r.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	attachments []domain.Attachment
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) Delete(ctx context.Context, ticketID, id string) error { return nil }

func (r *fakeAttachmentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, a := range r.attachments {
		if a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeTaskRepo struct {
	tasks []domain.Task
}

func (r *fakeTaskRepo) CreateBatch(ctx context.Context, tasks []domain.Task) error {
	r.tasks = append(r.tasks, tasks...)
	return nil
}

func (r *fakeTaskRepo) SetCompleted(ctx context.Context, ticketID, id string, completed bool, numberValue *float64) error {
	for i := range r.tasks {
		if r.tasks[i].TicketID == ticketID && r.tasks[i].ID == id {
			r.tasks[i].IsCompleted = completed
			if numberValue != nil {
				r.tasks[i].NumberValue = numberValue
			}
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeTaskRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range r.tasks {
		if t.TicketID == ticketID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeDiagnosticRepo struct {
	diagnostics []domain.Diagnostic
}

func (r *fakeDiagnosticRepo) CreateBatch(ctx context.Context, diagnostics []domain.Diagnostic) error {
	r.diagnostics = append(r.diagnostics, diagnostics...)
	return nil
}

func (r *fakeDiagnosticRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Diagnostic, error) {
	var out []domain.Diagnostic
	for _, d := range r.diagnostics {
		if d.TicketID == ticketID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	rows []domain.AuditTrail
}

func (r *fakeAuditRepo) ListByRecord(ctx context.Context, recordID string) ([]domain.AuditTrail, error) {
	var out []domain.AuditTrail
	for _, row := range r.rows {
		if row.RecordID == recordID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeTwinClient struct {
	twins map[string]string
	err   error
	calls int
}

func (c *fakeTwinClient) GetTwinsByUniqueIDs(ctx context.Context, siteID string, uniqueIDs []string) ([]client.TwinIdentity, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	var out []client.TwinIdentity
	for _, uniqueID := range uniqueIDs {
		if twinID, ok := c.twins[uniqueID]; ok {
			out = append(out, client.TwinIdentity{ID: twinID, UniqueID: uniqueID})
		}
	}
	return out, nil
}

type fakeDirectoryClient struct {
	site  *client.Site
	users []client.SiteUser
	err   error
}

func (c *fakeDirectoryClient) GetSite(ctx context.Context, siteID string) (*client.Site, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.site, nil
}

func (c *fakeDirectoryClient) GetSiteUsers(ctx context.Context, siteID string) ([]client.SiteUser, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.users, nil
}

type fakeInsightClient struct {
	statusUpdates []string
	batchUpdates  [][]string
}

func (c *fakeInsightClient) UpdateInsightStatus(ctx context.Context, siteID, insightID, status string) error {
	c.statusUpdates = append(c.statusUpdates, insightID+":"+status)
	return nil
}

func (c *fakeInsightClient) BatchUpdateInsightStatus(ctx context.Context, siteID string, insightIDs []string, status string) error {
	c.batchUpdates = append(c.batchUpdates, insightIDs)
	return nil
}

type fakeDispatcher struct {
	published []events.Event
}

func (d *fakeDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *fakeDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}
