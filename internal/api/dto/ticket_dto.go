package dto

import (
	"time"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
	"github.com/spec-kit/twin-workflow-service/internal/service"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerID           string `json:"customer_id" validate:"required"`
	FloorCode            string `json:"floor_code"`
	SequenceNumberPrefix string `json:"sequence_number_prefix" validate:"required"`

	Priority int  `json:"priority" validate:"required,min=1,max=4"`
	Status   *int `json:"status"`

	IssueType   string  `json:"issue_type"`
	IssueID     *string `json:"issue_id"`
	IssueName   string  `json:"issue_name"`
	InsightID   *string `json:"insight_id"`
	InsightName string  `json:"insight_name"`

	Summary     string `json:"summary"`
	Description string `json:"description" validate:"required"`
	Cause       string `json:"cause"`
	Solution    string `json:"solution"`
	Notes       string `json:"notes"`

	CategoryID *string `json:"category_id"`

	ReporterID      *string `json:"reporter_id"`
	ReporterName    string  `json:"reporter_name"`
	ReporterPhone   string  `json:"reporter_phone"`
	ReporterEmail   string  `json:"reporter_email" validate:"omitempty,email"`
	ReporterCompany string  `json:"reporter_company"`

	AssigneeType string  `json:"assignee_type"`
	AssigneeID   *string `json:"assignee_id"`
	AssigneeName string  `json:"assignee_name"`

	CreatorID string     `json:"creator_id" validate:"required"`
	DueDate   *time.Time `json:"due_date"`

	SourceType string  `json:"source_type"`
	SourceID   *string `json:"source_id"`
	SourceName string  `json:"source_name"`

	ExternalID                  string     `json:"external_id"`
	ExternalStatus              string     `json:"external_status"`
	ExternalMetadata            string     `json:"external_metadata"`
	ExternalCreatedDate         *time.Time `json:"external_created_date"`
	ExternalUpdatedDate         *time.Time `json:"external_updated_date"`
	LastUpdatedByExternalSource bool       `json:"last_updated_by_external_source"`

	Occurrence int     `json:"occurrence"`
	TemplateID *string `json:"template_id"`

	TwinID      string `json:"twin_id"`
	SpaceTwinID string `json:"space_twin_id"`
	UniqueID    string `json:"unique_id"`

	CustomProperties       map[string]string `json:"custom_properties"`
	SearchablePropertyKeys []string          `json:"searchable_property_keys"`

	Tasks       []TaskRequest       `json:"tasks" validate:"dive"`
	Diagnostics []DiagnosticRequest `json:"diagnostics" validate:"dive"`
}

// CreateTicketsRequest wraps the batch creation payload.
type CreateTicketsRequest struct {
	Tickets []CreateTicketRequest `json:"tickets" validate:"required,min=1,dive"`
}

// UpdateTicketRequest payload. Omitted fields keep their current values;
// twin_id distinguishes omitted from present-but-empty.
type UpdateTicketRequest struct {
	Priority *int `json:"priority" validate:"omitempty,min=1,max=4"`
	Status   *int `json:"status"`

	FloorCode   *string `json:"floor_code"`
	Summary     *string `json:"summary"`
	Description *string `json:"description"`
	Cause       *string `json:"cause"`
	Solution    *string `json:"solution"`
	Notes       *string `json:"notes"`
	CategoryID  *string `json:"category_id"`

	ReporterID      *string `json:"reporter_id"`
	ReporterName    *string `json:"reporter_name"`
	ReporterPhone   *string `json:"reporter_phone"`
	ReporterEmail   *string `json:"reporter_email" validate:"omitempty,email"`
	ReporterCompany *string `json:"reporter_company"`

	AssigneeType *string `json:"assignee_type"`
	AssigneeID   *string `json:"assignee_id"`
	AssigneeName *string `json:"assignee_name"`

	DueDate *time.Time `json:"due_date"`

	TwinID      *string `json:"twin_id"`
	SpaceTwinID *string `json:"space_twin_id"`

	ExternalStatus              *string    `json:"external_status"`
	ExternalMetadata            *string    `json:"external_metadata"`
	ExternalCreatedDate         *time.Time `json:"external_created_date"`
	ExternalUpdatedDate         *time.Time `json:"external_updated_date"`
	LastUpdatedByExternalSource bool       `json:"last_updated_by_external_source"`

	CustomProperties       map[string]string `json:"custom_properties"`
	SearchablePropertyKeys []string          `json:"searchable_property_keys"`

	SourceType string  `json:"source_type"`
	SourceID   *string `json:"source_id"`
	UpdaterID  string  `json:"updater_id" validate:"required"`
}

// TaskRequest describes one checklist task supplied at creation.
type TaskRequest struct {
	Name         string   `json:"name" validate:"required"`
	Type         string   `json:"type"`
	OrderIndex   int      `json:"order_index"`
	DecimalPlace *int     `json:"decimal_place"`
	MinValue     *float64 `json:"min_value"`
	MaxValue     *float64 `json:"max_value"`
	Unit         string   `json:"unit"`
}

// DiagnosticRequest links the ticket being created to a detected issue.
type DiagnosticRequest struct {
	InsightID   string `json:"insight_id" validate:"required"`
	InsightName string `json:"insight_name"`
}

// TicketResponse is the list/detail projection of a ticket.
type TicketResponse struct {
	ID             string `json:"id"`
	CustomerID     string `json:"customer_id"`
	SiteID         string `json:"site_id"`
	FloorCode      string `json:"floor_code,omitempty"`
	SequenceNumber string `json:"sequence_number"`

	Priority   int    `json:"priority"`
	Status     int    `json:"status"`
	StatusName string `json:"status_name,omitempty"`

	IssueType   string  `json:"issue_type"`
	IssueID     *string `json:"issue_id,omitempty"`
	IssueName   string  `json:"issue_name,omitempty"`
	InsightID   *string `json:"insight_id,omitempty"`
	InsightName string  `json:"insight_name,omitempty"`

	Summary     string `json:"summary,omitempty"`
	Description string `json:"description"`
	Cause       string `json:"cause,omitempty"`
	Solution    string `json:"solution,omitempty"`
	Notes       string `json:"notes,omitempty"`

	CategoryID *string `json:"category_id,omitempty"`
	Category   string  `json:"category,omitempty"`

	ReporterID      *string `json:"reporter_id,omitempty"`
	ReporterName    string  `json:"reporter_name,omitempty"`
	ReporterPhone   string  `json:"reporter_phone,omitempty"`
	ReporterEmail   string  `json:"reporter_email,omitempty"`
	ReporterCompany string  `json:"reporter_company,omitempty"`

	AssigneeType string  `json:"assignee_type"`
	AssigneeID   *string `json:"assignee_id,omitempty"`
	AssigneeName string  `json:"assignee_name"`

	CreatorID string     `json:"creator_id"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	CreatedDate  time.Time  `json:"created_date"`
	UpdatedDate  time.Time  `json:"updated_date"`
	StartedDate  *time.Time `json:"started_date,omitempty"`
	ResolvedDate *time.Time `json:"resolved_date,omitempty"`
	ClosedDate   *time.Time `json:"closed_date,omitempty"`

	SourceType string  `json:"source_type"`
	SourceID   *string `json:"source_id,omitempty"`
	SourceName string  `json:"source_name,omitempty"`

	ExternalID     string `json:"external_id,omitempty"`
	ExternalStatus string `json:"external_status,omitempty"`

	Occurrence  int     `json:"occurrence"`
	TemplateID  *string `json:"template_id,omitempty"`
	IsScheduled bool    `json:"is_scheduled"`

	TwinID      string `json:"twin_id,omitempty"`
	SpaceTwinID string `json:"space_twin_id,omitempty"`

	CustomProperties       map[string]string `json:"custom_properties,omitempty"`
	SearchablePropertyKeys []string          `json:"searchable_property_keys,omitempty"`
}

// TicketDetailResponse adds associations and the insight hint.
type TicketDetailResponse struct {
	TicketResponse
	Comments          []CommentResponse    `json:"comments"`
	Attachments       []AttachmentResponse `json:"attachments"`
	Tasks             []TaskResponse       `json:"tasks"`
	Diagnostics       []DiagnosticResponse `json:"diagnostics"`
	CanResolveInsight bool                 `json:"can_resolve_insight"`
}

// CommentResponse projection.
type CommentResponse struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	CreatorID   string    `json:"creator_id"`
	CreatorName string    `json:"creator_name,omitempty"`
	CreatedDate time.Time `json:"created_date"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Text        string `json:"text" validate:"required"`
	CreatorID   string `json:"creator_id" validate:"required"`
	CreatorName string `json:"creator_name"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StorageKey  string    `json:"storage_key"`
	CreatedDate time.Time `json:"created_date"`
}

// CreateAttachmentRequest payload.
type CreateAttachmentRequest struct {
	FileName    string `json:"file_name" validate:"required"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	StorageKey  string `json:"storage_key" validate:"required"`
}

// TaskResponse projection.
type TaskResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	IsCompleted  bool     `json:"is_completed"`
	OrderIndex   int      `json:"order_index"`
	NumberValue  *float64 `json:"number_value,omitempty"`
	Type         string   `json:"type,omitempty"`
	DecimalPlace *int     `json:"decimal_place,omitempty"`
	MinValue     *float64 `json:"min_value,omitempty"`
	MaxValue     *float64 `json:"max_value,omitempty"`
	Unit         string   `json:"unit,omitempty"`
}

// DiagnosticResponse projection.
type DiagnosticResponse struct {
	ID          string `json:"id"`
	InsightID   string `json:"insight_id"`
	InsightName string `json:"insight_name"`
}

// CompleteTaskRequest payload.
type CompleteTaskRequest struct {
	IsCompleted bool     `json:"is_completed"`
	NumberValue *float64 `json:"number_value"`
}

// ToCreateInput maps the request onto the workflow input.
func (r *CreateTicketRequest) ToCreateInput() service.TicketCreateInput {
	tasks := make([]service.TaskInput, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		tasks = append(tasks, service.TaskInput{
			Name:         t.Name,
			Type:         t.Type,
			OrderIndex:   t.OrderIndex,
			DecimalPlace: t.DecimalPlace,
			MinValue:     t.MinValue,
			MaxValue:     t.MaxValue,
			Unit:         t.Unit,
		})
	}
	diagnostics := make([]service.DiagnosticInput, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		diagnostics = append(diagnostics, service.DiagnosticInput{
			InsightID:   d.InsightID,
			InsightName: d.InsightName,
		})
	}
	return service.TicketCreateInput{
		CustomerID:                  r.CustomerID,
		FloorCode:                   r.FloorCode,
		SequenceNumberPrefix:        r.SequenceNumberPrefix,
		Priority:                    r.Priority,
		Status:                      r.Status,
		IssueType:                   domain.IssueType(r.IssueType),
		IssueID:                     r.IssueID,
		IssueName:                   r.IssueName,
		InsightID:                   r.InsightID,
		InsightName:                 r.InsightName,
		Summary:                     r.Summary,
		Description:                 r.Description,
		Cause:                       r.Cause,
		Solution:                    r.Solution,
		Notes:                       r.Notes,
		CategoryID:                  r.CategoryID,
		ReporterID:                  r.ReporterID,
		ReporterName:                r.ReporterName,
		ReporterPhone:               r.ReporterPhone,
		ReporterEmail:               r.ReporterEmail,
		ReporterCompany:             r.ReporterCompany,
		AssigneeType:                domain.AssigneeType(r.AssigneeType),
		AssigneeID:                  r.AssigneeID,
		AssigneeName:                r.AssigneeName,
		CreatorID:                   r.CreatorID,
		DueDate:                     r.DueDate,
		SourceType:                  domain.SourceType(r.SourceType),
		SourceID:                    r.SourceID,
		SourceName:                  r.SourceName,
		ExternalID:                  r.ExternalID,
		ExternalStatus:              r.ExternalStatus,
		ExternalMetadata:            r.ExternalMetadata,
		ExternalCreatedDate:         r.ExternalCreatedDate,
		ExternalUpdatedDate:         r.ExternalUpdatedDate,
		LastUpdatedByExternalSource: r.LastUpdatedByExternalSource,
		Occurrence:                  r.Occurrence,
		TemplateID:                  r.TemplateID,
		TwinID:                      r.TwinID,
		SpaceTwinID:                 r.SpaceTwinID,
		UniqueID:                    r.UniqueID,
		CustomProperties:            r.CustomProperties,
		SearchablePropertyKeys:      r.SearchablePropertyKeys,
		Tasks:                       tasks,
		Diagnostics:                 diagnostics,
	}
}

// ToUpdateInput maps the request onto the workflow input.
func (r *UpdateTicketRequest) ToUpdateInput() service.TicketUpdateInput {
	var assigneeType *domain.AssigneeType
	if r.AssigneeType != nil {
		at := domain.AssigneeType(*r.AssigneeType)
		assigneeType = &at
	}
	return service.TicketUpdateInput{
		Priority:                    r.Priority,
		Status:                      r.Status,
		FloorCode:                   r.FloorCode,
		Summary:                     r.Summary,
		Description:                 r.Description,
		Cause:                       r.Cause,
		Solution:                    r.Solution,
		Notes:                       r.Notes,
		CategoryID:                  r.CategoryID,
		ReporterID:                  r.ReporterID,
		ReporterName:                r.ReporterName,
		ReporterPhone:               r.ReporterPhone,
		ReporterEmail:               r.ReporterEmail,
		ReporterCompany:             r.ReporterCompany,
		AssigneeType:                assigneeType,
		AssigneeID:                  r.AssigneeID,
		AssigneeName:                r.AssigneeName,
		DueDate:                     r.DueDate,
		TwinID:                      r.TwinID,
		SpaceTwinID:                 r.SpaceTwinID,
		ExternalStatus:              r.ExternalStatus,
		ExternalMetadata:            r.ExternalMetadata,
		ExternalCreatedDate:         r.ExternalCreatedDate,
		ExternalUpdatedDate:         r.ExternalUpdatedDate,
		LastUpdatedByExternalSource: r.LastUpdatedByExternalSource,
		CustomProperties:            r.CustomProperties,
		SearchablePropertyKeys:      r.SearchablePropertyKeys,
		SourceType:                  domain.SourceType(r.SourceType),
		SourceID:                    r.SourceID,
		UpdaterID:                   r.UpdaterID,
	}
}

// FromTicket builds the list projection. statusName may be empty when the
// code is unconfigured.
func FromTicket(ticket *domain.Ticket, statusName string) TicketResponse {
	return TicketResponse{
		ID:                     ticket.ID,
		CustomerID:             ticket.CustomerID,
		SiteID:                 ticket.SiteID,
		FloorCode:              ticket.FloorCode,
		SequenceNumber:         ticket.SequenceNumber,
		Priority:               ticket.Priority,
		Status:                 ticket.Status,
		StatusName:             statusName,
		IssueType:              string(ticket.IssueType),
		IssueID:                ticket.IssueID,
		IssueName:              ticket.IssueName,
		InsightID:              ticket.InsightID,
		InsightName:            ticket.InsightName,
		Summary:                ticket.Summary,
		Description:            ticket.Description,
		Cause:                  ticket.Cause,
		Solution:               ticket.Solution,
		Notes:                  ticket.Notes,
		CategoryID:             ticket.CategoryID,
		Category:               ticket.Category,
		ReporterID:             ticket.ReporterID,
		ReporterName:           ticket.ReporterName,
		ReporterPhone:          ticket.ReporterPhone,
		ReporterEmail:          ticket.ReporterEmail,
		ReporterCompany:        ticket.ReporterCompany,
		AssigneeType:           string(ticket.AssigneeType),
		AssigneeID:             ticket.AssigneeID,
		AssigneeName:           ticket.DisplayAssigneeName(),
		CreatorID:              ticket.CreatorID,
		DueDate:                ticket.DueDate,
		CreatedDate:            ticket.ComputedCreatedDate(),
		UpdatedDate:            ticket.ComputedUpdatedDate(),
		StartedDate:            ticket.StartedDate,
		ResolvedDate:           ticket.ResolvedDate,
		ClosedDate:             ticket.ClosedDate,
		SourceType:             string(ticket.SourceType),
		SourceID:               ticket.SourceID,
		SourceName:             ticket.SourceName,
		ExternalID:             ticket.ExternalID,
		ExternalStatus:         ticket.ExternalStatus,
		Occurrence:             ticket.Occurrence,
		TemplateID:             ticket.TemplateID,
		IsScheduled:            ticket.IsScheduled(),
		TwinID:                 ticket.TwinID,
		SpaceTwinID:            ticket.SpaceTwinID,
		CustomProperties:       ticket.CustomProperties,
		SearchablePropertyKeys: ticket.ExtendableSearchablePropertyKeys,
	}
}

// FromTicketDetail builds the detail projection.
func FromTicketDetail(detail *service.TicketDetail, statusName string) TicketDetailResponse {
	ticket := detail.Ticket
	resp := TicketDetailResponse{
		TicketResponse:    FromTicket(ticket, statusName),
		Comments:          make([]CommentResponse, 0, len(ticket.Comments)),
		Attachments:       make([]AttachmentResponse, 0, len(ticket.Attachments)),
		Tasks:             make([]TaskResponse, 0, len(ticket.Tasks)),
		Diagnostics:       make([]DiagnosticResponse, 0, len(ticket.Diagnostics)),
		CanResolveInsight: detail.CanResolveInsight,
	}
	for _, c := range ticket.Comments {
		resp.Comments = append(resp.Comments, FromComment(&c))
	}
	for _, a := range ticket.Attachments {
		resp.Attachments = append(resp.Attachments, FromAttachment(&a))
	}
	for _, t := range ticket.Tasks {
		resp.Tasks = append(resp.Tasks, FromTask(&t))
	}
	for _, d := range ticket.Diagnostics {
		resp.Diagnostics = append(resp.Diagnostics, DiagnosticResponse{
			ID:          d.ID,
			InsightID:   d.InsightID,
			InsightName: d.InsightName,
		})
	}
	return resp
}

// FromComment projection.
func FromComment(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:          c.ID,
		Text:        c.Text,
		CreatorID:   c.CreatorID,
		CreatorName: c.CreatorName,
		CreatedDate: c.CreatedDate,
	}
}

// FromAttachment projection.
func FromAttachment(a *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		StorageKey:  a.StorageKey,
		CreatedDate: a.CreatedDate,
	}
}

// FromTask projection.
func FromTask(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		Name:         t.Name,
		IsCompleted:  t.IsCompleted,
		OrderIndex:   t.OrderIndex,
		NumberValue:  t.NumberValue,
		Type:         t.Type,
		DecimalPlace: t.DecimalPlace,
		MinValue:     t.MinValue,
		MaxValue:     t.MaxValue,
		Unit:         t.Unit,
	}
}
