package domain

import "time"

// Ticket is the central work-order aggregate. A ticket belongs to a site,
// optionally references an insight (detected issue) and a twin (asset/space
// in the external twin graph).
type Ticket struct {
	ID             string
	CustomerID     string
	SiteID         string
	FloorCode      string
	SequenceNumber string

	Priority int
	Status   int

	IssueType   IssueType
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
	Category   string

	ReporterID      *string
	ReporterName    string
	ReporterPhone   string
	ReporterEmail   string
	ReporterCompany string

	AssigneeType AssigneeType
	AssigneeID   *string
	AssigneeName string

	CreatorID string

	DueDate      *time.Time
	CreatedDate  time.Time
	UpdatedDate  time.Time
	StartedDate  *time.Time
	ResolvedDate *time.Time
	ClosedDate   *time.Time

	SourceType SourceType
	SourceID   *string
	SourceName string

	ExternalID                  string
	ExternalStatus              string
	ExternalMetadata            string
	ExternalCreatedDate         *time.Time
	ExternalUpdatedDate         *time.Time
	LastUpdatedByExternalSource bool

	// Occurrence > 0 marks a scheduled (recurrence-generated) ticket.
	Occurrence  int
	TemplateID  *string
	TwinID      string
	SpaceTwinID string

	CustomProperties                 map[string]string
	ExtendableSearchablePropertyKeys []string

	Comments    []Comment
	Attachments []Attachment
	Tasks       []Task
	Diagnostics []Diagnostic
}

// DisplayAssigneeName is the name shown to clients; unassigned tickets
// render as "Unassigned" rather than an empty string.
func (t *Ticket) DisplayAssigneeName() string {
	if t.AssigneeType == AssigneeTypeNoAssignee {
		return "Unassigned"
	}
	return t.AssigneeName
}

// ComputedCreatedDate prefers the externally supplied creation time when the
// ticket was last written by an external integration.
func (t *Ticket) ComputedCreatedDate() time.Time {
	if t.LastUpdatedByExternalSource && t.ExternalCreatedDate != nil {
		return *t.ExternalCreatedDate
	}
	return t.CreatedDate
}

// ComputedUpdatedDate mirrors ComputedCreatedDate for the update timestamp.
func (t *Ticket) ComputedUpdatedDate() time.Time {
	if t.LastUpdatedByExternalSource && t.ExternalUpdatedDate != nil {
		return *t.ExternalUpdatedDate
	}
	return t.UpdatedDate
}

// IsScheduled reports whether the ticket was generated from a recurrence.
func (t *Ticket) IsScheduled() bool {
	return t.Occurrence > 0
}
