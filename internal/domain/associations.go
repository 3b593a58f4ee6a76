package domain

import "time"

// Comment is an owned ticket association, cascade-deleted with the ticket.
type Comment struct {
	ID          string
	TicketID    string
	Text        string
	CreatorID   string
	CreatorName string
	CreatedDate time.Time
}

// Attachment holds file metadata for a ticket; blob storage is external.
type Attachment struct {
	ID          string
	TicketID    string
	FileName    string
	ContentType string
	SizeBytes   int64
	StorageKey  string
	CreatedDate time.Time
}

// Diagnostic links a ticket to a detected-issue record it was raised from.
type Diagnostic struct {
	ID          string
	TicketID    string
	InsightID   string
	InsightName string
}

// Task is a checklist item on a ticket.
type Task struct {
	ID           string
	TicketID     string
	Name         string
	IsCompleted  bool
	OrderIndex   int
	NumberValue  *float64
	Type         string
	DecimalPlace *int
	MinValue     *float64
	MaxValue     *float64
	Unit         string
}
