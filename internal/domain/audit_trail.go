package domain

import "time"

// OperationType marks whether an audit row records a new or changed value.
type OperationType string

const (
	OperationAdded    OperationType = "Added"
	OperationModified OperationType = "Modified"
)

// AuditTrail is an append-only record of a single tracked-column change.
// Rows are created alongside the ticket mutation and never updated.
type AuditTrail struct {
	ID            string
	RecordID      string
	TableName     string
	ColumnName    string
	OperationType OperationType
	OldValue      string
	NewValue      string
	SourceID      *string
	SourceType    SourceType
	Timestamp     time.Time
}
