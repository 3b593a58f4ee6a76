package service

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

const auditTableName = "ticket"

// Provenance identifies the origin of a ticket mutation for audit rows.
type Provenance struct {
	SourceType domain.SourceType
	SourceID   *string
	CreatorID  string
}

// AuditRecorder computes the field-level diff of a ticket mutation as
// append-only audit rows. It is pure: no clock, no storage.
type AuditRecorder struct{}

// trackedColumn pairs the persisted column name with its stringifier. The
// order is fixed; consumers compare row sets against it.
type trackedColumn struct {
	name  string
	value func(*domain.Ticket) string
}

var trackedColumns = []trackedColumn{
	{"Status", func(t *domain.Ticket) string { return strconv.Itoa(t.Status) }},
	{"AssigneeId", func(t *domain.Ticket) string { return stringOrEmpty(t.AssigneeID) }},
	{"AssigneeName", func(t *domain.Ticket) string { return t.AssigneeName }},
	{"AssigneeType", func(t *domain.Ticket) string { return string(t.AssigneeType) }},
	{"Summary", func(t *domain.Ticket) string { return t.Summary }},
	{"Description", func(t *domain.Ticket) string { return t.Description }},
	{"DueDate", func(t *domain.Ticket) string { return timeOrEmpty(t.DueDate) }},
	{"Priority", func(t *domain.Ticket) string { return strconv.Itoa(t.Priority) }},
}

// Record emits audit rows for a create (before == nil) or update. Tickets
// from non-audited origins produce no rows at all; eligibility follows the
// ticket's own SourceType, not the caller's provenance, so a
// machine-originated ticket stays unaudited no matter which surface touches
// it. Every row in one batch shares the caller-captured timestamp.
func (AuditRecorder) Record(before, after *domain.Ticket, src Provenance, now time.Time) []domain.AuditTrail {
	if !domain.AuditedSourceTypes[after.SourceType] {
		return nil
	}

	rowSource := src.SourceType
	if rowSource == "" {
		rowSource = after.SourceType
	}

	sourceID := src.SourceID
	if sourceID == nil && src.CreatorID != "" {
		creatorID := src.CreatorID
		sourceID = &creatorID
	}

	var rows []domain.AuditTrail
	for _, col := range trackedColumns {
		newValue := col.value(after)
		if before == nil {
			rows = append(rows, auditRow(after.ID, col.name, domain.OperationAdded, "", newValue, sourceID, rowSource, now))
			continue
		}
		oldValue := col.value(before)
		if oldValue == newValue {
			continue
		}
		rows = append(rows, auditRow(after.ID, col.name, domain.OperationModified, oldValue, newValue, sourceID, rowSource, now))
	}
	return rows
}

func auditRow(recordID, column string, op domain.OperationType, oldValue, newValue string, sourceID *string, sourceType domain.SourceType, now time.Time) domain.AuditTrail {
	return domain.AuditTrail{
		ID:            uuid.NewString(),
		RecordID:      recordID,
		TableName:     auditTableName,
		ColumnName:    column,
		OperationType: op,
		OldValue:      oldValue,
		NewValue:      newValue,
		SourceID:      sourceID,
		SourceType:    sourceType,
		Timestamp:     now,
	}
}

func stringOrEmpty(val *string) string {
	if val == nil {
		return ""
	}
	return *val
}

func timeOrEmpty(val *time.Time) string {
	if val == nil {
		return ""
	}
	return val.UTC().Format(time.RFC3339)
}
