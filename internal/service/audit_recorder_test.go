package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

func auditTicket() *domain.Ticket {
	assigneeID := "user-1"
	due := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Ticket{
		ID:           "ticket-1",
		Status:       domain.StatusOpen,
		Priority:     domain.PriorityHigh,
		Summary:      "Broken AHU",
		Description:  "Air handler not starting",
		AssigneeType: domain.AssigneeTypeCustomerUser,
		AssigneeID:   &assigneeID,
		AssigneeName: "Dana Fixit",
		DueDate:      &due,
		SourceType:   domain.SourceTypePlatform,
	}
}

func TestRecordCreateEmitsAllTrackedColumns(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rows := AuditRecorder{}.Record(nil, auditTicket(), Provenance{
		SourceType: domain.SourceTypePlatform,
		CreatorID:  "creator-1",
	}, now)

	require.Len(t, rows, 8)
	columns := make([]string, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, row.ColumnName)
		assert.Equal(t, domain.OperationAdded, row.OperationType)
		assert.Equal(t, "ticket", row.TableName)
		assert.Equal(t, "ticket-1", row.RecordID)
		assert.Empty(t, row.OldValue)
		assert.Equal(t, now, row.Timestamp)
		require.NotNil(t, row.SourceID)
		assert.Equal(t, "creator-1", *row.SourceID)
	}
	assert.Equal(t, []string{
		"Status", "AssigneeId", "AssigneeName", "AssigneeType",
		"Summary", "Description", "DueDate", "Priority",
	}, columns)
}

func TestRecordUpdateEmitsChangedColumnsOnly(t *testing.T) {
	before := auditTicket()
	after := *before
	after.Status = domain.StatusInProgress
	after.Summary = "Broken AHU on L3"

	rows := AuditRecorder{}.Record(before, &after, Provenance{
		SourceType: domain.SourceTypePlatform,
		CreatorID:  "creator-1",
	}, time.Now())

	require.Len(t, rows, 2)
	assert.Equal(t, "Status", rows[0].ColumnName)
	assert.Equal(t, domain.OperationModified, rows[0].OperationType)
	assert.Equal(t, "5", rows[0].OldValue)
	assert.Equal(t, "15", rows[0].NewValue)
	assert.Equal(t, "Summary", rows[1].ColumnName)
	assert.Equal(t, "Broken AHU", rows[1].OldValue)
	assert.Equal(t, "Broken AHU on L3", rows[1].NewValue)
}

func TestRecordNonAuditedTicketEmitsNothing(t *testing.T) {
	for _, sourceType := range []domain.SourceType{domain.SourceTypeApp, domain.SourceTypeDynamics} {
		ticket := auditTicket()
		ticket.SourceType = sourceType

		// neither create nor update on a machine-originated ticket is
		// audited, regardless of the caller's provenance
		rows := AuditRecorder{}.Record(nil, ticket, Provenance{
			SourceType: domain.SourceTypePlatform,
			CreatorID:  "creator-1",
		}, time.Now())
		assert.Empty(t, rows, string(sourceType))

		after := *ticket
		after.Summary = "changed"
		rows = AuditRecorder{}.Record(ticket, &after, Provenance{
			SourceType: domain.SourceTypePlatform,
			CreatorID:  "creator-1",
		}, time.Now())
		assert.Empty(t, rows, string(sourceType))
	}
}

func TestRecordMappedTicketIsAudited(t *testing.T) {
	sourceID := "connector-7"
	ticket := auditTicket()
	ticket.SourceType = domain.SourceTypeMapped

	rows := AuditRecorder{}.Record(nil, ticket, Provenance{
		SourceType: domain.SourceTypeMapped,
		SourceID:   &sourceID,
		CreatorID:  "creator-1",
	}, time.Now())

	require.Len(t, rows, 8)
	require.NotNil(t, rows[0].SourceID)
	assert.Equal(t, "connector-7", *rows[0].SourceID)
	assert.Equal(t, domain.SourceTypeMapped, rows[0].SourceType)
}

func TestRecordEmptyProvenanceFallsBackToTicketSource(t *testing.T) {
	before := auditTicket()
	after := *before
	after.Summary = "Broken AHU on L3"

	rows := AuditRecorder{}.Record(before, &after, Provenance{CreatorID: "creator-1"}, time.Now())
	require.Len(t, rows, 1)
	assert.Equal(t, domain.OperationModified, rows[0].OperationType)
	assert.Equal(t, domain.SourceTypePlatform, rows[0].SourceType)
}

func TestRecordNoChangesEmitsNothing(t *testing.T) {
	before := auditTicket()
	after := *before
	after.Notes = "notes are not tracked"

	rows := AuditRecorder{}.Record(before, &after, Provenance{
		SourceType: domain.SourceTypePlatform,
		CreatorID:  "creator-1",
	}, time.Now())
	assert.Empty(t, rows)
}

func TestRecordDueDateFormatsRFC3339(t *testing.T) {
	before := auditTicket()
	after := *before
	due := time.Date(2025, 7, 1, 8, 30, 0, 0, time.UTC)
	after.DueDate = &due

	rows := AuditRecorder{}.Record(before, &after, Provenance{
		SourceType: domain.SourceTypePlatform,
		CreatorID:  "creator-1",
	}, time.Now())

	require.Len(t, rows, 1)
	assert.Equal(t, "DueDate", rows[0].ColumnName)
	assert.Equal(t, "2025-06-01T12:00:00Z", rows[0].OldValue)
	assert.Equal(t, "2025-07-01T08:30:00Z", rows[0].NewValue)
}

func TestRecordClearedAssigneeWritesEmptyValue(t *testing.T) {
	before := auditTicket()
	after := *before
	after.AssigneeType = domain.AssigneeTypeNoAssignee
	after.AssigneeID = nil
	after.AssigneeName = ""

	rows := AuditRecorder{}.Record(before, &after, Provenance{
		SourceType: domain.SourceTypePlatform,
		CreatorID:  "creator-1",
	}, time.Now())

	require.Len(t, rows, 3)
	assert.Equal(t, "AssigneeId", rows[0].ColumnName)
	assert.Equal(t, "user-1", rows[0].OldValue)
	assert.Empty(t, rows[0].NewValue)
}
