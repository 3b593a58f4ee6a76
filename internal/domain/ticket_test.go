package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayAssigneeName(t *testing.T) {
	ticket := &Ticket{AssigneeType: AssigneeTypeNoAssignee, AssigneeName: "stale"}
	assert.Equal(t, "Unassigned", ticket.DisplayAssigneeName())

	ticket = &Ticket{AssigneeType: AssigneeTypeCustomerUser, AssigneeName: "Sam Doe"}
	assert.Equal(t, "Sam Doe", ticket.DisplayAssigneeName())
}

func TestComputedDatesPreferExternalSource(t *testing.T) {
	internal := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	external := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)

	ticket := &Ticket{CreatedDate: internal, UpdatedDate: internal}
	assert.Equal(t, internal, ticket.ComputedCreatedDate())
	assert.Equal(t, internal, ticket.ComputedUpdatedDate())

	ticket.ExternalCreatedDate = &external
	ticket.ExternalUpdatedDate = &external
	// external dates only apply once the external source owns the record
	assert.Equal(t, internal, ticket.ComputedCreatedDate())

	ticket.LastUpdatedByExternalSource = true
	assert.Equal(t, external, ticket.ComputedCreatedDate())
	assert.Equal(t, external, ticket.ComputedUpdatedDate())
}

func TestIsScheduled(t *testing.T) {
	assert.False(t, (&Ticket{}).IsScheduled())
	assert.True(t, (&Ticket{Occurrence: 2}).IsScheduled())
}
