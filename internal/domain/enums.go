package domain

// SourceType identifies the system a ticket originated from.
type SourceType string

const (
	SourceTypePlatform SourceType = "Platform"
	SourceTypeApp      SourceType = "App"
	SourceTypeDynamics SourceType = "Dynamics"
	SourceTypeMapped   SourceType = "Mapped"
)

// AuditedSourceTypes lists origins whose mutations are audit-tracked.
// Machine-originated tickets (Dynamics, App) are excluded entirely.
var AuditedSourceTypes = map[SourceType]bool{
	SourceTypePlatform: true,
	SourceTypeMapped:   true,
}

// AssigneeType identifies who a ticket is assigned to.
type AssigneeType string

const (
	AssigneeTypeNoAssignee   AssigneeType = "NoAssignee"
	AssigneeTypeCustomerUser AssigneeType = "CustomerUser"
	AssigneeTypeWorkGroup    AssigneeType = "WorkGroup"
)

// IssueType classifies the subject a ticket was raised against.
type IssueType string

const (
	IssueTypeNoIssue   IssueType = "NoIssue"
	IssueTypeEquipment IssueType = "Equipment"
	IssueTypeAsset     IssueType = "Asset"
)

// Tab buckets status codes for aggregate counting.
type Tab string

const (
	TabOpen     Tab = "Open"
	TabResolved Tab = "Resolved"
	TabClosed   Tab = "Closed"
)

// Default status codes. Meaning is customer-configurable through the
// ticket_statuses table; these are the globally seeded values.
const (
	StatusOpen                = 5
	StatusReassign            = 10
	StatusInProgress          = 15
	StatusLimitedAvailability = 20
	StatusResolved            = 25
	StatusClosed              = 30
)

// Priority bounds. 1 = Urgent, 4 = Low; numerically smaller is more urgent.
const (
	PriorityUrgent = 1
	PriorityHigh   = 2
	PriorityMedium = 3
	PriorityLow    = 4
)

var defaultStatusNames = map[int]string{
	StatusOpen:                "Open",
	StatusReassign:            "Reassign",
	StatusInProgress:          "InProgress",
	StatusLimitedAvailability: "LimitedAvailability",
	StatusResolved:            "Resolved",
	StatusClosed:              "Closed",
}

// StatusName returns the display name for a globally seeded status code,
// falling back to the numeric form for unknown codes.
func StatusName(code int) string {
	if name, ok := defaultStatusNames[code]; ok {
		return name
	}
	return ""
}
