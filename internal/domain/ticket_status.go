package domain

// TicketStatus maps a numeric status code to a display name and a tab for a
// customer. Rows with an empty CustomerID are the global defaults; customer
// lookups fall back to them per status code.
type TicketStatus struct {
	CustomerID *string
	StatusCode int
	Status     string
	Tab        Tab
}

// StatusTransition is an allow-list entry for the status state machine.
// The list is only consulted when the external-integration flag is enabled.
type StatusTransition struct {
	FromStatus int
	ToStatus   int
}

// StatusConfig is the per-request view of the status tables for one
// customer: code → row after global fallback has been applied.
type StatusConfig struct {
	Statuses    map[int]TicketStatus
	Transitions map[StatusTransition]bool
}

// Name returns the display name for a code, empty when unconfigured.
func (c *StatusConfig) Name(code int) string {
	if row, ok := c.Statuses[code]; ok {
		return row.Status
	}
	return ""
}

// TabOf returns the tab for a code; unconfigured codes count as Open so new
// statuses never silently vanish from open counts.
func (c *StatusConfig) TabOf(code int) Tab {
	if row, ok := c.Statuses[code]; ok {
		return row.Tab
	}
	return TabOpen
}

// CodesInTab collects the status codes mapped to the given tab.
func (c *StatusConfig) CodesInTab(tab Tab) []int {
	var codes []int
	for code, row := range c.Statuses {
		if row.Tab == tab {
			codes = append(codes, code)
		}
	}
	return codes
}

// Allows reports whether the transition appears in the allow-list.
func (c *StatusConfig) Allows(from, to int) bool {
	return c.Transitions[StatusTransition{FromStatus: from, ToStatus: to}]
}
