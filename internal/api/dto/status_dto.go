package dto

import (
	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

// UpsertStatusRequest is one status row in the customer override payload.
type UpsertStatusRequest struct {
	StatusCode int    `json:"status_code" validate:"required"`
	Status     string `json:"status" validate:"required"`
	Tab        string `json:"tab" validate:"required"`
}

// UpsertStatusesRequest payload.
type UpsertStatusesRequest struct {
	Statuses []UpsertStatusRequest `json:"statuses" validate:"required,min=1,dive"`
}

// StatusResponse projection.
type StatusResponse struct {
	CustomerID *string `json:"customer_id,omitempty"`
	StatusCode int     `json:"status_code"`
	Status     string  `json:"status"`
	Tab        string  `json:"tab"`
}

// ToStatuses maps the request onto domain rows for the customer.
func (r *UpsertStatusesRequest) ToStatuses(customerID string) []domain.TicketStatus {
	rows := make([]domain.TicketStatus, 0, len(r.Statuses))
	for _, s := range r.Statuses {
		id := customerID
		rows = append(rows, domain.TicketStatus{
			CustomerID: &id,
			StatusCode: s.StatusCode,
			Status:     s.Status,
			Tab:        domain.Tab(s.Tab),
		})
	}
	return rows
}

// FromStatuses projection.
func FromStatuses(rows []domain.TicketStatus) []StatusResponse {
	out := make([]StatusResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, StatusResponse{
			CustomerID: row.CustomerID,
			StatusCode: row.StatusCode,
			Status:     row.Status,
			Tab:        string(row.Tab),
		})
	}
	return out
}
