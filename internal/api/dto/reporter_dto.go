package dto

import (
	"github.com/spec-kit/twin-workflow-service/internal/domain"
)

// CreateReporterRequest payload.
type CreateReporterRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone"`
	Email      string `json:"email" validate:"omitempty,email"`
	Company    string `json:"company"`
}

// ReporterResponse projection.
type ReporterResponse struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	SiteID     string `json:"site_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Company    string `json:"company,omitempty"`
}

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CategoryResponse projection.
type CategoryResponse struct {
	ID     string `json:"id"`
	SiteID string `json:"site_id"`
	Name   string `json:"name"`
}

// FromReporter projection.
func FromReporter(r *domain.Reporter) ReporterResponse {
	return ReporterResponse{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		SiteID:     r.SiteID,
		Name:       r.Name,
		Phone:      r.Phone,
		Email:      r.Email,
		Company:    r.Company,
	}
}

// FromReporters projection.
func FromReporters(rows []domain.Reporter) []ReporterResponse {
	out := make([]ReporterResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromReporter(&rows[i]))
	}
	return out
}

// FromCategory projection.
func FromCategory(c *domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, SiteID: c.SiteID, Name: c.Name}
}

// FromCategories projection.
func FromCategories(rows []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromCategory(&rows[i]))
	}
	return out
}
