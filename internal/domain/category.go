package domain

// Category is a per-site ticket category.
type Category struct {
	ID     string
	SiteID string
	Name   string
}
