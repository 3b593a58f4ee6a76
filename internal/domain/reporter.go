package domain

// Reporter is the contact that raised a ticket. Ticket writes that supply
// contact details with no exactly matching reporter create a new row; there
// is no fuzzy merging.
type Reporter struct {
	ID         string
	CustomerID string
	SiteID     string
	Name       string
	Phone      string
	Email      string
	Company    string
}

// Matches reports exact contact-field equality, the only criterion under
// which a ticket write reuses an existing reporter.
func (r *Reporter) Matches(name, phone, email, company string) bool {
	return r.Name == name && r.Phone == phone && r.Email == email && r.Company == company
}
