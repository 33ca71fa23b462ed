package entity

// Candidate is a raw discovery result, consumed by the relevance filter
// before any enrichment happens.
type Candidate struct {
	Name        string  `json:"name"`
	Website     *string `json:"website,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Description *string `json:"description,omitempty"`
	Source      string  `json:"source"`
}

// WebsiteOrEmpty returns the website value or "" when unset.
func (c Candidate) WebsiteOrEmpty() string {
	if c.Website == nil {
		return ""
	}
	return *c.Website
}
