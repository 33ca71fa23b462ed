package entity

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle statuses of a stored prospect.
const (
	StatusNew       = "new"
	StatusProcessed = "processed"
	StatusContacted = "contacted"
)

// Email verification statuses as reported by the verification adapter.
// A nil Prospect.EmailStatus means verification was never attempted,
// which is distinct from StatusUnknown (attempted but inconclusive).
const (
	EmailStatusValid    = "valid"
	EmailStatusInvalid  = "invalid"
	EmailStatusCatchAll = "catch-all"
	EmailStatusUnknown  = "unknown"
)

// Prospect is a Candidate that passed filtering, enriched with contact
// and firmographic data, scored and message-generated.
type Prospect struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Website          *string    `json:"website,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Source           string     `json:"source"`
	Email            *string    `json:"email,omitempty"`
	EmailStatus      *string    `json:"email_status,omitempty"`
	EmailSubStatus   *string    `json:"email_sub_status,omitempty"`
	EmailSuggestion  *string    `json:"email_suggestion,omitempty"`
	ContactName      *string    `json:"contact_name,omitempty"`
	ContactRole      *string    `json:"contact_role,omitempty"`
	LinkedInURL      *string    `json:"linkedin_url,omitempty"`
	Address          *string    `json:"address,omitempty"`
	CompanySize      *string    `json:"company_size,omitempty"`
	Industry         *string    `json:"industry,omitempty"`
	Revenue          *string    `json:"revenue,omitempty"`
	Rating           *float64   `json:"rating,omitempty"`
	Reviews          *int       `json:"reviews,omitempty"`
	Technologies     []string   `json:"technologies,omitempty"`
	Score            int        `json:"score"`
	TemplateID       *string    `json:"template_id,omitempty"`
	Message          string     `json:"message"`
	HighlightedPoint string     `json:"highlighted_point"`
	Reason           string     `json:"reason"`
	Proposal         string     `json:"proposal"`
	Status           string     `json:"status"`
	AddedAt          time.Time  `json:"added_at"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
}

// FromCandidate seeds a Prospect with the discovery data.
func FromCandidate(c Candidate) *Prospect {
	return &Prospect{
		Name:        c.Name,
		Website:     c.Website,
		Phone:       c.Phone,
		Description: c.Description,
		Source:      c.Source,
		Status:      StatusNew,
	}
}

// HasContact reports whether at least one outreach channel exists.
// A prospect without any is discarded, never persisted.
func (p *Prospect) HasContact() bool {
	return (p.Email != nil && *p.Email != "") || (p.Phone != nil && *p.Phone != "")
}

// WebsiteOrEmpty returns the website value or "" when unset.
func (p *Prospect) WebsiteOrEmpty() string {
	if p.Website == nil {
		return ""
	}
	return *p.Website
}
