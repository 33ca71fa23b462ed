// Package enrich merges data from the enrichment sources into a
// prospect. Sources run in a fixed order and only ever fill fields
// that are still empty, so the most trusted source wins.
package enrich

import (
	"context"
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"

	"github.com/octobees/prospect-agent/internal/entity"
)

// OrganizationEnricher resolves firmographic data for a company.
type OrganizationEnricher interface {
	EnrichOrganization(ctx context.Context, name, domain string) (*entity.CompanyInfo, error)
}

// EmailFinder resolves an email address from a company website, and
// names the contact behind it when the source knows.
type EmailFinder interface {
	FindEmail(ctx context.Context, website string) (*string, *entity.ExecInfo, error)
}

// LocalLookup fetches the local business listing for a company.
type LocalLookup interface {
	Lookup(ctx context.Context, name, location string) (*entity.LocalBusiness, error)
}

// EmailVerifier checks whether an address is deliverable.
type EmailVerifier interface {
	Verify(ctx context.Context, email string) (*entity.Verification, error)
}

// TechDetector fingerprints the stack behind a website.
type TechDetector interface {
	Detect(ctx context.Context, website string) ([]string, error)
}

// LinkedInFinder locates the company LinkedIn page.
type LinkedInFinder interface {
	FindLinkedIn(ctx context.Context, company, location string) (*string, error)
}

// Merger coordinates the enrichment sources. Any of them may be nil
// when the corresponding API is not configured.
type Merger struct {
	organizations OrganizationEnricher
	emails        EmailFinder
	local         LocalLookup
	verifier      EmailVerifier
	techs         TechDetector
	linkedin      LinkedInFinder

	location    string
	phoneRegion string
	logger      *zap.Logger
}

// Sources bundles the enrichment dependencies.
type Sources struct {
	Organizations OrganizationEnricher
	Emails        EmailFinder
	Local         LocalLookup
	Verifier      EmailVerifier
	Techs         TechDetector
	LinkedIn      LinkedInFinder
}

// NewMerger builds a merger for the given campaign location.
func NewMerger(sources Sources, location, phoneRegion string, logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if phoneRegion == "" {
		phoneRegion = "CH"
	}
	return &Merger{
		organizations: sources.Organizations,
		emails:        sources.Emails,
		local:         sources.Local,
		verifier:      sources.Verifier,
		techs:         sources.Techs,
		linkedin:      sources.LinkedIn,
		location:      location,
		phoneRegion:   strings.ToUpper(phoneRegion),
		logger:        logger,
	}
}

// Enrich runs every configured source against the prospect. A source
// failure is logged and skipped; it never aborts the remaining steps.
func (m *Merger) Enrich(ctx context.Context, p *entity.Prospect) {
	m.normalizePhone(p)

	m.applyOrganization(ctx, p)
	m.applyEmail(ctx, p)
	m.applyLocal(ctx, p)
	m.applyVerification(ctx, p)
	m.applyTechnologies(ctx, p)
	m.applyLinkedIn(ctx, p)
}

func (m *Merger) applyOrganization(ctx context.Context, p *entity.Prospect) {
	if m.organizations == nil {
		return
	}
	info, err := m.organizations.EnrichOrganization(ctx, p.Name, domainOf(p.WebsiteOrEmpty()))
	if err != nil {
		m.logger.Warn("organization enrichment failed", zap.String("prospect", p.Name), zap.Error(err))
		return
	}
	if info == nil {
		return
	}
	fillString(&p.Website, info.Website)
	fillString(&p.Phone, m.normalized(info.Phone))
	fillString(&p.LinkedInURL, info.LinkedInURL)
	fillString(&p.CompanySize, info.Size)
	fillString(&p.Industry, info.Industry)
	fillString(&p.Revenue, info.Revenue)
	fillString(&p.Address, info.Address)
}

// applyEmail only runs when there is a website to anchor the search
// on. Guessing an address without one is noise.
func (m *Merger) applyEmail(ctx context.Context, p *entity.Prospect) {
	if m.emails == nil || hasValue(p.Email) {
		return
	}
	website := p.WebsiteOrEmpty()
	if website == "" {
		return
	}
	email, exec, err := m.emails.FindEmail(ctx, website)
	if err != nil {
		m.logger.Warn("email lookup failed", zap.String("prospect", p.Name), zap.Error(err))
		return
	}
	fillString(&p.Email, email)
	if exec != nil {
		fillString(&p.ContactName, &exec.Name)
		if exec.Title != "" {
			fillString(&p.ContactRole, &exec.Title)
		}
	}
}

// applyLocal runs only while the phone is still missing; the listing
// backfills address, rating and review count on the same occasion.
func (m *Merger) applyLocal(ctx context.Context, p *entity.Prospect) {
	if m.local == nil || hasValue(p.Phone) {
		return
	}
	business, err := m.local.Lookup(ctx, p.Name, m.location)
	if err != nil {
		m.logger.Warn("local lookup failed", zap.String("prospect", p.Name), zap.Error(err))
		return
	}
	if business == nil {
		return
	}
	fillString(&p.Phone, m.normalized(business.Phone))
	fillString(&p.Address, business.Address)
	fillString(&p.Website, business.Website)
	if p.Rating == nil && business.Rating != nil {
		p.Rating = business.Rating
	}
	if p.Reviews == nil && business.Reviews != nil {
		p.Reviews = business.Reviews
	}
}

// applyVerification runs only when an email was found. A verifier
// failure downgrades the status to unknown instead of dropping the
// address.
func (m *Merger) applyVerification(ctx context.Context, p *entity.Prospect) {
	if m.verifier == nil || !hasValue(p.Email) {
		return
	}
	verification, err := m.verifier.Verify(ctx, *p.Email)
	if err != nil {
		m.logger.Warn("email verification failed", zap.String("prospect", p.Name), zap.Error(err))
		status := entity.EmailStatusUnknown
		p.EmailStatus = &status
		return
	}
	status := verification.Status
	p.EmailStatus = &status
	if verification.SubStatus != "" {
		sub := verification.SubStatus
		p.EmailSubStatus = &sub
	}
	p.EmailSuggestion = verification.Suggestion
}

func (m *Merger) applyTechnologies(ctx context.Context, p *entity.Prospect) {
	if m.techs == nil || len(p.Technologies) > 0 {
		return
	}
	website := p.WebsiteOrEmpty()
	if website == "" {
		return
	}
	techs, err := m.techs.Detect(ctx, website)
	if err != nil {
		m.logger.Debug("technology detection failed", zap.String("prospect", p.Name), zap.Error(err))
		return
	}
	p.Technologies = techs
}

func (m *Merger) applyLinkedIn(ctx context.Context, p *entity.Prospect) {
	if m.linkedin == nil || hasValue(p.LinkedInURL) {
		return
	}
	link, err := m.linkedin.FindLinkedIn(ctx, p.Name, m.location)
	if err != nil {
		m.logger.Warn("linkedin lookup failed", zap.String("prospect", p.Name), zap.Error(err))
		return
	}
	fillString(&p.LinkedInURL, link)
}

// normalizePhone formats the discovery phone E.164 and drops it when
// it does not validate.
func (m *Merger) normalizePhone(p *entity.Prospect) {
	if p.Phone == nil {
		return
	}
	p.Phone = m.normalized(p.Phone)
}

func (m *Merger) normalized(phone *string) *string {
	if phone == nil || strings.TrimSpace(*phone) == "" {
		return nil
	}
	number, err := phonenumbers.Parse(strings.TrimSpace(*phone), m.phoneRegion)
	if err != nil {
		return nil
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return nil
	}
	formatted := phonenumbers.Format(number, phonenumbers.E164)
	return &formatted
}

func fillString(dst **string, src *string) {
	if hasValue(*dst) {
		return
	}
	if src != nil && strings.TrimSpace(*src) != "" {
		value := strings.TrimSpace(*src)
		*dst = &value
	}
}

func hasValue(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func domainOf(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
}
