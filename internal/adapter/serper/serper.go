// Package serper wraps the serper.dev Google Search API used for web
// discovery and LinkedIn profile lookups.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	"github.com/octobees/prospect-agent/internal/entity"
)

const (
	defaultBaseURL     = "https://google.serper.dev"
	defaultHTTPTimeout = 15 * time.Second
	defaultPhoneRegion = "CH"

	// SourceName tags candidates discovered through web search.
	SourceName = "serper"
)

// phoneCandidate matches phone-shaped substrings in result snippets.
// Each hit is still validated with phonenumbers before being kept.
var phoneCandidate = regexp.MustCompile(`\+?[\d][\d\s.\-()/]{7,18}\d`)

// searchExclusions suppresses government, media, marketplace and
// big-brand results at the search API itself, so quota is not spent
// on pages the relevance filter would reject anyway.
const searchExclusions = "-site:.gov -site:ge.ch -site:admin.ch " +
	"-site:wikipedia.org -site:facebook.com -site:linkedin.com " +
	"-site:homegate.ch -site:immoscout24.ch -site:immoweb.ch -site:anibis.ch " +
	"-site:comparis.ch -site:ricardo.ch -site:digitec.ch -site:galaxus.ch " +
	"-site:booking.com -site:trivago.ch -site:tripadvisor.com " +
	"-site:amazon.ch -site:coop.ch -site:migros.ch -site:denner.ch -site:manor.ch " +
	"-site:ikea.ch -site:zara.ch -site:fnac.ch -site:media-markt.ch " +
	"-site:rts.ch -site:24heures.ch -site:lematin.ch -site:20min.ch -site:letemps.ch " +
	"-site:tdg.ch -site:blick.ch -site:srf.ch -site:nzz.ch " +
	`-immobilier -"agence immobilière" -"real estate" ` +
	"-filiale -succursale -franchise -mcdonald -starbucks"

// Client calls the serper.dev search endpoint.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	country     string
	language    string
	phoneRegion string
}

// Option configures optional client behaviour.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLocale sets the gl / hl search parameters.
func WithLocale(country, language string) Option {
	return func(c *Client) {
		if country != "" {
			c.country = strings.ToLower(country)
		}
		if language != "" {
			c.language = strings.ToLower(language)
		}
	}
}

// WithPhoneRegion sets the default region for phone extraction.
func WithPhoneRegion(region string) Option {
	return func(c *Client) {
		if region != "" {
			c.phoneRegion = strings.ToUpper(region)
		}
	}
}

// New builds a serper.dev client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:     defaultBaseURL,
		apiKey:      apiKey,
		country:     "ch",
		language:    "fr",
		phoneRegion: defaultPhoneRegion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Q   string `json:"q"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
	Num int    `json:"num"`
}

type organicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Organic []organicResult `json:"organic"`
}

// Search runs a web search and maps organic results to candidates.
// Phone numbers found in snippets are validated and attached so a later
// enrichment miss still leaves a contact channel.
func (c *Client) Search(ctx context.Context, query string, num int) ([]entity.Candidate, error) {
	resp, err := c.search(ctx, qualifiedQuery(query), num)
	if err != nil {
		return nil, err
	}

	candidates := make([]entity.Candidate, 0, len(resp.Organic))
	for _, result := range resp.Organic {
		name := companyNameFromTitle(result.Title)
		if name == "" {
			continue
		}
		candidate := entity.Candidate{
			Name:   name,
			Source: SourceName,
		}
		if link := strings.TrimSpace(result.Link); link != "" {
			candidate.Website = &link
		}
		if snippet := strings.TrimSpace(result.Snippet); snippet != "" {
			candidate.Description = &snippet
			if phone := c.extractPhone(snippet); phone != "" {
				candidate.Phone = &phone
			}
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// FindLinkedIn looks up the company's LinkedIn page. A miss returns
// nil without error.
func (c *Client) FindLinkedIn(ctx context.Context, company, location string) (*string, error) {
	query := fmt.Sprintf("site:linkedin.com/company %q %s", company, location)
	resp, err := c.search(ctx, strings.TrimSpace(query), 5)
	if err != nil {
		return nil, err
	}
	for _, result := range resp.Organic {
		link := strings.TrimSpace(result.Link)
		if strings.Contains(link, "linkedin.com/company") {
			return &link, nil
		}
	}
	return nil, nil
}

// qualifiedQuery appends the standing exclusion operators to a
// discovery query. Queries that already carry operators are kept as-is.
func qualifiedQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" || strings.Contains(query, "-site:") {
		return query
	}
	return query + " " + searchExclusions
}

func (c *Client) search(ctx context.Context, query string, num int) (*searchResponse, error) {
	if num <= 0 {
		num = 10
	}
	body, err := json.Marshal(searchRequest{Q: query, GL: c.country, HL: c.language, Num: num})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode serper response: %w", err)
	}
	return &parsed, nil
}

// extractPhone returns the first valid phone number in the text,
// formatted E.164, or "" when none validates.
func (c *Client) extractPhone(text string) string {
	for _, match := range phoneCandidate.FindAllString(text, 4) {
		number, err := phonenumbers.Parse(match, c.phoneRegion)
		if err != nil {
			continue
		}
		if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
			continue
		}
		return phonenumbers.Format(number, phonenumbers.E164)
	}
	return ""
}

// companyNameFromTitle strips the trailing site or tagline segment
// search engines append to page titles.
func companyNameFromTitle(title string) string {
	title = strings.TrimSpace(title)
	for _, sep := range []string{" - ", " | ", " – ", " :: ", " • "} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
			break
		}
	}
	return strings.TrimSpace(title)
}
