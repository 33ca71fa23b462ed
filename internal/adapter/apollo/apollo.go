// Package apollo wraps the Apollo.io organization API used for
// firmographic enrichment.
package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/octobees/prospect-agent/internal/entity"
)

const (
	defaultBaseURL     = "https://api.apollo.io"
	defaultHTTPTimeout = 15 * time.Second
)

// Client calls the Apollo organization endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
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

// New builds an Apollo client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type organization struct {
	Name                  string `json:"name"`
	WebsiteURL            string `json:"website_url"`
	Phone                 string `json:"phone"`
	LinkedInURL           string `json:"linkedin_url"`
	EstimatedNumEmployees int    `json:"estimated_num_employees"`
	Industry              string `json:"industry"`
	AnnualRevenuePrinted  string `json:"annual_revenue_printed"`
	RawAddress            string `json:"raw_address"`
}

// EnrichOrganization resolves firmographic data for a company, first
// by domain, then by name search when the domain lookup misses. A
// full miss returns nil without error.
func (c *Client) EnrichOrganization(ctx context.Context, name, domain string) (*entity.CompanyInfo, error) {
	if domain != "" {
		org, err := c.enrichByDomain(ctx, domain)
		if err != nil {
			return nil, err
		}
		if org != nil {
			return toCompanyInfo(org), nil
		}
	}
	if name == "" {
		return nil, nil
	}
	org, err := c.searchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, nil
	}
	return toCompanyInfo(org), nil
}

func (c *Client) enrichByDomain(ctx context.Context, domain string) (*organization, error) {
	endpoint := c.baseURL + "/v1/organizations/enrich?domain=" + url.QueryEscape(domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create enrich request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apollo enrich failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("apollo returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Organization *organization `json:"organization"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode apollo response: %w", err)
	}
	if parsed.Organization == nil || parsed.Organization.Name == "" {
		return nil, nil
	}
	return parsed.Organization, nil
}

func (c *Client) searchByName(ctx context.Context, name string) (*organization, error) {
	body, err := json.Marshal(map[string]any{
		"q_organization_name": name,
		"page":                1,
		"per_page":            1,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/mixed_companies/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apollo search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("apollo returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Organizations []*organization `json:"organizations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode apollo response: %w", err)
	}
	if len(parsed.Organizations) == 0 {
		return nil, nil
	}
	return parsed.Organizations[0], nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
}

func toCompanyInfo(org *organization) *entity.CompanyInfo {
	info := &entity.CompanyInfo{Name: org.Name}
	if v := strings.TrimSpace(org.WebsiteURL); v != "" {
		info.Website = &v
	}
	if v := strings.TrimSpace(org.Phone); v != "" {
		info.Phone = &v
	}
	if v := strings.TrimSpace(org.LinkedInURL); v != "" {
		info.LinkedInURL = &v
	}
	if v := sizeBracket(org.EstimatedNumEmployees); v != "" {
		info.Size = &v
	}
	if v := strings.TrimSpace(org.Industry); v != "" {
		info.Industry = &v
	}
	if v := strings.TrimSpace(org.AnnualRevenuePrinted); v != "" {
		info.Revenue = &v
	}
	if v := strings.TrimSpace(org.RawAddress); v != "" {
		info.Address = &v
	}
	return info
}

// sizeBracket maps a head count to the bracket labels the scoring
// weight tables understand.
func sizeBracket(employees int) string {
	switch {
	case employees <= 0:
		return ""
	case employees <= 10:
		return "1-10"
	case employees <= 50:
		return "11-50"
	case employees <= 200:
		return "51-200"
	case employees <= 500:
		return "201-500"
	case employees <= 1000:
		return "501-1000"
	case employees <= 5000:
		return "1001-5000"
	default:
		return "5001+"
	}
}
