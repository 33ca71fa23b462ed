// Package hunter finds professional email addresses, combining a
// lightweight website scrape with the Hunter.io domain search API.
package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/idna"

	"github.com/octobees/prospect-agent/internal/entity"
)

const (
	defaultBaseURL     = "https://api.hunter.io"
	defaultHTTPTimeout = 15 * time.Second
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-']+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// genericInboxes rank shared-mailbox addresses harvested from a
	// page above whatever else appears in its text.
	genericInboxes = []string{"contact", "info", "hello", "bonjour", "commercial"}

	// scrapeSkipPrefixes filters addresses that are really asset names.
	scrapeSkipPrefixes = []string{"noreply@", "no-reply@", "example@", "email@", "user@"}
)

// Client resolves an email address for a company website.
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

// WithBaseURL points the API calls at a different endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// New builds a Hunter client.
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

// FindEmail resolves an email for the website, trying the site itself,
// then the Hunter domain search. A personal address from the search
// also names the contact behind it. Only addresses actually published
// on the site or known to the API are returned; a full miss is nil
// without error so a later source can still answer.
func (c *Client) FindEmail(ctx context.Context, website string) (*string, *entity.ExecInfo, error) {
	domain, err := domainOf(website)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve email domain: %w", err)
	}

	if email := c.scrapeSite(ctx, website, domain); email != "" {
		return &email, nil, nil
	}

	email, exec, err := c.domainSearch(ctx, domain)
	if email != "" {
		return &email, exec, nil
	}
	return nil, nil, err
}

// scrapeSite looks for addresses on the homepage and the usual
// contact page. Failures are a miss, not an error.
func (c *Client) scrapeSite(ctx context.Context, website, domain string) string {
	for _, path := range []string{"", "/contact"} {
		email := c.scrapePage(ctx, strings.TrimRight(website, "/")+path, domain)
		if email != "" {
			return email
		}
	}
	return ""
}

func (c *Client) scrapePage(ctx context.Context, pageURL, domain string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; prospect-agent/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	var found string
	doc.Find("a[href^='mailto:']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if idx := strings.IndexAny(addr, "?&"); idx > 0 {
			addr = addr[:idx]
		}
		if email := normalizeEmail(addr); email != "" {
			found = email
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	// Addresses in free text are less trustworthy than a mailto link.
	// Keep a shared mailbox if one is published, otherwise an address
	// on the company's own domain; anything else is noise.
	var valid []string
	for _, match := range emailPattern.FindAllString(doc.Text(), 10) {
		if email := normalizeEmail(match); email != "" {
			valid = append(valid, email)
		}
	}
	for _, email := range valid {
		local := email[:strings.Index(email, "@")]
		for _, generic := range genericInboxes {
			if strings.Contains(local, generic) {
				return email
			}
		}
	}
	for _, email := range valid {
		if domain != "" && strings.HasSuffix(email, "@"+domain) {
			return email
		}
	}
	return ""
}

type domainSearchEmail struct {
	Value      string `json:"value"`
	Type       string `json:"type"`
	Confidence int    `json:"confidence"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
}

type domainSearchResponse struct {
	Data struct {
		Emails []domainSearchEmail `json:"emails"`
	} `json:"data"`
}

// domainSearch queries the Hunter API, preferring generic inboxes over
// personal ones so outreach lands with whoever reads the shared box.
// A personal fallback carries the contact's name and position when the
// API knows them.
func (c *Client) domainSearch(ctx context.Context, domain string) (string, *entity.ExecInfo, error) {
	endpoint := fmt.Sprintf("%s/v2/domain-search?domain=%s&api_key=%s",
		c.baseURL, url.QueryEscape(domain), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", nil, fmt.Errorf("create domain search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("hunter request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("hunter returned status %d", resp.StatusCode)
	}

	var parsed domainSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", nil, fmt.Errorf("decode hunter response: %w", err)
	}

	var fallback string
	var fallbackExec *entity.ExecInfo
	for _, candidate := range parsed.Data.Emails {
		email := normalizeEmail(candidate.Value)
		if email == "" {
			continue
		}
		if candidate.Type == "generic" {
			return email, nil, nil
		}
		if fallback == "" {
			fallback = email
			fallbackExec = execInfoOf(candidate)
		}
	}
	return fallback, fallbackExec, nil
}

func execInfoOf(candidate domainSearchEmail) *entity.ExecInfo {
	name := strings.TrimSpace(candidate.FirstName + " " + candidate.LastName)
	if name == "" {
		return nil
	}
	return &entity.ExecInfo{
		Name:  name,
		Title: strings.TrimSpace(candidate.Position),
	}
}

// normalizeEmail lowercases and validates an address, returning ""
// when it is not usable.
func normalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailPattern.MatchString(email) {
		return ""
	}
	for _, prefix := range scrapeSkipPrefixes {
		if strings.HasPrefix(email, prefix) {
			return ""
		}
	}
	// Addresses harvested from text can drag in image names.
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"} {
		if strings.HasSuffix(email, ext) {
			return ""
		}
	}
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return ""
	}
	if ascii, err := idna.Lookup.ToASCII(parts[1]); err != nil || ascii == "" {
		return ""
	}
	return email
}

func domainOf(website string) (string, error) {
	website = strings.TrimSpace(website)
	if website == "" {
		return "", fmt.Errorf("website is empty")
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("invalid website %q", website)
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	return host, nil
}
