// Package zerobounce wraps the ZeroBounce email verification API.
package zerobounce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/octobees/prospect-agent/internal/entity"
)

const (
	defaultBaseURL     = "https://api.zerobounce.net"
	defaultHTTPTimeout = 15 * time.Second
)

// Client verifies email addresses and reports remaining credits.
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

// New builds a ZeroBounce client.
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

type validateResponse struct {
	Status     string `json:"status"`
	SubStatus  string `json:"sub_status"`
	DidYouMean string `json:"did_you_mean"`
	Error      string `json:"error"`
}

// Verify checks a single address and returns its verification verdict.
func (c *Client) Verify(ctx context.Context, email string) (*entity.Verification, error) {
	endpoint := fmt.Sprintf("%s/v2/validate?api_key=%s&email=%s&ip_address=",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create validate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zerobounce request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zerobounce returned status %d", resp.StatusCode)
	}

	var parsed validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode zerobounce response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("zerobounce error: %s", parsed.Error)
	}
	if parsed.Status == "" {
		return nil, fmt.Errorf("zerobounce returned no status")
	}

	verification := &entity.Verification{
		Status:    normalizeStatus(parsed.Status),
		SubStatus: parsed.SubStatus,
	}
	if suggestion := strings.TrimSpace(parsed.DidYouMean); suggestion != "" {
		verification.Suggestion = &suggestion
	}
	return verification, nil
}

// Credits returns the remaining verification credits. The API reports
// the count as a string, and -1 when the key is invalid.
func (c *Client) Credits(ctx context.Context) (int, error) {
	endpoint := fmt.Sprintf("%s/v2/getcredits?api_key=%s", c.baseURL, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("create credits request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("zerobounce request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("zerobounce returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Credits string `json:"Credits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode credits response: %w", err)
	}

	credits, err := strconv.Atoi(strings.TrimSpace(parsed.Credits))
	if err != nil {
		return 0, fmt.Errorf("parse credits %q: %w", parsed.Credits, err)
	}
	if credits < 0 {
		return 0, fmt.Errorf("zerobounce rejected the api key")
	}
	return credits, nil
}

// normalizeStatus folds the statuses we do not score separately into
// the four the rest of the pipeline understands.
func normalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "valid":
		return entity.EmailStatusValid
	case "invalid", "spamtrap", "abuse", "do_not_mail":
		return entity.EmailStatusInvalid
	case "catch-all":
		return entity.EmailStatusCatchAll
	default:
		return entity.EmailStatusUnknown
	}
}
