// Package techdetect fingerprints the technology stack of a website
// from its homepage markup and response headers.
package techdetect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	maxBodyBytes       = 2 << 20
)

// markupFingerprints map a technology name to markers found in the
// raw HTML. Order determines the order of the reported stack.
var markupFingerprints = []struct {
	name    string
	markers []string
}{
	{"WordPress", []string{"wp-content", "wp-includes", "wp-json"}},
	{"Joomla", []string{"/media/jui/", "joomla"}},
	{"Drupal", []string{"drupal-settings-json", "/sites/default/files"}},
	{"PrestaShop", []string{"prestashop", "/modules/ps_"}},
	{"Shopify", []string{"cdn.shopify.com", "shopify"}},
	{"Wix", []string{"wix.com", "wixstatic.com"}},
	{"Squarespace", []string{"squarespace.com", "static1.squarespace"}},
	{"Next.js", []string{"__next_data__", "/_next/static"}},
	{"React", []string{"data-reactroot", "react-dom"}},
	{"Vue", []string{"data-v-app", "vue.runtime"}},
	{"Angular", []string{"ng-version"}},
	{"jQuery", []string{"jquery"}},
	{"Bootstrap", []string{"bootstrap.min.css", "bootstrap.bundle"}},
}

// Detector fetches pages and reports detected technologies.
type Detector struct {
	httpClient *http.Client
}

// Option configures optional detector behaviour.
type Option func(*Detector)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Detector) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// New builds a detector.
func New(opts ...Option) *Detector {
	d := &Detector{httpClient: &http.Client{Timeout: defaultHTTPTimeout}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect fetches the homepage and returns the technologies it can
// identify, most specific first. An unreachable site is an error so
// the caller can decide how hard to fail.
func (d *Detector) Detect(ctx context.Context, website string) ([]string, error) {
	website = strings.TrimSpace(website)
	if website == "" {
		return nil, fmt.Errorf("website is empty")
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, website, nil)
	if err != nil {
		return nil, fmt.Errorf("create detect request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; prospect-agent/1.0)")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", website, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", website, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", website, err)
	}

	seen := make(map[string]struct{})
	var techs []string
	add := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		techs = append(techs, name)
	}

	html := strings.ToLower(string(raw))
	for _, fp := range markupFingerprints {
		for _, marker := range fp.markers {
			if strings.Contains(html, marker) {
				add(fp.name)
				break
			}
		}
	}

	// The meta generator tag names the CMS outright when present.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw))); err == nil {
		doc.Find("meta[name='generator']").Each(func(_ int, s *goquery.Selection) {
			content, _ := s.Attr("content")
			if name := generatorName(content); name != "" {
				add(name)
			}
		})
	}

	for _, tech := range headerTechnologies(resp.Header) {
		add(tech)
	}
	return techs, nil
}

func generatorName(content string) string {
	generator := strings.ToLower(strings.TrimSpace(content))
	switch {
	case generator == "":
		return ""
	case strings.Contains(generator, "wordpress"):
		return "WordPress"
	case strings.Contains(generator, "joomla"):
		return "Joomla"
	case strings.Contains(generator, "drupal"):
		return "Drupal"
	case strings.Contains(generator, "prestashop"):
		return "PrestaShop"
	case strings.Contains(generator, "wix"):
		return "Wix"
	case strings.Contains(generator, "typo3"):
		return "TYPO3"
	default:
		return ""
	}
}

func headerTechnologies(header http.Header) []string {
	var techs []string
	server := strings.ToLower(header.Get("Server"))
	switch {
	case strings.Contains(server, "nginx"):
		techs = append(techs, "nginx")
	case strings.Contains(server, "apache"):
		techs = append(techs, "Apache")
	case strings.Contains(server, "litespeed"):
		techs = append(techs, "LiteSpeed")
	}
	if powered := strings.ToLower(header.Get("X-Powered-By")); strings.Contains(powered, "php") {
		techs = append(techs, "PHP")
	}
	return techs
}
