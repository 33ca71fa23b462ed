package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// MessageTemplate is an outreach template bound to one or more business
// categories. The orchestrator picks the first template whose category
// keywords match the candidate; a template without categories is the fallback.
type MessageTemplate struct {
	ID         string   `yaml:"id"`
	Categories []string `yaml:"categories"`
	Body       string   `yaml:"body"`
}

// Campaign holds the targeting settings loaded from the campaign YAML file.
type Campaign struct {
	City             string            `yaml:"city"`
	Country          string            `yaml:"country"`
	Sector           string            `yaml:"sector"`
	ServiceOffered   string            `yaml:"service_offered"`
	ValueProposition string            `yaml:"value_proposition"`
	Targets          []string          `yaml:"targets"`
	ResultCount      int               `yaml:"result_count"`
	Templates        []MessageTemplate `yaml:"templates"`

	RawProcessInterval string `yaml:"process_interval"`
	RawRefreshBackoff  string `yaml:"refresh_backoff"`

	ProcessInterval time.Duration `yaml:"-"`
	RefreshBackoff  time.Duration `yaml:"-"`
}

// Config aggregates application-wide configuration values. API credentials
// come from the environment; targeting settings come from the campaign file.
type Config struct {
	DatabaseURL       string
	Port              string
	JWTSecret         string
	TokenTTL          time.Duration
	AdminEmail        string
	AdminPasswordHash string
	RateLimitRefresh  RateLimitConfig

	SerperAPIKey     string
	HunterAPIKey     string
	GeminiAPIKey     string
	GeminiModel      string
	ApolloAPIKey     string
	GoogleMapsAPIKey string
	ZeroBounceAPIKey string

	Campaign Campaign
}

// Load reads configuration from environment variables and the campaign
// file, applies sane defaults, and validates required credentials.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              getEnv("PORT", "8080"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:          parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SerperAPIKey:      os.Getenv("SERPER_API_KEY"),
		HunterAPIKey:      os.Getenv("HUNTER_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ApolloAPIKey:      os.Getenv("APOLLO_API_KEY"),
		GoogleMapsAPIKey:  os.Getenv("GOOGLE_MAPS_API_KEY"),
		ZeroBounceAPIKey:  os.Getenv("ZEROBOUNCE_API_KEY"),
	}

	if cfg.SerperAPIKey == "" || cfg.HunterAPIKey == "" || cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("SERPER_API_KEY, HUNTER_API_KEY and GEMINI_API_KEY must be set")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_REFRESH", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFRESH value: %w", err)
	}
	cfg.RateLimitRefresh = rl

	campaign, err := LoadCampaign(getEnv("CAMPAIGN_FILE", "campaign.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.Campaign = campaign

	return cfg, nil
}

// LoadCampaign reads and decodes the campaign YAML file.
func LoadCampaign(path string) (Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Campaign{}, fmt.Errorf("read campaign file: %w", err)
	}
	return ParseCampaign(data)
}

// ParseCampaign decodes campaign settings and applies defaults.
func ParseCampaign(data []byte) (Campaign, error) {
	var c Campaign
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Campaign{}, fmt.Errorf("parse campaign file: %w", err)
	}

	if strings.TrimSpace(c.City) == "" {
		c.City = "Genève"
	}
	if strings.TrimSpace(c.Country) == "" {
		c.Country = "Suisse"
	}
	if strings.TrimSpace(c.Sector) == "" {
		c.Sector = "Marketing Digital"
	}
	if strings.TrimSpace(c.ServiceOffered) == "" {
		c.ServiceOffered = "services digitaux"
	}
	if len(c.Targets) == 0 {
		c.Targets = []string{"PME", "commerce", "artisan", "cabinet", "restaurant", "hôtel"}
	}
	if c.ResultCount <= 0 {
		c.ResultCount = 10
	}
	c.ProcessInterval = parseDuration(c.RawProcessInterval, 15*time.Second)
	c.RefreshBackoff = parseDuration(c.RawRefreshBackoff, time.Minute)

	return c, nil
}

// TemplateFor returns the first template whose categories match the given
// text, falling back to the first template without categories, then to a
// zero template.
func (c Campaign) TemplateFor(text string) MessageTemplate {
	lowered := strings.ToLower(text)
	for _, tpl := range c.Templates {
		for _, cat := range tpl.Categories {
			if cat != "" && strings.Contains(lowered, strings.ToLower(cat)) {
				return tpl
			}
		}
	}
	for _, tpl := range c.Templates {
		if len(tpl.Categories) == 0 {
			return tpl
		}
	}
	return MessageTemplate{}
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(input))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
