// Package places wraps the Google Places text search API for local
// business discovery and lookups.
package places

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	places "google.golang.org/api/places/v1"

	"github.com/octobees/prospect-agent/internal/entity"
)

// SourceName tags candidates discovered through local search.
const SourceName = "google_maps"

// fieldMask limits responses to the fields we actually read. The
// Places API rejects requests without one.
const fieldMask = "places.id,places.displayName,places.formattedAddress,places.internationalPhoneNumber,places.websiteUri,places.rating,places.userRatingCount,places.types"

// Client performs text searches against the Places API.
type Client struct {
	svc      *places.Service
	language string
}

// New builds a Places client authenticated with an API key. Extra
// options are mainly for tests.
func New(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := places.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create places service: %w", err)
	}
	return &Client{svc: svc, language: "fr"}, nil
}

// Discover runs a text search and maps each place to a candidate.
func (c *Client) Discover(ctx context.Context, query string, max int) ([]entity.Candidate, error) {
	resp, err := c.searchText(ctx, query, max)
	if err != nil {
		return nil, err
	}

	candidates := make([]entity.Candidate, 0, len(resp.Places))
	for _, place := range resp.Places {
		name := displayName(place)
		if name == "" {
			continue
		}
		candidate := entity.Candidate{
			Name:   name,
			Source: SourceName,
		}
		if site := strings.TrimSpace(place.WebsiteUri); site != "" {
			candidate.Website = &site
		}
		if phone := strings.TrimSpace(place.InternationalPhoneNumber); phone != "" {
			candidate.Phone = &phone
		}
		if addr := strings.TrimSpace(place.FormattedAddress); addr != "" {
			candidate.Description = &addr
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// Lookup fetches the local listing for a single business. A miss
// returns nil without error.
func (c *Client) Lookup(ctx context.Context, name, location string) (*entity.LocalBusiness, error) {
	query := strings.TrimSpace(name + " " + location)
	resp, err := c.searchText(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(resp.Places) == 0 {
		return nil, nil
	}

	place := resp.Places[0]
	business := &entity.LocalBusiness{
		Name:  displayName(place),
		Types: place.Types,
	}
	if addr := strings.TrimSpace(place.FormattedAddress); addr != "" {
		business.Address = &addr
	}
	if phone := strings.TrimSpace(place.InternationalPhoneNumber); phone != "" {
		business.Phone = &phone
	}
	if site := strings.TrimSpace(place.WebsiteUri); site != "" {
		business.Website = &site
	}
	if place.Rating > 0 {
		rating := place.Rating
		business.Rating = &rating
	}
	if place.UserRatingCount > 0 {
		reviews := int(place.UserRatingCount)
		business.Reviews = &reviews
	}
	return business, nil
}

func (c *Client) searchText(ctx context.Context, query string, max int) (*places.GoogleMapsPlacesV1SearchTextResponse, error) {
	if max <= 0 {
		max = 10
	}
	if max > 20 {
		max = 20
	}

	call := c.svc.Places.SearchText(&places.GoogleMapsPlacesV1SearchTextRequest{
		TextQuery:      query,
		LanguageCode:   c.language,
		MaxResultCount: int64(max),
	})
	call.Header().Set("X-Goog-FieldMask", fieldMask)

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("places text search: %w", err)
	}
	return resp, nil
}

func displayName(place *places.GoogleMapsPlacesV1Place) string {
	if place == nil || place.DisplayName == nil {
		return ""
	}
	return strings.TrimSpace(place.DisplayName.Text)
}
