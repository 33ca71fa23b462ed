package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(context.Background(), "test-key",
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func TestDiscoverMapsPlaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Goog-FieldMask"); got == "" {
			t.Errorf("field mask header not set")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"places": []map[string]any{
				{
					"id":                       "place-1",
					"displayName":              map[string]string{"text": "Boulangerie Dupont"},
					"formattedAddress":         "Rue du Rhône 1, 1204 Genève",
					"internationalPhoneNumber": "+41 22 123 45 67",
					"websiteUri":               "https://boulangerie-dupont.ch",
					"rating":                   4.6,
					"userRatingCount":          42,
					"types":                    []string{"bakery"},
				},
				{
					"id":          "place-2",
					"displayName": map[string]string{"text": "Menuiserie Rochat"},
				},
			},
		})
	})

	candidates, err := client.Discover(context.Background(), "boulangerie Genève", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.Name != "Boulangerie Dupont" || first.Source != SourceName {
		t.Errorf("unexpected candidate: %+v", first)
	}
	if first.Phone == nil || *first.Phone != "+41 22 123 45 67" {
		t.Errorf("expected phone, got %+v", first.Phone)
	}
	if first.Website == nil || *first.Website != "https://boulangerie-dupont.ch" {
		t.Errorf("expected website, got %+v", first.Website)
	}

	second := candidates[1]
	if second.Website != nil || second.Phone != nil {
		t.Errorf("expected bare candidate, got %+v", second)
	}
}

func TestLookupReturnsLocalBusiness(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"places": []map[string]any{
				{
					"id":                       "place-1",
					"displayName":              map[string]string{"text": "Boulangerie Dupont"},
					"formattedAddress":         "Rue du Rhône 1, 1204 Genève",
					"internationalPhoneNumber": "+41 22 123 45 67",
					"rating":                   4.6,
					"userRatingCount":          42,
					"types":                    []string{"bakery", "point_of_interest"},
				},
			},
		})
	})

	business, err := client.Lookup(context.Background(), "Boulangerie Dupont", "Genève")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if business == nil {
		t.Fatalf("expected a result")
	}
	if business.Rating == nil || *business.Rating != 4.6 {
		t.Errorf("unexpected rating: %+v", business.Rating)
	}
	if business.Reviews == nil || *business.Reviews != 42 {
		t.Errorf("unexpected reviews: %+v", business.Reviews)
	}
	if business.Address == nil || business.Phone == nil {
		t.Errorf("expected address and phone: %+v", business)
	}
	if business.Website != nil {
		t.Errorf("expected nil website, got %q", *business.Website)
	}
}

func TestLookupMissReturnsNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	})

	business, err := client.Lookup(context.Background(), "Inconnue SA", "Genève")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if business != nil {
		t.Fatalf("expected nil on miss, got %+v", business)
	}
}

func TestSearchErrorPropagates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"key invalid"}}`, http.StatusForbidden)
	})

	if _, err := client.Discover(context.Background(), "boulangerie", 5); err == nil {
		t.Fatalf("expected error for 403 response")
	}
}
