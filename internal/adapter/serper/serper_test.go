package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
}

func TestSearchMapsOrganicResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("missing api key header")
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		query, _ := req["q"].(string)
		if !strings.HasPrefix(query, "agence marketing Genève ") {
			t.Errorf("unexpected query: %v", req["q"])
		}
		if !strings.Contains(query, "-site:admin.ch") || !strings.Contains(query, "-immobilier") {
			t.Errorf("exclusion operators missing from query: %v", req["q"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]string{
				{
					"title":   "Boulangerie Dupont - Pain artisanal à Genève",
					"link":    "https://boulangerie-dupont.ch",
					"snippet": "Boulangerie artisanale. Tél: 022 123 45 67.",
				},
				{
					"title":   "Atelier Créatif | Studio de design",
					"link":    "https://atelier-creatif.ch",
					"snippet": "Studio de design graphique.",
				},
			},
		})
	})

	candidates, err := client.Search(context.Background(), "agence marketing Genève", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.Name != "Boulangerie Dupont" {
		t.Errorf("title not cleaned: %q", first.Name)
	}
	if first.Website == nil || *first.Website != "https://boulangerie-dupont.ch" {
		t.Errorf("unexpected website: %+v", first.Website)
	}
	if first.Phone == nil || *first.Phone != "+41221234567" {
		t.Errorf("expected phone extracted from snippet, got %+v", first.Phone)
	}
	if first.Source != SourceName {
		t.Errorf("unexpected source %q", first.Source)
	}

	second := candidates[1]
	if second.Name != "Atelier Créatif" {
		t.Errorf("pipe separator not stripped: %q", second.Name)
	}
	if second.Phone != nil {
		t.Errorf("no phone in snippet, got %q", *second.Phone)
	}
}

func TestQualifiedQuery(t *testing.T) {
	got := qualifiedQuery("boulangerie Genève")
	if !strings.HasPrefix(got, "boulangerie Genève ") {
		t.Errorf("query terms not preserved: %q", got)
	}
	if !strings.Contains(got, "-site:booking.com") || !strings.Contains(got, "-franchise") {
		t.Errorf("exclusions not appended: %q", got)
	}

	custom := "boulangerie -site:example.com"
	if q := qualifiedQuery(custom); q != custom {
		t.Errorf("query with operators rewritten: %q", q)
	}
	if q := qualifiedQuery("  "); q != "" {
		t.Errorf("blank query not normalized: %q", q)
	}
}

func TestSearchErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	if _, err := client.Search(context.Background(), "whatever", 10); err == nil {
		t.Fatalf("expected error for 429 response")
	}
}

func TestFindLinkedIn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]string{
				{"title": "autre", "link": "https://example.com"},
				{"title": "Boulangerie Dupont", "link": "https://www.linkedin.com/company/boulangerie-dupont"},
			},
		})
	})

	link, err := client.FindLinkedIn(context.Background(), "Boulangerie Dupont", "Genève")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link == nil || *link != "https://www.linkedin.com/company/boulangerie-dupont" {
		t.Fatalf("unexpected link: %+v", link)
	}
}

func TestFindLinkedInMissReturnsNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"organic": []map[string]string{}})
	})

	link, err := client.FindLinkedIn(context.Background(), "Inconnue SA", "Genève")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link != nil {
		t.Fatalf("expected nil on miss, got %q", *link)
	}
}

func TestCompanyNameFromTitle(t *testing.T) {
	cases := map[string]string{
		"Boulangerie Dupont - Pain artisanal": "Boulangerie Dupont",
		"Atelier Créatif | Studio":            "Atelier Créatif",
		"Menuiserie Rochat":                   "Menuiserie Rochat",
		"  Fiduciaire Blanc – Comptabilité ":  "Fiduciaire Blanc",
	}
	for input, want := range cases {
		if got := companyNameFromTitle(input); got != want {
			t.Errorf("companyNameFromTitle(%q) = %q, want %q", input, got, want)
		}
	}
}
