package zerobounce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/octobees/prospect-agent/internal/entity"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
}

func TestVerifyValidEmail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/validate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("email"); got != "contact@boulangerie-dupont.ch" {
			t.Errorf("unexpected email %q", got)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status":     "valid",
			"sub_status": "",
		})
	})

	verification, err := client.Verify(context.Background(), "contact@boulangerie-dupont.ch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verification.Status != entity.EmailStatusValid {
		t.Errorf("unexpected status %q", verification.Status)
	}
	if verification.Suggestion != nil {
		t.Errorf("unexpected suggestion %q", *verification.Suggestion)
	}
}

func TestVerifyNormalizesStatusesAndSuggestion(t *testing.T) {
	cases := []struct {
		apiStatus string
		want      string
	}{
		{"valid", entity.EmailStatusValid},
		{"invalid", entity.EmailStatusInvalid},
		{"do_not_mail", entity.EmailStatusInvalid},
		{"catch-all", entity.EmailStatusCatchAll},
		{"unknown", entity.EmailStatusUnknown},
		{"greylisted", entity.EmailStatusUnknown},
	}
	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{
				"status":       tc.apiStatus,
				"sub_status":   "mailbox_not_found",
				"did_you_mean": "contact@boulangerie-dupont.ch",
			})
		})

		verification, err := client.Verify(context.Background(), "contact@boulangerie-dupond.ch")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.apiStatus, err)
		}
		if verification.Status != tc.want {
			t.Errorf("status %q normalized to %q, want %q", tc.apiStatus, verification.Status, tc.want)
		}
		if verification.SubStatus != "mailbox_not_found" {
			t.Errorf("sub status lost: %q", verification.SubStatus)
		}
		if verification.Suggestion == nil || *verification.Suggestion != "contact@boulangerie-dupont.ch" {
			t.Errorf("suggestion lost: %+v", verification.Suggestion)
		}
	}
}

func TestVerifyAPIErrorSurfaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid API key"})
	})

	if _, err := client.Verify(context.Background(), "contact@example.ch"); err == nil {
		t.Fatalf("expected error for api error body")
	}
}

func TestCredits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/getcredits" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"Credits": "250"})
	})

	credits, err := client.Credits(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credits != 250 {
		t.Errorf("unexpected credits %d", credits)
	}
}

func TestCreditsInvalidKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"Credits": "-1"})
	})

	if _, err := client.Credits(context.Background()); err == nil {
		t.Fatalf("expected error for rejected key")
	}
}
