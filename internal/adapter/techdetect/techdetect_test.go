package techdetect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func detect(t *testing.T, handler http.HandlerFunc) []string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	detector := New(WithHTTPClient(server.Client()))
	techs, err := detector.Detect(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return techs
}

func TestDetectWordPressSite(t *testing.T) {
	techs := detect(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "Apache/2.4.57")
		w.Header().Set("X-Powered-By", "PHP/8.1")
		fmt.Fprint(w, `<html><head>
			<meta name="generator" content="WordPress 6.4">
			<link rel="stylesheet" href="/wp-content/themes/flour/style.css">
			<script src="/wp-includes/js/jquery/jquery.min.js"></script>
		</head><body></body></html>`)
	})

	want := map[string]bool{"WordPress": false, "jQuery": false, "Apache": false, "PHP": false}
	for _, tech := range techs {
		if _, ok := want[tech]; ok {
			want[tech] = true
		}
	}
	for tech, found := range want {
		if !found {
			t.Errorf("expected %s in %v", tech, techs)
		}
	}
}

func TestDetectModernStack(t *testing.T) {
	techs := detect(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "nginx/1.25")
		fmt.Fprint(w, `<html><body>
			<div id="__next"></div>
			<script id="__NEXT_DATA__" type="application/json">{}</script>
			<script src="/_next/static/chunks/main.js"></script>
		</body></html>`)
	})

	hasNext := false
	for _, tech := range techs {
		if tech == "Next.js" {
			hasNext = true
		}
		if tech == "WordPress" {
			t.Errorf("false positive WordPress in %v", techs)
		}
	}
	if !hasNext {
		t.Errorf("expected Next.js in %v", techs)
	}
}

func TestDetectNoDuplicates(t *testing.T) {
	techs := detect(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<meta name="generator" content="WordPress 6.4">
			<link href="/wp-content/a.css">
		</head></html>`)
	})

	count := 0
	for _, tech := range techs {
		if tech == "WordPress" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("WordPress reported %d times in %v", count, techs)
	}
}

func TestDetectUnreachableSite(t *testing.T) {
	detector := New(WithHTTPClient(&http.Client{Transport: failingTransport{}}))
	if _, err := detector.Detect(context.Background(), "https://unreachable.example"); err == nil {
		t.Fatalf("expected error for unreachable site")
	}
}

func TestDetectEmptyWebsite(t *testing.T) {
	detector := New()
	if _, err := detector.Detect(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty website")
	}
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, fmt.Errorf("connection refused")
}
