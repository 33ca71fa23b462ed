package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/prospect-agent/internal/auth"
	"github.com/octobees/prospect-agent/internal/config"
)

func newEchoContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestJWTAcceptsValidToken(t *testing.T) {
	manager := authpkg.NewJWTManager("secret", time.Hour)
	token, err := manager.GenerateToken("admin@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	c, rec := newEchoContext(http.MethodPost, "/admin/refresh")
	c.Request().Header.Set("Authorization", "Bearer "+token)

	if err := JWT(manager)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if email, _ := c.Get(ContextKeyUserEmail).(string); email != "admin@example.com" {
		t.Errorf("expected email in context, got %q", email)
	}
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	manager := authpkg.NewJWTManager("secret", time.Hour)

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not-a-token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newEchoContext(http.MethodPost, "/admin/refresh")
			if tc.header != "" {
				c.Request().Header.Set("Authorization", tc.header)
			}

			if err := JWT(manager)(okHandler)(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestJWTRejectsTokenFromOtherSecret(t *testing.T) {
	other := authpkg.NewJWTManager("other-secret", time.Hour)
	token, err := other.GenerateToken("admin@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	c, rec := newEchoContext(http.MethodPost, "/admin/refresh")
	c.Request().Header.Set("Authorization", "Bearer "+token)

	manager := authpkg.NewJWTManager("secret", time.Hour)
	if err := JWT(manager)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRefreshRateLimiterBlocksAfterBurst(t *testing.T) {
	mw := RefreshRateLimiter(config.RateLimitConfig{Requests: 2, Interval: time.Hour})

	e := echo.New()
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/admin/refresh")
		if err := mw(okHandler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/admin/refresh")
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRefreshRateLimiterIgnoresOtherPaths(t *testing.T) {
	mw := RefreshRateLimiter(config.RateLimitConfig{Requests: 1, Interval: time.Hour})

	e := echo.New()
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/prospects", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/prospects")
		if err := mw(okHandler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	c, rec := newEchoContext(http.MethodGet, "/prospects")

	if err := RequestID()(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rid := rec.Header().Get("X-Request-ID"); rid == "" {
		t.Fatal("expected generated request id header")
	}
	if RequestIDFromContext(c) == "" {
		t.Fatal("expected request id in context")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	c, rec := newEchoContext(http.MethodGet, "/prospects")
	c.Request().Header.Set("X-Request-ID", "fixed-id")

	if err := RequestID()(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rid := rec.Header().Get("X-Request-ID"); rid != "fixed-id" {
		t.Fatalf("expected preserved request id, got %q", rid)
	}
}
