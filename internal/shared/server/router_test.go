package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"legalens-backend/internal/shared/config"
)

func newTestRouterConfig() config.Config {
	return config.Config{
		Port:               "0",
		Env:                "dev",
		CORSAllowOrigin:    []string{"http://localhost:5173"},
		LLMProvider:        "mock",
		RunnerMaxAttempts:  2,
		SupportedLanguages: []string{"en"},
	}
}

func TestRouterHealth(t *testing.T) {
	r := NewRouter(newTestRouterConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	r := NewRouter(newTestRouterConfig())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "analysis_started_total") {
		t.Fatalf("expected metrics output, got: %s", w.Body.String())
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9090":  ":9090",
		":7070": ":7070",
	}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
