package internal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func testRouter(t *testing.T, mutate func(*Config)) http.Handler {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "mealprep.db")
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	app, err := newApplication([]Option{WithConfig(cfg), WithLogOutput(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	c, err := app.setup(context.Background(), true)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(c.Close)
	return c.router(cfg)
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	h := testRouter(t, nil)
	for _, path := range []string{"/health/live", "/health/ready"} {
		w := get(h, path, "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
			t.Errorf("%s: %d %s", path, w.Code, w.Body.String())
		}
	}
}

func TestRouterServesDefaultHousehold(t *testing.T) {
	h := testRouter(t, nil)
	w := get(h, "/api/household", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"default"`) {
		t.Errorf("household: %d %s", w.Code, w.Body.String())
	}
}

func TestRouterTokenMode(t *testing.T) {
	h := testRouter(t, func(cfg *Config) {
		cfg.Auth.Mode = "token"
		cfg.Auth.Token = "s3cret"
	})
	if w := get(h, "/api/tags", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d", w.Code)
	}
	if w := get(h, "/api/tags", "s3cret"); w.Code != http.StatusOK {
		t.Errorf("with token: %d", w.Code)
	}
	if w := get(h, "/health/ready", ""); w.Code != http.StatusOK {
		t.Errorf("health must stay open: %d", w.Code)
	}
}

func TestSetupAppliesHouseholdDefaults(t *testing.T) {
	h := testRouter(t, func(cfg *Config) {
		cfg.Household.Timezone = "Europe/Berlin"
		cfg.Household.DinnerTime = "19:30"
	})
	body := get(h, "/api/household", "").Body.String()
	if !strings.Contains(body, "Europe/Berlin") || !strings.Contains(body, "19:30") {
		t.Errorf("household = %s", body)
	}
}
