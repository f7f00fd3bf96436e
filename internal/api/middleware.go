// Package api implements the mealprep REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/starford/mealprep/internal/auth"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
	AuthModeJWT      = "jwt"
)

// AuthConfig selects how requests are mapped to a household.
//
//   - "disabled": every request acts on DefaultHousehold.
//   - "token": requests must carry "Authorization: Bearer <Token>" and act on DefaultHousehold.
//   - "jwt": requests must carry a token issued by Issuer; its household claim is used.
type AuthConfig struct {
	Mode             string
	Token            string
	DefaultHousehold string
	Issuer           *auth.Issuer
}

type ctxKey struct{}

// WithHousehold returns a context carrying the caller's household id.
func WithHousehold(ctx context.Context, householdID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, householdID)
}

// HouseholdFrom returns the household id stored by AuthMiddleware.
func HouseholdFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// AuthMiddleware resolves the caller's household or answers 401.
func AuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			householdID, ok := resolveHousehold(cfg, r)
			if !ok || householdID == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithHousehold(r.Context(), householdID)))
		})
	}
}

func resolveHousehold(cfg AuthConfig, r *http.Request) (string, bool) {
	switch cfg.Mode {
	case AuthModeDisabled, "":
		return cfg.DefaultHousehold, true
	case AuthModeToken:
		token, ok := bearer(r)
		return cfg.DefaultHousehold, ok && token == cfg.Token
	case AuthModeJWT:
		token, ok := bearer(r)
		if !ok || cfg.Issuer == nil {
			return "", false
		}
		p, err := cfg.Issuer.Verify(token)
		if err != nil {
			return "", false
		}
		return p.HouseholdID, true
	}
	return "", false
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}
