package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/logging"
	"github.com/vedran77/linkup/internal/service"
)

type contextKey string

const IdentityKey contextKey = "identity"

// Authenticator resolves a bearer token to the calling user.
type Authenticator interface {
	Identify(ctx context.Context, token string) (*domain.Identity, error)
}

// Auth rejects requests without a valid token for an active user.
func Auth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, "Access token required")
				return
			}

			identity, err := auth.Identify(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrAccountDeactivated):
					writeUnauthorized(w, "Account deactivated")
				case errors.Is(err, service.ErrUserNotFound):
					writeUnauthorized(w, "User not found")
				case errors.Is(err, service.ErrInvalidToken):
					writeUnauthorized(w, "Invalid or expired token")
				default:
					logging.FromContext(r.Context()).Error("authentication failed", "error", err)
					writeJSONError(w, http.StatusInternalServerError, "INTERNAL", "Authentication failed")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth attaches the caller when a valid token is present and
// otherwise continues anonymously. It never fails the request.
func OptionalAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if identity, err := auth.Identify(r.Context(), token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// GetIdentity returns the authenticated caller, or nil for anonymous requests.
func GetIdentity(ctx context.Context) *domain.Identity {
	identity, _ := ctx.Value(IdentityKey).(*domain.Identity)
	return identity
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
