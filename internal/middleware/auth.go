package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vrroom/booking-bff/internal/pkg/backend"
	"github.com/vrroom/booking-bff/internal/pkg/jwt"
	"github.com/vrroom/booking-bff/internal/pkg/response"
	"github.com/vrroom/booking-bff/internal/pkg/tokenstore"
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"
)

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Auth requires a bearer token and forwards it to backend calls. Expired JWTs
// are rejected locally; everything else is for the backend to decide.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			response.Unauthorized(w, "Missing authorization header")
			return
		}
		token, ok := BearerToken(r)
		if !ok {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}
		if err := jwt.CheckExpiry(token, time.Now()); err != nil {
			response.Unauthorized(w, "Token expired")
			return
		}
		next.ServeHTTP(w, r.WithContext(backend.WithToken(r.Context(), token)))
	})
}

// SessionToken resolves the bearer token of a booking session. A header token
// wins and is remembered for the session; otherwise the stored token is used.
// Requests without any token proceed anonymously.
func SessionToken(store tokenstore.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sessionID := chi.URLParam(r, "id")
			if sessionID != "" {
				ctx = context.WithValue(ctx, SessionIDKey, sessionID)
			}

			if token, ok := BearerToken(r); ok {
				if sessionID != "" {
					if err := store.Set(ctx, sessionID, token); err != nil {
						LogRequestError(ctx, err, "Failed to remember session token")
					}
				}
				ctx = backend.WithToken(ctx, token)
			} else if sessionID != "" {
				token, err := store.Get(ctx, sessionID)
				switch {
				case err == nil:
					ctx = backend.WithToken(ctx, token)
				case !errors.Is(err, tokenstore.ErrNoToken):
					LogRequestError(ctx, err, "Failed to load session token")
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionID extracts the booking session id from context
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(SessionIDKey).(string); ok {
		return id
	}
	return ""
}
