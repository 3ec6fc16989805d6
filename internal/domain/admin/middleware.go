package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/vrroom/booking-bff/internal/middleware"
	"github.com/vrroom/booking-bff/internal/pkg/jwt"
	"github.com/vrroom/booking-bff/internal/pkg/logger"
	"github.com/vrroom/booking-bff/internal/pkg/response"
)

// RoleAdmin is the role every admin route requires.
const RoleAdmin = "ADMIN"

// AdminContextKey for context values
type AdminContextKey string

const (
	ContextAdminEmail AdminContextKey = "admin_email"
)

// RequireAdmin verifies the bearer token signature and requires the ADMIN
// role. With a nil verifier every request is refused. The caller is recorded
// on the request logger for the audit trail.
func RequireAdmin(verifier *jwt.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				response.Forbidden(w, "Admin access is not configured")
				return
			}
			token, ok := middleware.BearerToken(r)
			if !ok {
				response.Unauthorized(w, "Authorization header required")
				return
			}
			claims, err := verifier.Validate(token)
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					response.Unauthorized(w, "Token expired")
					return
				}
				response.Unauthorized(w, "Invalid admin token")
				return
			}
			if !claims.HasRole(RoleAdmin) {
				logger.LogWarn(r.Context(), "Admin route refused", "subject", claims.Subject)
				response.Forbidden(w, "Admin role required")
				return
			}

			who := claims.Email
			if who == "" {
				who = claims.Subject
			}
			ctx := context.WithValue(r.Context(), ContextAdminEmail, who)
			l := logger.FromContext(ctx).With().Str("admin", who).Logger()
			ctx = logger.WithContext(ctx, &l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdminEmail extracts the caller recorded by RequireAdmin
func GetAdminEmail(ctx context.Context) string {
	if email, ok := ctx.Value(ContextAdminEmail).(string); ok {
		return email
	}
	return ""
}
