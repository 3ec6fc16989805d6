package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/vrroom/booking-bff/internal/pkg/logger"
	"github.com/vrroom/booking-bff/internal/pkg/response"
)

// Recover turns a handler panic into a 500 and logs it with the request's
// logger. http.ErrAbortHandler is re-raised so the server aborts the response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromContext(r.Context()).Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("session_id", GetSessionID(r.Context())).
				Msg("Panic recovered")

			response.InternalError(w)
		}()

		next.ServeHTTP(w, r)
	})
}
