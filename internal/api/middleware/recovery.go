package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/residentdesk/residentdesk/internal/api/response"
)

// Recovery is middleware that recovers from panics and returns a 500 error.
// http.ErrAbortHandler is re-raised so the server can drop the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}
			requestID := GetRequestID(r.Context())
			slog.Error("panic recovered",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"requestId", requestID,
				"stack", string(debug.Stack()),
			)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", requestID)
		}()
		next.ServeHTTP(w, r)
	})
}
