// Package requesttime captures a single "now" per request so every timestamp
// written while serving it (validated_at, audit events) agrees.
package requesttime

import (
	"net/http"
	"time"

	"unibuild/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request
// and stores it in the context for consistent time references throughout the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
