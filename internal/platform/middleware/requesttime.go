package middleware

import (
	"net/http"
	"time"

	"foodshare/pkg/requestcontext"
)

// RequestTime captures the current time at the start of the request and
// stores it in the context. All operations within a single request observe
// the same "now", which keeps domain timestamps and emitted events
// consistent.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
