package testutil

import (
	"net/http"
	"time"

	id "foodshare/pkg/domain"
	"foodshare/pkg/requestcontext"
)

// WithIdentity adds a caller identity to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithIdentity(req *http.Request, identity id.Identity) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), identity))
}

// WithTime pins the request-scoped clock, as the request time middleware would.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
