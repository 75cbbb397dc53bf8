package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ovenlight/crumb-checkout/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

type sessionIDKey struct{}

// Session resolves the checkout session id from the request, minting one for
// first-time callers and echoing it back so the client can persist it.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(sessionIDHeader)
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(sessionIDHeader, sessionID)

			ctx := context.WithValue(r.Context(), sessionIDKey{}, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the resolved session id, or empty when the
// middleware did not run.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return id
	}
	return ""
}
