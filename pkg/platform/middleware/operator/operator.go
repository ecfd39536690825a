// Package operator guards the ops surface with a shared operator token whose
// bcrypt hash is configured at boot.
package operator

import (
	"log/slog"
	"net/http"

	"chainid/pkg/requestcontext"
	"chainid/pkg/secrets"
)

// HeaderName carries the operator token.
const HeaderName = "X-Operator-Token"

// RequireOperatorToken rejects requests whose token does not match tokenHash.
// An empty hash disables the ops surface entirely.
func RequireOperatorToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get(HeaderName)
			if tokenHash == "" || token == "" || secrets.Verify(token, tokenHash) != nil {
				logger.WarnContext(ctx, "operator token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"operator token required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
