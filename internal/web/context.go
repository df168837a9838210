package web

import (
	"net/http"

	"github.com/JonMunkholm/csvcell/internal/core"
)

// requestMetadata adds the client IP and User-Agent to the request context
// so batch logs can attribute work to a caller.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithIPAddress(r.Context(), clientIP(r))
		ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
