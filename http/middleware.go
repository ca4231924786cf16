package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/boldorider4/kvfront"
	"github.com/go-chi/chi/v5/middleware"
)

type tokenKey struct{}

type requestToken struct {
	value   string
	present bool
}

// WithToken stores the extracted bearer token in ctx.
func WithToken(ctx context.Context, token string, present bool) context.Context {
	return context.WithValue(ctx, tokenKey{}, requestToken{value: token, present: present})
}

// TokenFromContext returns the token stored by TokenMiddleware.
func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey{}).(requestToken)
	if !ok {
		return "", false
	}
	return t.value, t.present
}

// TokenMiddleware extracts the bearer token once per request and stores it
// in the request context.
func TokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := kvfront.BearerToken(r)
		next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token, ok)))
	})
}

// RecordTokenMiddleware writes every request's token to the store, keyed by
// the token itself. Requests without a token are recorded under
// kvfront.NoTokenKey. A failed write is logged and the request proceeds.
func RecordTokenMiddleware(store Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := recordKey(r.Context())
			if err := store.Record(r.Context(), key, key); err != nil {
				slog.Warn("failed to record request token", "key", key, "error", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func recordKey(ctx context.Context) string {
	if token, ok := TokenFromContext(ctx); ok {
		return token
	}
	return kvfront.NoTokenKey
}

// RequestLogger logs one line per request after it completes.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
