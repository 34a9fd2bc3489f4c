package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/davidnhn/book-social-network/shared/auth"
	"github.com/davidnhn/book-social-network/shared/interceptor"
)

// AccessLog writes one zerolog event per request and echoes the id assigned by
// middleware.RequestID in the response headers.
func AccessLog(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := middleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set(middleware.RequestIDHeader, requestID)
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

// Session attaches the caller identity when the request carries a valid bearer token.
// Paths under bypassPrefix are never inspected. Any verification failure lets the
// request through unauthenticated; RequireIdentity rejects it where needed.
func Session(verifier interceptor.SessionVerifier, logger *zerolog.Logger, bypassPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, bypassPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := auth.IdentityFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("session verification failed")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireIdentity answers 401 when no identity was attached to the request.
func RequireIdentity(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.IdentityFromContext(r.Context()); !ok {
				writeError(w, r, logger, errUnauthenticated)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
