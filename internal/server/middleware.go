package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/emberdate/ember-server/internal/auth"
	"github.com/emberdate/ember-server/internal/cache"
	"github.com/emberdate/ember-server/internal/logger"
)

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// AuthMiddleware validates the bearer token, rejects blacklisted (logged
// out) tokens, and attaches the caller's identity to the request context.
func AuthMiddleware(tokens *auth.JWTManager, rdb *cache.RedisCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeUnauthorized(w, "authorization header required")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				writeUnauthorized(w, "invalid authorization header")
				return
			}
			raw := parts[1]

			if rdb != nil {
				blacklisted, err := rdb.IsTokenBlacklisted(r.Context(), raw)
				if err != nil {
					logger.Warn("token blacklist lookup failed", "error", err)
				} else if blacklisted {
					writeUnauthorized(w, "token has been revoked")
					return
				}
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{
				UserID: claims.UserID,
				Token:  raw,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs one line per request with method, path, status and
// latency.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
