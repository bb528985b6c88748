package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/sector_radar/internal/service"
	"github.com/iWorld-y/sector_radar/pkg/ratelimit"
)

// apiKeyHeader 鉴权请求头
const apiKeyHeader = "X-API-Key"

// authMiddleware X-API-Key 鉴权。缺失或非法一律 401
func authMiddleware(keys map[string]struct{}, logger log.Logger, next http.Handler) http.Handler {
	helper := log.NewHelper(logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get(apiKeyHeader)
		if apiKey == "" {
			helper.Warn("request made without API key")
			w.Header().Set("WWW-Authenticate", "ApiKey")
			service.WriteJSON(w, http.StatusUnauthorized, &service.ErrorResponse{
				Error: "API key is required. Include X-API-Key header in your request.",
			})
			return
		}
		if _, ok := keys[apiKey]; !ok {
			helper.Warnf("invalid API key attempted: %s...", prefix(apiKey, 8))
			w.Header().Set("WWW-Authenticate", "ApiKey")
			service.WriteJSON(w, http.StatusUnauthorized, &service.ErrorResponse{
				Error: "Invalid API key. Please check your credentials.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware 按 API Key 固定窗口限流。
// 放行与拒绝都会带上 X-RateLimit-* 响应头
func rateLimitMiddleware(limiter *ratelimit.Limiter, logger log.Logger, next http.Handler) http.Handler {
	helper := log.NewHelper(logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get(apiKeyHeader)

		d := limiter.Allow(apiKey)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		w.Header().Set("X-RateLimit-Reset", d.ResetAt.UTC().Format(time.RFC3339))

		if !d.Allowed {
			helper.Warnf("rate limit exceeded for key: %s...", prefix(apiKey, 8))
			w.Header().Set("Retry-After", strconv.Itoa(int(d.RetryAfter.Seconds())+1))
			service.WriteJSON(w, http.StatusTooManyRequests, &service.ErrorResponse{
				Error: fmt.Sprintf("Rate limit exceeded. Limit: %d requests per hour. Try again after %s.",
					d.Limit, d.ResetAt.UTC().Format(time.RFC3339)),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware 捕获 handler panic，返回通用 500
func recoverMiddleware(logger log.Logger, next http.Handler) http.Handler {
	helper := log.NewHelper(logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				helper.Errorf("panic serving %s: %v", r.URL.Path, rec)
				service.WriteJSON(w, http.StatusInternalServerError, &service.ErrorResponse{
					Error: "internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
