// Package middleware provides HTTP middleware components for the site
// gateway including request logging, rate limiting, security headers, and
// panic recovery. The request gate itself lives in the gate package; this
// stack wraps around it.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pixfil/yogapluriel-sub002/internal/config"
	"github.com/pixfil/yogapluriel-sub002/internal/constants"
	"github.com/pixfil/yogapluriel-sub002/pkg/logger"
)

const (
	// HTTPClientError minimum status code (4xx).
	HTTPClientError = 400
	// HTTPServerError minimum status code (5xx).
	HTTPServerError = 500
)

// Stack holds all middleware dependencies and provides
// methods to create HTTP middleware handlers.
type Stack struct {
	config  *config.Config
	limiter *redis_rate.Limiter
	logger  *logrus.Logger
}

// NewStack creates a new middleware stack with the provided dependencies.
// The redisClient parameter is optional and only used for rate limiting.
// If nil, rate limiting will be disabled (useful for the in-memory session
// store fallback).
func NewStack(cfg *config.Config, redisClient *redis.Client, logger *logrus.Logger) *Stack {
	var limiter *redis_rate.Limiter
	if redisClient != nil {
		limiter = redis_rate.NewLimiter(redisClient)
	}

	return &Stack{
		config:  cfg,
		limiter: limiter,
		logger:  logger,
	}
}

// Chain applies multiple middleware functions to an HTTP handler.
func (m *Stack) Chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := range middleware {
		h = middleware[len(middleware)-1-i](h)
	}
	return h
}

// RequestLogger logs HTTP requests with structured logging including
// request details, response status, and processing duration. It also
// assigns the request its correlation ID.
func (m *Stack) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := uuid.NewString()
		ctx := logger.SetCorrelationID(r.Context(), requestID)
		r = r.WithContext(ctx)

		// Wrap response writer to capture the status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		wrapped.Header().Set(constants.HeaderXRequestID, requestID)

		next.ServeHTTP(wrapped, r)

		// Health probes would drown out everything else
		if strings.HasPrefix(r.URL.Path, "/healthz") {
			return
		}

		duration := time.Since(start)

		fields := logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"query":       r.URL.RawQuery,
			"status":      wrapped.statusCode,
			"duration_ms": duration.Milliseconds(),
			"remote_addr": getClientIP(r),
			"user_agent":  r.UserAgent(),
		}

		if referer := r.Header.Get(constants.HeaderReferer); referer != "" {
			fields["referer"] = referer
		}

		level := logrus.InfoLevel
		if wrapped.statusCode >= HTTPClientError {
			level = logrus.WarnLevel
		}
		if wrapped.statusCode >= HTTPServerError {
			level = logrus.ErrorLevel
		}

		logger.WithCorrelationID(r.Context(), m.logger).WithFields(fields).Log(level, "HTTP request processed")
	})
}

// RateLimit implements Redis-based rate limiting per client IP address
// using a token bucket with configurable requests per second and burst.
func (m *Stack) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clientIP := getClientIP(r)

		// Allow requests from trusted proxies without rate limiting
		if m.isTrustedProxy(clientIP) {
			next.ServeHTTP(w, r)
			return
		}

		// If limiter is not available (e.g., memory-store fallback), allow request
		if m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		rateLimitKey := "gw:ratelimit:client:" + clientIP

		result, err := m.limiter.Allow(ctx, rateLimitKey, redis_rate.Limit{
			Rate:   m.config.Security.RateLimitRPS,
			Burst:  m.config.Security.RateLimitBurst,
			Period: time.Second,
		})
		if err != nil {
			m.logger.WithError(err).Error("Failed to check rate limit")
			// Allow request on error to avoid blocking legitimate traffic
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-Ratelimit-Limit", strconv.Itoa(result.Limit.Burst))
		w.Header().Set("X-Ratelimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-Ratelimit-Reset", strconv.FormatInt(time.Now().Add(result.ResetAfter).Unix(), 10))

		if result.Allowed == 0 {
			m.logger.WithFields(logrus.Fields{
				"client_ip": clientIP,
				"path":      r.URL.Path,
				"method":    r.Method,
			}).Warn("Rate limit exceeded")

			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders adds security-related HTTP headers to responses.
func (m *Stack) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// HSTS header for HTTPS
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

// Recovery recovers from panics and logs them while returning a proper error response.
func (m *Stack) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithCorrelationID(r.Context(), m.logger).WithFields(logrus.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
					"panic":  err,
				}).Error("Panic recovered")

				w.Header().Set(constants.HeaderContentType, constants.ContentTypePlainUTF8)
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("An unexpected error occurred"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter

	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// getClientIP extracts the real client IP address from various headers.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (load balancers, proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	// Check X-Real-IP header (nginx, some proxies)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	return strings.Split(r.RemoteAddr, ":")[0]
}

// isTrustedProxy checks if the IP address is in the trusted proxies list.
func (m *Stack) isTrustedProxy(ip string) bool {
	for _, trustedIP := range m.config.Security.TrustedProxies {
		if ip == trustedIP {
			return true
		}
	}
	return false
}
