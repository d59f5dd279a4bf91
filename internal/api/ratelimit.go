package api

import (
	"math"
	"net"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

// authRateLimit is a huma middleware that limits auth operations per client IP.
// It answers 429 with a Retry-After header when the bucket is empty.
func (s *Server) authRateLimit(ctx huma.Context, next func(huma.Context)) {
	key := clientIP(ctx.RemoteAddr(), ctx.Header)

	if !s.authRateLimiter.Allow(key) {
		retry := s.authRateLimiter.RetryAfter(key)
		s.logger.WarnContext(ctx.Context(), "Rate limit exceeded",
			"ip", key,
			"operation", ctx.Operation().OperationID,
		)
		ctx.SetHeader("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
		_ = huma.WriteErr(s.api, ctx, 429, "too many requests",
			domainerrors.RateLimited("Too many requests. Please try again later."))
		return
	}

	next(ctx)
}

// clientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to the
// remote address.
func clientIP(remoteAddr string, header func(string) string) string {
	if xff := header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := header("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
