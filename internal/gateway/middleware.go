package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"prism/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionChecker reports whether a device session is still live.
// Satisfied by devices.Service and devices.LivenessChecker.
type SessionChecker interface {
	Active(ctx context.Context, sessionToken string) (bool, error)
}

// identityHeaders are set by the gateway after token validation and must
// never be accepted from the client.
var identityHeaders = []string{"X-User-ID", "X-Session-Token"}

// JWTAuthMiddleware validates the Bearer access token, checks that the
// device session behind it is still live, and injects identity headers
// for the proxied request. When required is false, anonymous requests
// pass through with the identity headers stripped; downstream services
// decide whether the endpoint needs a user.
func JWTAuthMiddleware(tokens *auth.TokenManager, sessions SessionChecker, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range identityHeaders {
			c.Request.Header.Del(h)
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"detail": "Authentication required",
				})
				return
			}
			c.Next()
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Invalid authorization header",
			})
			return
		}

		claims, err := tokens.ParseAccess(tokenStr)
		if err != nil {
			detail := "Invalid token"
			if err == auth.ErrTokenExpired {
				detail = "Token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
			return
		}

		alive, err := sessions.Active(c.Request.Context(), claims.SessionToken)
		if err != nil {
			slog.Error("device liveness check failed",
				"error", err,
				"request_id", c.GetString("request_id"))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"detail": "Service unavailable",
			})
			return
		}
		if !alive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Session revoked",
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Request.Header.Set("X-User-ID", claims.UserID)
		c.Request.Header.Set("X-Session-Token", claims.SessionToken)

		c.Next()
	}
}

// CORSMiddleware handles CORS for the gateway.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Device-Name, X-Device-OS")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for tracing.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()

		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Request.Header.Set("X-Request-ID", requestID)

		c.Next()
	}
}

// LoggingMiddleware logs every request passing through the gateway.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		status := c.Writer.Status()

		attrs := []any{
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", float64(latency.Milliseconds()),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"response_size", c.Writer.Size(),
		}

		if query != "" {
			attrs = append(attrs, "query", query)
		}
		if userID, exists := c.Get("user_id"); exists {
			attrs = append(attrs, "user_id", userID)
		}
		if upstreamService, exists := c.Get("upstream_service"); exists {
			attrs = append(attrs, "upstream_service", upstreamService)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.Error("request failed", attrs...)
		case status >= 400:
			slog.Warn("request rejected", attrs...)
		default:
			slog.Info("request completed", attrs...)
		}
	}
}
