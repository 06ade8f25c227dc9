// internal/api/middleware.go
package api

import (
	"strconv"
	"strings"
	"time"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/common/metrics"
	"recruitflow/internal/models"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "session"

// RequestLogger logs one line per request with method, route, status and
// latency, and records the request duration histogram.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())

		log.Info("request", map[string]interface{}{
			"method":   c.Request.Method,
			"route":    route,
			"status":   status,
			"duration": elapsed.String(),
		})
	}
}

// SessionResolver resolves a bearer token to a session.
type SessionResolver interface {
	Resolve(c *gin.Context) (userID, email, role string, err error)
}

// Authenticated rejects requests without a valid bearer session.
func Authenticated(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, email, role, err := resolver.Resolve(c)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		c.Set(sessionContextKey, sessionInfo{UserID: userID, Email: email, Role: role})
		c.Next()
	}
}

// RequireRole rejects authenticated requests whose session role is not in
// the allowed set. Admin passes everything.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := currentSession(c)
		if !ok {
			apperrors.Respond(c, apperrors.NewSessionInvalid())
			return
		}
		if session.Role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, role := range roles {
			if session.Role == role {
				c.Next()
				return
			}
		}
		apperrors.Respond(c, apperrors.NewForbidden("insufficient role for this operation"))
	}
}

type sessionInfo struct {
	UserID string
	Email  string
	Role   string
}

func currentSession(c *gin.Context) (sessionInfo, bool) {
	v, exists := c.Get(sessionContextKey)
	if !exists {
		return sessionInfo{}, false
	}
	info, ok := v.(sessionInfo)
	return info, ok
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
