package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safepack/tracking-service/models"
	"github.com/safepack/tracking-service/services"
	"go.uber.org/zap"
)

const (
	// SessionCookie carries the admin session id for browser clients.
	SessionCookie = "admin_session"
	// SessionHeader carries it for API clients.
	SessionHeader = "X-Session-ID"

	sessionKey = "admin_session"
)

// SessionID returns the session id presented by the request, if any.
func SessionID(c *gin.Context) string {
	if id := c.GetHeader(SessionHeader); id != "" {
		return id
	}
	if id, err := c.Cookie(SessionCookie); err == nil {
		return id
	}
	return ""
}

// RequireSession aborts with 401 unless the request carries a live admin
// session, which is then available through CurrentSession.
func RequireSession(auth services.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := auth.Session(c.Request.Context(), SessionID(c))
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				logger.Error("Session lookup failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// CurrentSession returns the session stored by RequireSession.
func CurrentSession(c *gin.Context) *models.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*models.Session); ok {
			return s
		}
	}
	return nil
}
