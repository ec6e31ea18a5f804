package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartcampus/portal/internal/models"
	"smartcampus/portal/internal/security"
	"smartcampus/portal/internal/service"
)

const (
	sessionKey = "current_session"
	claimsKey  = "access_claims"
)

func Auth(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		session, claims, err := sessions.Authenticate(c.Request.Context(), tokenStr)
		if err != nil {
			code := "invalid_token"
			switch {
			case errors.Is(err, service.ErrDeviceMismatch):
				code = "session_mismatch"
			case errors.Is(err, service.ErrSessionExpired):
				code = "session_expired"
			case !errors.Is(err, service.ErrUnauthorized):
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session_lookup_failed"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code})
			return
		}

		sessions.Touch(c.Request.Context(), session.ID, c.ClientIP(), c.GetHeader("User-Agent"))

		c.Set(sessionKey, session)
		c.Set(claimsKey, *claims)

		c.Next()
	}
}

// CurrentSession returns the session resolved by Auth.
func CurrentSession(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}

func CurrentClaims(c *gin.Context) (security.AccessClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return security.AccessClaims{}, false
	}
	claims, ok := v.(security.AccessClaims)
	return claims, ok
}
