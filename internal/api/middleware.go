package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hos-shop/internal/models"
	"hos-shop/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID  = "userID"
	ctxIsAdmin = "isAdmin"
)

// SessionStore resolves session tokens to identities.
type SessionStore interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
}

// sessionMiddleware resolves the caller's identity from a bearer token or
// the session cookie. Unauthenticated requests pass through anonymously.
func sessionMiddleware(sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie("session"); err == nil {
				token = cookie
			}
		}

		if token != "" {
			if sess, err := sessions.GetSession(c.Request.Context(), token); err == nil {
				c.Set(ctxUserID, sess.UserID)
				c.Set(ctxIsAdmin, sess.IsAdmin)
			}
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// requireAuth rejects anonymous callers.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ctxUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Niste prijavljeni",
			})
			return
		}
		c.Next()
	}
}

// requireAdmin rejects callers without the admin flag.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ctxUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Niste prijavljeni",
			})
			return
		}
		if !c.GetBool(ctxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Nemate dozvolu za ovu akciju",
			})
			return
		}
		c.Next()
	}
}

// sessionUserID returns the authenticated user id, or nil for guests.
func sessionUserID(c *gin.Context) *int64 {
	if v, exists := c.Get(ctxUserID); exists {
		if id, ok := v.(int64); ok {
			return &id
		}
	}
	return nil
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
