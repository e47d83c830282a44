package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dare-backend/internal/services"
)

const (
	ContextWallet    = "wallet"
	ContextSessionID = "session_id"
)

func AuthMiddleware(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextWallet, claims.Wallet)
		c.Set(ContextSessionID, claims.SessionID)

		c.Next()
	}
}

// RateLimitMiddleware limits requests per wallet, or per client IP on routes that
// carry no session.
func RateLimitMiddleware(limiter services.RateLimiter, action string, limit int, log *logrus.Logger) gin.HandlerFunc {
	window := time.Minute

	return func(c *gin.Context) {
		subject := c.GetString(ContextWallet)
		if subject == "" {
			subject = c.ClientIP()
		}

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), subject, action, limit, window)
		if err != nil {
			// Fail open: Redis being down must not block settlement.
			log.WithError(err).WithField("action", action).Warn("Rate limit check failed")
			c.Next()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
