package middleware

import (
	"net/http"                   // HTTP status codes
	"strings"                    // String manipulation
	"mobile_sale/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// DenylistKey is the cache key holding a revoked token id
func DenylistKey(tokenID string) string {
	return "auth:denylist:" + tokenID
}

// JWTAuthMiddleware validates session tokens and records the owner username
// in the request context. Tokens revoked by logout are rejected via the
// Redis denylist; with no Redis configured the denylist check is skipped.
func JWTAuthMiddleware(secret string, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string and parse it
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the session token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		// Reject tokens revoked by logout
		var revoked bool
		if found, err := utils.GetCache(c.Request.Context(), rdb, DenylistKey(claims.ID), &revoked); err == nil && found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session has been logged out"})
			return
		}
		c.Set("owner", claims.Username) // Store the owner username in context
		c.Set("tokenID", claims.ID)     // Store the token id for logout
		if claims.ExpiresAt != nil {
			c.Set("tokenExp", claims.ExpiresAt.Time) // Bounds the logout denylist TTL
		}
		c.Next() // Proceed to the next handler
	}
}
