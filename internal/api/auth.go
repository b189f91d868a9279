package api

import (
	"net/http" // HTTP status codes
	"time"     // Denylist TTL

	"mobile_sale/internal/auth"       // Credential table
	"mobile_sale/internal/cart"       // Session carts
	"mobile_sale/internal/middleware" // Denylist key helper
	"mobile_sale/internal/utils"      // JWT and cache utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Request struct for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // Session token
}

// LoginHandler authenticates a user against the fixed credential table and
// returns a session token. There is no lockout or rate limiting; a failed
// attempt simply re-prompts.
func LoginHandler(creds auth.Credentials, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Check the username/password pair against the credential table
		if !creds.Authenticate(req.Username, req.Password) {
			// If invalid, return unauthorized so the caller re-prompts
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate the session token carrying the owner username
		token, err := utils.GenerateJWT(req.Username, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		logrus.WithField("username", req.Username).Info("User logged in") // Log successful login
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// LogoutHandler clears the session: the presented token is denylisted for
// its remaining lifetime and the user's cart is discarded. Without Redis
// the token stays valid until expiry, which matches the single-process
// session model.
func LogoutHandler(rdb *redis.Client, carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString("owner")       // Owner username from middleware
		tokenID := c.GetString("tokenID")   // Token id from middleware
		exp, _ := c.Get("tokenExp")         // Token expiry from middleware
		carts.Drop(owner)                   // Discard the session cart
		ttl := 24 * time.Hour               // Fallback TTL
		if t, ok := exp.(time.Time); ok {
			ttl = time.Until(t) // Deny exactly for the token's remaining life
		}
		if ttl > 0 {
			if err := utils.SetCache(c.Request.Context(), rdb, middleware.DenylistKey(tokenID), true, ttl); err != nil {
				// If the denylist write fails, report it; the token would stay usable
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
				return
			}
		}
		logrus.WithField("username", owner).Info("User logged out") // Log logout
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
