package middleware

import (
	"time" // Request latency

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Request correlation ids
	"github.com/sirupsen/logrus" // Logging library
)

// RequestLogger tags each request with a correlation id and logs method,
// path, status and latency once the handler chain completes
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString() // Fresh correlation id per request
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)
		start := time.Now()
		c.Next() // Run the handler chain
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,                        // Correlation id
			"method":     c.Request.Method,                 // HTTP method
			"path":       c.Request.URL.Path,               // Request path
			"status":     c.Writer.Status(),                // Response status
			"latency_ms": time.Since(start).Milliseconds(), // Handler latency
		}).Info("Request handled")
	}
}
