package api

import (
	"net/http" // HTTP status codes
	"time"     // Cache TTL

	"mobile_sale/internal/domain"     // Record types
	"mobile_sale/internal/repository" // Dataset access
	"mobile_sale/internal/utils"      // Cache utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// listCacheTTL bounds how stale a cached list response may be
const listCacheTTL = 5 * time.Minute

// customersCacheKey is the per-owner customer list cache key
func customersCacheKey(owner string) string {
	return "customers:owner:" + owner
}

// Request struct for adding a customer
type CustomerRequest struct {
	Name    string `json:"name" binding:"required"` // Customer name must be provided
	Address string `json:"address"`                 // Address is optional
	Phone   string `json:"phone"`                   // Phone is optional
	TaxID   string `json:"tax_id"`                  // Tax id is optional
}

// AddCustomerHandler appends a customer owned by the logged-in user.
// Duplicate names are allowed; the record persists immediately.
func AddCustomerHandler(repo *repository.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString("owner") // Owner username from middleware
		var req CustomerRequest       // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		customer := domain.Customer{
			Name:    req.Name,    // Customer name
			Address: req.Address, // Address
			Phone:   req.Phone,   // Phone
			TaxID:   req.TaxID,   // Tax id
			Owner:   owner,       // Tag the record with its owner
		}
		// Persist immediately via the record store
		if err := repo.AddCustomer(c.Request.Context(), customer); err != nil {
			logrus.WithFields(logrus.Fields{
				"owner": owner,       // Owning user
				"name":  req.Name,    // Customer name
				"error": err.Error(), // Store error
			}).Error("Failed to add customer") // Log store failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save customer"})
			return
		}
		// Invalidate the owner's cached customer list
		_ = utils.DeleteCache(c.Request.Context(), rdb, customersCacheKey(owner))
		// Return the created record
		c.JSON(http.StatusCreated, customer)
	}
}

// ListCustomersHandler returns the logged-in user's customers in insertion
// order. Other users' customers are never visible here.
func ListCustomersHandler(repo *repository.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString("owner") // Owner username from middleware
		// Try the cached list first
		var cached []domain.Customer
		if found, err := utils.GetCache(c.Request.Context(), rdb, customersCacheKey(owner), &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"customers": cached, "cached": true})
			return
		}
		customers, err := repo.ListCustomers(c.Request.Context(), owner)
		if err != nil {
			// If the load fails, report and abort; no retry
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load customers"})
			return
		}
		// Cache the fresh list for subsequent reads
		_ = utils.SetCache(c.Request.Context(), rdb, customersCacheKey(owner), customers, listCacheTTL)
		c.JSON(http.StatusOK, gin.H{"customers": customers})
	}
}
