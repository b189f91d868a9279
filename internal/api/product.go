package api

import (
	"net/http" // HTTP status codes

	"mobile_sale/internal/domain"     // Record types
	"mobile_sale/internal/repository" // Dataset access
	"mobile_sale/internal/utils"      // Cache utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// productsCacheKey caches the shared catalog; it is global, not per owner
const productsCacheKey = "products:all"

// Request struct for adding a product
type ProductRequest struct {
	SKU   string  `json:"sku" binding:"required"`        // SKU must be provided
	Name  string  `json:"name" binding:"required"`       // Product name must be provided
	Price float64 `json:"price" binding:"required,gt=0"` // Unit price must be positive
}

// AddProductHandler appends a product to the shared catalog. Products have
// no owner and are visible to every user; uniqueness is not enforced.
func AddProductHandler(repo *repository.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		product := domain.Product{SKU: req.SKU, Name: req.Name, Price: req.Price}
		// Persist immediately via the record store
		if err := repo.AddProduct(c.Request.Context(), product); err != nil {
			logrus.WithFields(logrus.Fields{
				"sku":   req.SKU,     // Product SKU
				"name":  req.Name,    // Product name
				"error": err.Error(), // Store error
			}).Error("Failed to add product") // Log store failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save product"})
			return
		}
		// Invalidate the shared catalog cache
		_ = utils.DeleteCache(c.Request.Context(), rdb, productsCacheKey)
		// Return the created record
		c.JSON(http.StatusCreated, product)
	}
}

// ListProductsHandler returns the whole shared catalog in insertion order
func ListProductsHandler(repo *repository.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try the cached catalog first
		var cached []domain.Product
		if found, err := utils.GetCache(c.Request.Context(), rdb, productsCacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"products": cached, "cached": true})
			return
		}
		products, err := repo.ListProducts(c.Request.Context())
		if err != nil {
			// If the load fails, report and abort; no retry
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
			return
		}
		// Cache the fresh catalog for subsequent reads
		_ = utils.SetCache(c.Request.Context(), rdb, productsCacheKey, products, listCacheTTL)
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}
