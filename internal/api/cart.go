package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"mobile_sale/internal/cart"       // Session carts
	"mobile_sale/internal/repository" // Lookup error sentinels

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for adding a cart line
type CartLineRequest struct {
	Product  string `json:"product" binding:"required"`       // Product name must be provided
	Quantity int    `json:"quantity" binding:"required,gt=0"` // Quantity must be positive
}

// AddCartLineHandler appends a line to the logged-in user's cart. The unit
// price is snapshotted from the catalog now and not re-resolved later.
func AddCartLineHandler(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString("owner") // Owner username from middleware
		var req CartLineRequest       // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		userCart := carts.Get(owner) // The session cart for this user
		line, err := userCart.AddLine(c.Request.Context(), req.Product, req.Quantity)
		if errors.Is(err, repository.ErrNoSuchProduct) {
			// Unknown product name
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		if errors.Is(err, cart.ErrBadQuantity) {
			// Quantity below one
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be positive"})
			return
		}
		if err != nil {
			// Catalog load failed
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up product"})
			return
		}
		// Return the added line and the running total
		c.JSON(http.StatusOK, gin.H{"line": line, "total": userCart.Total()})
	}
}

// GetCartHandler returns the current cart contents and total
func GetCartHandler(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString("owner") // Owner username from middleware
		userCart := carts.Get(owner)  // The session cart for this user
		c.JSON(http.StatusOK, gin.H{"lines": userCart.Lines(), "total": userCart.Total()})
	}
}

// ClearCartHandler discards the cart without submitting
func ClearCartHandler(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString("owner") // Owner username from middleware
		carts.Get(owner).Clear()      // Drop all lines
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
