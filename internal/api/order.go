package api

import (
	"encoding/base64" // Inline invoice payload
	"errors"          // Error inspection
	"net/http"        // HTTP status codes
	"net/url"         // Mailto link encoding
	"strings"         // Mailto link encoding

	"mobile_sale/internal/cart"       // Session carts
	"mobile_sale/internal/domain"     // Record types
	"mobile_sale/internal/invoice"    // PDF rendering
	"mobile_sale/internal/repository" // Dataset access
	"mobile_sale/internal/utils"      // Cache utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// ordersCacheKey is the per-owner order history cache key
func ordersCacheKey(owner string) string {
	return "orders:owner:" + owner
}

// Request struct for submitting the cart as an order
type SubmitOrderRequest struct {
	Customer string `json:"customer" binding:"required"` // Customer selection must be non-empty
	Note     string `json:"note"`                        // Free-text note is optional
}

// SubmitOrderHandler converts the session cart into a persisted order and
// hands back the rendered invoice inline. Order persistence and invoice
// rendering are not transactional: a render failure is reported but the
// order stays persisted, and the document can be re-fetched later.
func SubmitOrderHandler(carts *cart.Manager, repo *repository.Repository, renderer *invoice.Renderer, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString("owner") // Owner username from middleware
		var req SubmitOrderRequest    // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// Missing customer selection blocks submission
			c.JSON(http.StatusBadRequest, gin.H{"error": "Customer is required"})
			return
		}
		userCart := carts.Get(owner) // The session cart for this user
		order, err := userCart.Submit(c.Request.Context(), req.Customer, req.Note)
		switch {
		case errors.Is(err, cart.ErrEmptyCart):
			// An empty cart must not mutate the order dataset
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		case errors.Is(err, repository.ErrNoSuchCustomer):
			// The customer must exist and belong to this user
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		case err != nil:
			// Store failure: the cart stays populated so the user can retry
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order"})
			return
		}
		// Invalidate the owner's cached order history
		_ = utils.DeleteCache(c.Request.Context(), rdb, ordersCacheKey(owner))
		// Render the invoice for download; the order is already persisted
		customer, cerr := repo.GetCustomer(c.Request.Context(), owner, order.Customer)
		if cerr != nil {
			customer = domain.Customer{Name: order.Customer, Owner: owner}
		}
		doc, rerr := renderer.Render(order, customer)
		if rerr != nil {
			logrus.WithFields(logrus.Fields{
				"order_id": order.OrderID, // Persisted order, not rolled back
				"error":    rerr.Error(),  // Render error
			}).Error("Invoice rendering failed") // Log render failure
			// Surface the error alongside the persisted order
			c.JSON(http.StatusCreated, gin.H{"order": order, "invoice_error": "Failed to render invoice"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"order":       order,                                  // The persisted record
			"invoice_pdf": base64.StdEncoding.EncodeToString(doc), // Inline document for download
		})
	}
}

// ListOrdersHandler returns the logged-in user's order history in
// insertion order; other users' orders are never visible here.
func ListOrdersHandler(repo *repository.Repository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString("owner") // Owner username from middleware
		// Try the cached history first
		var cached []domain.Order
		if found, err := utils.GetCache(c.Request.Context(), rdb, ordersCacheKey(owner), &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"orders": cached, "cached": true})
			return
		}
		orders, err := repo.ListOrders(c.Request.Context(), owner)
		if err != nil {
			// If the load fails, report and abort; no retry
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
			return
		}
		// Cache the fresh history for subsequent reads
		_ = utils.SetCache(c.Request.Context(), rdb, ordersCacheKey(owner), orders, listCacheTTL)
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// ExportOrdersHandler streams the logged-in user's order history as
// delimited text for download
func ExportOrdersHandler(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString("owner") // Owner username from middleware
		data, err := repo.ExportOrders(c.Request.Context(), owner)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export orders"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="orders_`+owner+`.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
	}
}

// InvoiceHandler re-renders the invoice document for one of the logged-in
// user's orders
func InvoiceHandler(repo *repository.Repository, renderer *invoice.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString("owner")  // Owner username from middleware
		orderID := c.Param("order_id") // Order identifier from the path
		order, err := repo.GetOrder(c.Request.Context(), owner, orderID)
		if errors.Is(err, repository.ErrNoSuchOrder) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
			return
		}
		// The customer record supplies the address block; a since-missing
		// record falls back to the denormalized name on the order
		customer, cerr := repo.GetCustomer(c.Request.Context(), owner, order.Customer)
		if cerr != nil {
			customer = domain.Customer{Name: order.Customer, Owner: owner}
		}
		doc, err := renderer.Render(order, customer)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"order_id": orderID,     // Requested order
				"error":    err.Error(), // Render error
			}).Error("Invoice rendering failed") // Log render failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render invoice"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="invoice_`+orderID+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", doc)
	}
}

// EmailLinkHandler returns a mailto link pre-filled with a subject and body
// referencing the order id and total, for the compose-email surface
func EmailLinkHandler(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString("owner")  // Owner username from middleware
		orderID := c.Param("order_id") // Order identifier from the path
		order, err := repo.GetOrder(c.Request.Context(), owner, orderID)
		if errors.Is(err, repository.ErrNoSuchOrder) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
			return
		}
		subject := "Order " + order.OrderID
		body := "Order " + order.OrderID + " for " + order.Customer +
			", total " + invoice.FormatMoney(order.Total)
		link := "mailto:?subject=" + mailtoEscape(subject) + "&body=" + mailtoEscape(body)
		c.JSON(http.StatusOK, gin.H{"mailto": link})
	}
}

// mailtoEscape percent-encodes mailto parameter values; QueryEscape's '+'
// for spaces is not understood by mail clients
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
