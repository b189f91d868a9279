package main

import (
	"context" // Context for the Redis ping
	"log"     // log package is needed for logging

	"mobile_sale/internal/api"        // Custom package for API handlers
	"mobile_sale/internal/auth"       // Custom package for the credential table
	"mobile_sale/internal/cart"       // Custom package for session carts
	"mobile_sale/internal/config"     // Custom package for configuration
	"mobile_sale/internal/invoice"    // Custom package for PDF rendering
	"mobile_sale/internal/middleware" // Custom package for middleware
	"mobile_sale/internal/repository" // Custom package for dataset access
	"mobile_sale/internal/store"      // Custom package for persistence backends

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load the fixed credential table
	creds, err := auth.ParseCredentials(cfg.AuthUsers)
	if err != nil {
		logrus.Fatalf("failed to load credentials: %v", err) // Fatal error if the table is unusable
	}

	// Select the storage backend: one pluggable capability, not a fork
	var backend store.Backend
	eagerCreate := false
	switch cfg.StoreBackend {
	case "github":
		backend = store.NewGitHubBackend(cfg.GitHubAPIURL, cfg.GitHubRepo, cfg.GitHubBranch, cfg.GitHubToken)
	case "local":
		local, err := store.NewLocalBackend(cfg.DataDir)
		if err != nil {
			logrus.Fatalf("failed to open local store: %v", err)
		}
		backend = local
		eagerCreate = true // The local variant materializes missing datasets on load
	default:
		logrus.Fatalf("unknown store backend %q", cfg.StoreBackend)
	}

	repo := repository.NewRepository(backend, eagerCreate) // Dataset repository
	carts := cart.NewManager(repo)                         // Session carts
	renderer := invoice.New(cfg.FontPath)                  // Invoice renderer

	// Setup Redis client; an empty address disables caching and the
	// logout denylist
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance
	r.Use(middleware.RequestLogger())

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/login", api.LoginHandler(creds, cfg.JWTSecret)) // Login endpoint

	// Everything else is gated on a valid session token
	authed := r.Group("/")
	authed.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret, redisClient))
	authed.POST("/logout", api.LogoutHandler(redisClient, carts)) // Logout endpoint

	authed.POST("/customers", api.AddCustomerHandler(repo, redisClient)) // Add customer endpoint
	authed.GET("/customers", api.ListCustomersHandler(repo, redisClient)) // List customers endpoint

	authed.POST("/products", api.AddProductHandler(repo, redisClient)) // Add product endpoint
	authed.GET("/products", api.ListProductsHandler(repo, redisClient)) // List products endpoint

	authed.POST("/cart/lines", api.AddCartLineHandler(carts)) // Add cart line endpoint
	authed.GET("/cart", api.GetCartHandler(carts))            // View cart endpoint
	authed.DELETE("/cart", api.ClearCartHandler(carts))       // Clear cart endpoint

	authed.POST("/orders", api.SubmitOrderHandler(carts, repo, renderer, redisClient)) // Submit order endpoint
	authed.GET("/orders", api.ListOrdersHandler(repo, redisClient))                    // Order history endpoint
	authed.GET("/orders/export", api.ExportOrdersHandler(repo))                        // CSV export endpoint
	authed.GET("/orders/:order_id/invoice", api.InvoiceHandler(repo, renderer))        // Invoice download endpoint
	authed.GET("/orders/:order_id/email", api.EmailLinkHandler(repo))                  // Email compose link endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
