package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort      string // Application port
	JWTSecret    string // JWT secret key
	AuthUsers    string // Credential table: "user:secret,user:secret"
	StoreBackend string // Storage backend: "local" or "github"
	DataDir      string // Directory for local datasets
	GitHubToken  string // GitHub API token for the remote store
	GitHubRepo   string // Remote repository in "owner/name" form
	GitHubBranch string // Branch holding the datasets
	GitHubAPIURL string // API base URL (override for testing)
	FontPath     string // Path to the localized invoice font, may be absent
	RedisAddr    string // Redis server address, empty disables caching
	RedisPass    string // Redis password
	RedisDB      int    // Redis database number
	IsProd       bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	cfg := &Config{
		AppPort:      os.Getenv("APP_PORT"),          // Application port
		JWTSecret:    os.Getenv("JWT_SECRET"),        // JWT secret key
		AuthUsers:    os.Getenv("AUTH_USERS"),        // Credential table
		StoreBackend: os.Getenv("STORE_BACKEND"),     // Storage backend selector
		DataDir:      os.Getenv("DATA_DIR"),          // Local dataset directory
		GitHubToken:  os.Getenv("GITHUB_TOKEN"),      // Remote store token
		GitHubRepo:   os.Getenv("GITHUB_REPO"),       // Remote store repository
		GitHubBranch: os.Getenv("GITHUB_BRANCH"),     // Remote store branch
		GitHubAPIURL: os.Getenv("GITHUB_API_URL"),    // Remote store API base
		FontPath:     os.Getenv("FONT_PATH"),         // Invoice font asset
		RedisAddr:    os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:    os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:      redisDB,                        // Redis database number
		IsProd:       os.Getenv("IS_PROD") == "true", // Is production environment
	}
	// Defaults for the common local deployment
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = "local"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.GitHubBranch == "" {
		cfg.GitHubBranch = "main"
	}
	return cfg
}
