// Package container provides dependency injection and lifecycle management
// for FNEV4 following Clean Architecture principles.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// FNE (DGI certification API) configuration
	FNE FNEConfig

	// Import and storage configuration
	Import ImportConfig

	// Server configuration
	Server ServerConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file, or ":memory:"
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// BusyTimeout is how long SQLite waits on a locked database
	BusyTimeout time.Duration
}

// FNEConfig holds DGI API settings and the seller values sent with invoices.
type FNEConfig struct {
	BaseURL             string
	APIKey              string
	Timeout             time.Duration
	VerificationBaseURL string

	Establishment     string
	PointOfSale       string
	SellerName        string
	CommercialMessage string
	Footer            string
}

// ImportConfig holds upload and parsing settings.
type ImportConfig struct {
	// UploadDir receives workbooks posted to the HTTP API
	UploadDir string

	// MaxUploadSize is the largest accepted upload in bytes
	MaxUploadSize int64

	// CacheEnabled keeps parsed invoice workbooks in memory
	CacheEnabled bool
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind to
	Host string

	// Port to listen on
	Port int

	// ReadTimeout for HTTP server
	ReadTimeout time.Duration

	// WriteTimeout for HTTP server
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/fnev4.db",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			BusyTimeout:     5 * time.Second,
		},
		FNE: FNEConfig{
			Timeout: 30 * time.Second,
		},
		Import: ImportConfig{
			UploadDir:     "data/uploads",
			MaxUploadSize: 20 << 20,
			CacheEnabled:  true,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
	}
}

// Validate checks that required configuration values are present.
// FNE settings are only required once an API key is set: imports work
// without them and the DGI client reports the missing key on use.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.FNE.APIKey != "" && c.FNE.BaseURL == "" {
		return fmt.Errorf("fne.base_url is required when fne.api_key is set")
	}
	if c.Import.UploadDir == "" {
		return fmt.Errorf("import.upload_dir is required")
	}
	if c.Import.MaxUploadSize <= 0 {
		return fmt.Errorf("import.max_upload_size must be positive")
	}
	return nil
}
