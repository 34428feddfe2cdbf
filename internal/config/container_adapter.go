package config

import (
	"github.com/fnev4/fnev4/internal/container"
	"github.com/fnev4/fnev4/pkg/utils"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			BusyTimeout:     c.Database.BusyTimeout,
		},
		FNE: container.FNEConfig{
			BaseURL:             c.FNE.BaseURL,
			APIKey:              c.FNE.APIKey,
			Timeout:             c.FNE.Timeout,
			VerificationBaseURL: c.FNE.VerificationBaseURL,
			Establishment:       c.FNE.Establishment,
			PointOfSale:         c.FNE.PointOfSale,
			SellerName:          c.FNE.SellerName,
			CommercialMessage:   c.FNE.CommercialMessage,
			Footer:              c.FNE.Footer,
		},
		Import: container.ImportConfig{
			UploadDir:     c.Import.UploadDir,
			MaxUploadSize: c.Import.MaxUploadSize,
			CacheEnabled:  c.Import.CacheEnabled,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
	}
}

// ToLoggerConfig converts the logger section for utils.NewLogger.
func (c *Config) ToLoggerConfig() utils.LoggerConfig {
	return utils.LoggerConfig{
		Level:      c.Logger.Level,
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
	}
}
