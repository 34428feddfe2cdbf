package container

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/application/service"
	"github.com/fnev4/fnev4/internal/infrastructure/excel"
	"github.com/fnev4/fnev4/internal/infrastructure/external/dgi"
	"github.com/fnev4/fnev4/internal/infrastructure/persistence/repository"
	"github.com/fnev4/fnev4/internal/infrastructure/persistence/sqlite"
	"github.com/fnev4/fnev4/internal/infrastructure/storage"
	"github.com/fnev4/fnev4/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	Database       *database.DB
	SqlDB          *sql.DB
	TransactionMgr *sqlite.DB
}

// ExcelBundle holds the workbook readers and writers.
type ExcelBundle struct {
	InvoiceReader    *excel.InvoiceReader
	ClientReader     *excel.ClientReader
	TemplateExporter *excel.TemplateExporter
	ParseCache       *excel.ParseCache[*excel.ParseResult]
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Excel      *ExcelBundle
	CertClient port.CertificationClient
	Settings   service.CertificationSettings
	Logger     *zap.Logger
}

// ProvideDatabase opens the SQLite database and applies the embedded
// migrations.
func ProvideDatabase(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		BusyTimeout:     cfg.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(ctx, database.Migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		Database:       db,
		SqlDB:          db.DB,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Client:        repository.NewClientRepository(sqlDB, logger),
		Invoice:       repository.NewInvoiceRepository(sqlDB, logger),
		ImportSession: repository.NewImportSessionRepository(sqlDB, logger),
		VatType:       repository.NewVatTypeRepository(sqlDB, logger),
		ApiLog:        repository.NewApiLogRepository(sqlDB, logger),
	}, nil
}

// ProvideCertificationClient creates the DGI FNE API client.
func ProvideCertificationClient(cfg *FNEConfig, logger *zap.Logger) (port.CertificationClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("fne config is required")
	}
	if cfg.APIKey == "" {
		logger.Warn("FNE API key not configured, certification calls will fail")
	}

	return dgi.NewClient(dgi.Config{
		BaseURL:             cfg.BaseURL,
		APIKey:              cfg.APIKey,
		Timeout:             cfg.Timeout,
		VerificationBaseURL: cfg.VerificationBaseURL,
	}, logger), nil
}

// ProvideStorage creates the upload directory and its file storage.
func ProvideStorage(cfg *ImportConfig, logger *zap.Logger) (*storage.LocalFileStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("import config is required")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return storage.NewLocalFileStorage(cfg.UploadDir, logger), nil
}

// ProvideExcel creates the Sage 100 and client workbook components.
func ProvideExcel(cfg *ImportConfig, logger *zap.Logger) *ExcelBundle {
	var cache *excel.ParseCache[*excel.ParseResult]
	if cfg.CacheEnabled {
		cache = excel.NewParseCache[*excel.ParseResult]()
	}

	return &ExcelBundle{
		InvoiceReader:    excel.NewInvoiceReader(excel.NewSage100Parser(logger), cache),
		ClientReader:     excel.NewClientReader(excel.NewClientSheetParser(logger)),
		TemplateExporter: excel.NewTemplateExporter(logger),
		ParseCache:       cache,
	}
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil || deps.Excel == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.CertClient == nil {
		return nil, fmt.Errorf("certification client is required")
	}

	logger := &zapLoggerAdapter{logger: deps.Logger}
	repos := deps.Repos

	validator := service.NewInvoiceValidator(repos.Client, repos.Invoice)

	return &ServiceBundle{
		InvoiceImport: service.NewInvoiceImportService(
			deps.Excel.InvoiceReader,
			validator,
			repos.Invoice,
			repos.ImportSession,
			deps.TxManager,
			logger,
		),
		ClientImport: service.NewClientImportService(
			deps.Excel.ClientReader,
			deps.Excel.TemplateExporter,
			repos.Client,
			repos.ImportSession,
			deps.TxManager,
			logger,
		),
		Certification: service.NewCertificationService(
			repos.Invoice,
			repos.Client,
			repos.ApiLog,
			deps.TxManager,
			deps.CertClient,
			deps.Settings,
			logger,
		),
		Invoice: service.NewInvoiceService(repos.Invoice, repos.ApiLog, logger),
		Client:  service.NewClientService(repos.Client, repos.ImportSession, repos.VatType, logger),
	}, nil
}
