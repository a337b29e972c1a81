// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockpos/internal/domain/auth"
	"stockpos/internal/domain/catalogs/customer"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/catalogs/supplier"
	"stockpos/internal/domain/documents/receipt"
	"stockpos/internal/domain/documents/sale"
	"stockpos/internal/domain/documents/saleret"
	"stockpos/internal/domain/ledger"
	"stockpos/internal/domain/reports"
	"stockpos/internal/domain/valuation"
	"stockpos/internal/infrastructure/http/v1/handlers"
	"stockpos/internal/infrastructure/http/v1/middleware"
	"stockpos/internal/infrastructure/storage/postgres"
	"stockpos/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Logger *logger.Logger

	// Pool backs the readiness probe.
	Pool *pgxpool.Pool

	TokenValidator middleware.TokenValidator

	AuthService      *auth.Service
	LedgerService    *ledger.Service
	ItemService      *item.Service
	CustomerService  *customer.Service
	SupplierService  *supplier.Service
	ReceiptService   *receipt.Service
	SaleService      *sale.Service
	ReturnService    *saleret.Service
	ReportService    *reports.Service
	ValuationService *valuation.Service

	// AuditService is optional; the audit routes are skipped without it.
	AuditService *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters).
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()

	if cfg.Pool != nil {
		healthHandler := handlers.NewHealthHandler(cfg.Pool)
		healthHandler.RegisterRoutes(router.Group("/health"))
	}

	api := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService)

		public := api.Group("/auth")
		protectedAuth := api.Group("/auth")
		protectedAuth.Use(middleware.Auth(cfg.TokenValidator))
		authHandler.RegisterRoutes(public, protectedAuth)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.TokenValidator))

		catalogs := protected.Group("/catalog")
		{
			handlers.NewItemHandler(base, cfg.ItemService, cfg.LedgerService).
				RegisterRoutes(catalogs.Group("/items"))
			handlers.NewCustomerHandler(base, cfg.CustomerService).
				RegisterRoutes(catalogs.Group("/customers"))
			handlers.NewSupplierHandler(base, cfg.SupplierService).
				RegisterRoutes(catalogs.Group("/suppliers"))
		}

		documents := protected.Group("/document")
		{
			handlers.NewReceiptHandler(base, cfg.ReceiptService).
				RegisterRoutes(documents.Group("/receipts"))
			handlers.NewSaleHandler(base, cfg.SaleService).
				RegisterRoutes(documents.Group("/sales"))
			handlers.NewReturnHandler(base, cfg.ReturnService).
				RegisterRoutes(documents.Group("/returns"))
		}

		handlers.NewReportHandler(base, cfg.ReportService).
			RegisterRoutes(protected.Group("/reports"))
		handlers.NewValuationHandler(base, cfg.ValuationService).
			RegisterRoutes(protected.Group("/valuation"))

		if cfg.AuditService != nil {
			handlers.NewAuditHandler(base, cfg.AuditService).
				RegisterRoutes(protected.Group("/audit"))
		}
	}

	return router
}
