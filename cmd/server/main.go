// Package main is the entry point for the stockpos API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockpos/internal/core/id"
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
	"stockpos/internal/infrastructure/cache"
	v1 "stockpos/internal/infrastructure/http/v1"
	"stockpos/internal/infrastructure/storage/postgres"
	"stockpos/pkg/logger"
	"stockpos/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockpos server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Cache ---
	var valuationCache valuation.Cache = cache.NewNoop()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisCache, err := cache.NewRedis(ctx, cache.Config{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		})
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer redisCache.Close()
		valuationCache = redisCache
		log.Infow("redis cache enabled", "addr", addr)
	}

	// --- Repositories ---
	itemRepo := postgres.NewItemRepo(txManager)
	customerRepo := postgres.NewCustomerRepo(txManager)
	supplierRepo := postgres.NewSupplierRepo(txManager)
	receiptRepo := postgres.NewReceiptRepo(txManager)
	saleRepo := postgres.NewSaleRepo(txManager)
	returnRepo := postgres.NewReturnRepo(txManager)
	userRepo := postgres.NewUserRepo(txManager)
	reportRepo := postgres.NewReportRepo(txManager)

	// --- Services ---
	num := numerator.New(txManager)
	ledgerService := ledger.NewService(itemRepo)

	itemService := item.NewService(itemRepo, num)
	customerService := customer.NewService(customerRepo)
	supplierService := supplier.NewService(supplierRepo)

	receiptService := receipt.NewService(receiptRepo, itemRepo, ledgerService, num, txManager)
	saleService := sale.NewService(saleRepo, itemRepo, customerRepo, ledgerService, num, txManager)
	returnService := saleret.NewService(returnRepo, saleRepo, ledgerService, num, txManager)

	valuationService := valuation.NewService(receiptRepo, itemRepo, valuationCache)
	reportService := reports.NewService(reportRepo, valuationService, txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	// Confirmed receipts change the cost basis; drop the stale averages.
	receiptService.OnConfirmed(func(ctx context.Context, doc *receipt.Receipt) {
		itemIDs := make([]id.ID, 0, len(doc.Lines))
		for _, line := range doc.Lines {
			itemIDs = append(itemIDs, line.ItemID)
		}
		valuationService.Invalidate(ctx, itemIDs)
	})
	receiptService.OnConfirmed(func(ctx context.Context, doc *receipt.Receipt) {
		err := auditService.LogChange(ctx, "goods_receipt", doc.ID, postgres.AuditActionConfirm, map[string]any{
			"number":     doc.Number,
			"total_cost": doc.TotalCost,
			"lines":      len(doc.Lines),
		})
		if err != nil {
			log.Warnw("failed to write audit entry", "receipt_id", doc.ID, "error", err)
		}
	})
	saleService.OnCheckedOut(func(ctx context.Context, doc *sale.Sale) {
		err := auditService.LogChange(ctx, "sale", doc.ID, postgres.AuditActionSale, map[string]any{
			"number": doc.Number,
			"total":  doc.TotalAmount,
			"lines":  len(doc.Lines),
		})
		if err != nil {
			log.Warnw("failed to write audit entry", "sale_id", doc.ID, "error", err)
		}
	})
	returnService.OnProcessed(func(ctx context.Context, doc *saleret.Return) {
		err := auditService.LogChange(ctx, "sale_return", doc.ID, postgres.AuditActionReturn, map[string]any{
			"number":  doc.Number,
			"sale_id": doc.SaleID,
			"refund":  doc.RefundAmount,
		})
		if err != nil {
			log.Warnw("failed to write audit entry", "return_id", doc.ID, "error", err)
		}
	})

	// --- Auth ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(
		getEnv("JWT_SECRET", "dev-secret-change-in-production"),
	))
	authService := auth.NewService(userRepo, txManager, jwtService, auth.DefaultServiceConfig())

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:           log,
		Pool:             pool.Unwrap(),
		TokenValidator:   jwtService,
		AuthService:      authService,
		LedgerService:    ledgerService,
		ItemService:      itemService,
		CustomerService:  customerService,
		SupplierService:  supplierService,
		ReceiptService:   receiptService,
		SaleService:      saleService,
		ReturnService:    returnService,
		ReportService:    reportService,
		ValuationService: valuationService,
		AuditService:     auditService,
	})

	// --- HTTP server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
