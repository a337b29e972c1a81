// Package main provides a CLI tool for seeding the database with
// initial data: the bootstrap admin account and optional demo records.
package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"stockpos/internal/core/apperror"
	"stockpos/internal/core/types"
	"stockpos/internal/domain/auth"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/catalogs/supplier"
	"stockpos/internal/infrastructure/storage/postgres"
	"stockpos/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	users := postgres.NewUserRepo(txManager)

	if err := seedAdminUser(ctx, users, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, txManager, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding complete")
}

func seedAdminUser(ctx context.Context, users auth.UserRepository, log *logger.Logger) error {
	username := envOr("ADMIN_USERNAME", "admin")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return fmt.Errorf("ADMIN_PASSWORD environment variable is required")
	}

	exists, err := users.Exists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		log.Infow("admin user already exists", "username", username)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := auth.NewUser(username, string(hash), "ADMIN")
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	log.Infow("admin user created", "username", username, "id", admin.ID)
	return nil
}

func seedDemoData(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	items := postgres.NewItemRepo(txManager)
	suppliers := postgres.NewSupplierRepo(txManager)

	demoItems := []*item.Item{
		newDemoItem("GROC-0001", "Basmati Rice 5kg", "12.50", "Groceries", 20),
		newDemoItem("GROC-0002", "Sunflower Oil 1L", "3.20", "Groceries", 30),
		newDemoItem("BEVG-0001", "Sparkling Water 500ml", "0.90", "Beverages", 50),
	}
	for _, it := range demoItems {
		if _, err := items.GetBySKU(ctx, it.SKU); err == nil {
			continue
		} else if !apperror.IsNotFound(err) {
			return err
		}
		if err := items.Create(ctx, it); err != nil {
			return err
		}
		log.Infow("demo item created", "sku", it.SKU)
	}

	sp := supplier.New("Acme Wholesale")
	contact := "Dana Reeves"
	sp.ContactPerson = &contact
	if err := suppliers.Create(ctx, sp); err != nil {
		return err
	}
	log.Infow("demo supplier created", "name", sp.Name)

	return seedDemoCashier(ctx, postgres.NewUserRepo(txManager), log)
}

func seedDemoCashier(ctx context.Context, users auth.UserRepository, log *logger.Logger) error {
	const username = "cashier"

	exists, err := users.Exists(ctx, username)
	if err != nil || exists {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("cashier123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	cashier := auth.NewUser(username, string(hash), "CASHIER")
	if err := users.Create(ctx, cashier); err != nil {
		return err
	}

	log.Infow("demo cashier created", "username", username)
	return nil
}

func newDemoItem(sku, name, price, category string, reorder int64) *item.Item {
	it := item.New(sku, name, types.MustMoney(price))
	it.Category = &category
	it.ReorderLevel = reorder
	return it
}

func envOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
