package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"paypalexpress/internal/config"
	"paypalexpress/internal/database"
	"paypalexpress/internal/domain"
	"paypalexpress/internal/logging"
	jwtsvc "paypalexpress/internal/pkg/jwt"
	"paypalexpress/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	seedStoreID = 1
	seedEmail   = "sandbox-buyer@example.com"
)

// Seeds a buyer with a mixed cart and prints a session token for trying the
// sandbox checkout from a browser.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Prepare(db, cfg.DatabaseURL, logger); err != nil {
		logger.Fatal("schema failed", zap.Error(err))
	}

	ctx := context.Background()
	customers := repository.NewCustomerRepository(db)
	carts := repository.NewCartRepository(db)

	customer, err := customers.FindOrCreateByEmail(ctx, seedStoreID, seedEmail)
	if err != nil {
		logger.Fatal("customer not created", zap.Error(err))
	}
	if err := carts.Clear(ctx, seedStoreID, customer.ID); err != nil {
		logger.Fatal("cart not cleared", zap.Error(err))
	}

	items := []domain.CartItem{
		{SKU: "TSHIRT-BLK-M", Name: "T-Shirt black M", Quantity: 2, UnitPrice: 15},
		{SKU: "MUG-001", Name: "Coffee mug", Quantity: 1, UnitPrice: 8.5},
		{SKU: "EBOOK-GO", Name: "Go e-book", Quantity: 1, UnitPrice: 9.99, IsDownload: true},
	}
	for i := range items {
		items[i].StoreID = seedStoreID
		items[i].CustomerID = customer.ID
		if err := carts.Add(ctx, &items[i]); err != nil {
			logger.Fatal("cart item not created", zap.String("sku", items[i].SKU), zap.Error(err))
		}
	}

	j := jwtsvc.New(cfg.JWT.Secret, cfg.JWT.TTL)
	token, err := j.GenerateToken(customer.ID, seedStoreID, jwtsvc.RoleCustomer, uuid.NewString())
	if err != nil {
		logger.Fatal("token not issued", zap.Error(err))
	}

	fmt.Printf("customer %d (%s) has %d cart items\n", customer.ID, customer.Email, len(items))
	fmt.Printf("Authorization: Bearer %s\n", token)
	fmt.Printf("start checkout: %sPlugins/PaymentPayPalExpressCheckout/SubmitButton\n", cfg.StoreURL)
}
