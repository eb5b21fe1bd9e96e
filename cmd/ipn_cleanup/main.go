package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"paypalexpress/internal/config"
	"paypalexpress/internal/database"
	"paypalexpress/internal/logging"
	"paypalexpress/internal/repository"

	"go.uber.org/zap"
)

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
	defer func() { _ = logger.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}

	cutoff := time.Now().UTC().Add(-cfg.IPNRetention)
	n, err := repository.NewIPNDeliveryRepository(db).PruneBefore(context.Background(), cutoff)
	if err != nil {
		logger.Fatal("ipn cleanup failed", zap.Error(err))
	}
	logger.Info("ipn cleanup completed", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
}
