package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"paypalexpress/internal/config"
	"paypalexpress/internal/database"
	"paypalexpress/internal/events"
	"paypalexpress/internal/logging"
	"paypalexpress/internal/metrics"
	"paypalexpress/internal/middleware"
	"paypalexpress/internal/modules/auth"
	"paypalexpress/internal/modules/cart"
	"paypalexpress/internal/modules/checkout"
	"paypalexpress/internal/modules/ipn"
	"paypalexpress/internal/modules/payment"
	"paypalexpress/internal/modules/settings"
	"paypalexpress/internal/paypal"
	jwtsvc "paypalexpress/internal/pkg/jwt"
	"paypalexpress/internal/repository"
	"paypalexpress/internal/staging"
)

func main() {
	// .env is optional
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

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Prepare(db, cfg.DatabaseURL, logger); err != nil {
		logger.Fatal("database schema failed", zap.Error(err))
	}

	orderRepo := repository.NewOrderRepository(db)
	recurringRepo := repository.NewRecurringPaymentRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	cartRepo := repository.NewCartRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	deliveryRepo := repository.NewIPNDeliveryRepository(db)

	m := metrics.New(prometheus.DefaultRegisterer)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.KafkaEnabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.PaymentTopic, logger)
		logger.Info("publishing payment events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	outbound := paypal.NewHTTPClient(cfg.PayPal.HTTPTimeout, nil)

	settingsService := settings.NewService(
		settingsRepo,
		settings.DefaultsFromConfig(cfg.PayPal),
		settings.NewLogoValidator(outbound),
		logger,
	)
	settingsHandler := settings.NewHandler(settingsService)

	ppClient := paypal.NewClient(paypal.Options{
		Timeout: cfg.PayPal.HTTPTimeout,
		Logger:  logger,
		Metrics: m,
	})

	paymentService := payment.NewService(ppClient, orderRepo, recurringRepo, settingsService, publisher, m, logger).
		WithStoreName(cfg.StoreName)
	paymentHandler := payment.NewHandler(paymentService, logger)

	state := checkout.NewState(cfg.Staging.TTL)
	sweeper := staging.NewSweeper(cfg.Staging.SweepInterval, logger)
	sweeper.OnSwept(m.RecordSwept)
	state.Register(sweeper)

	shipping := checkout.NewShipping(checkout.NewFixedRateProvider(cfg.ShippingRates), state)
	coordinator := checkout.NewCoordinator(ppClient, cartRepo, customerRepo, settingsService, shipping, state, cfg.StoreURL, cfg.PayPal.Currency, logger)
	pipeline := checkout.NewPipeline(cartRepo, customerRepo, orderRepo, recurringRepo, paymentService, shipping, publisher, m, logger)
	orchestrator := checkout.NewOrchestrator(state, orderRepo, pipeline, settingsService, m, logger)
	checkoutHandler := checkout.NewHandler(coordinator, orchestrator, shipping, cartRepo, state, cfg.StoreURL, logger)

	gateway := ipn.NewGateway(outbound, settingsService)
	reconciler := ipn.NewReconciler(orderRepo, recurringRepo, deliveryRepo, publisher, m, logger)
	ipnHandler := ipn.NewHandler(gateway, reconciler, logger)

	j := jwtsvc.New(cfg.JWT.Secret, cfg.JWT.TTL)
	sessionService, err := auth.NewService(customerRepo, j, j.TTL(), cfg.AdminAPIKey)
	if err != nil {
		logger.Fatal("session service failed", zap.Error(err))
	}
	sessionHandler := auth.NewHandler(sessionService, cfg.AppEnv != "dev", logger)

	cartHandler := cart.NewHandler(cart.NewService(cartRepo), logger)

	r := gin.New()
	r.Use(
		otelgin.Middleware("paypalexpress"),
		middleware.RequestID(),
		middleware.ErrorLogger(logger),
		middleware.CORS(cfg.CORSOrigins...),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// PayPal posts IPN messages unauthenticated; the gateway verifies them.
	ipnHandler.RegisterRoutes(r)

	plugin := r.Group("/Plugins/PaymentPayPalExpressCheckout")
	plugin.Use(middleware.JWTAuth(j))
	checkoutHandler.RegisterRoutes(plugin)

	v1 := r.Group("/api/v1")
	{
		sessionHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		cartHandler.RegisterRoutes(protected)

		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(j), middleware.AdminOnly())
		paymentHandler.RegisterAdminRoutes(admin)
		settingsHandler.RegisterRoutes(admin)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stopSweeper := sweeper.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	close(stopSweeper)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		logger.Error("event publisher close failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
