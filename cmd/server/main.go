package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gustavo180591/ecommerce-zapatillas/config"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/controller"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/service"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/db"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/middleware"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/router"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/scheduler"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/logger"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/payment/mercadopago"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/payment/stripe"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Zapatillas Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize Redis (token blacklist)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Initialize payment provider clients
	mpClient, err := mercadopago.NewClient(mercadopago.Config{
		AccessToken: cfg.Payment.MercadoPago.AccessToken,
		BaseURL:     cfg.Payment.MercadoPago.BaseURL,
		SuccessURL:  cfg.Payment.MercadoPago.SuccessURL,
		PendingURL:  cfg.Payment.MercadoPago.PendingURL,
		FailureURL:  cfg.Payment.MercadoPago.FailureURL,
		WebhookURL:  cfg.Payment.MercadoPago.WebhookURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize Mercado Pago client", err)
	}
	stripeClient, err := stripe.NewClient(stripe.Config{
		SecretKey: cfg.Payment.Stripe.SecretKey,
		BaseURL:   cfg.Payment.Stripe.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize Stripe client", err)
	}

	mercadoPagoProvider := service.NewMercadoPagoProvider(mpClient)
	stripeProvider := service.NewStripeProvider(stripeClient)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	variantRepo := repository.NewVariantRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	paymentRepo := repository.NewPaymentRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())

	// Initialize services
	policy := service.NewTotalsPolicy(cfg.Pricing)
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	pricingService := service.NewPricingService(productRepo, variantRepo)
	stockService := service.NewStockService(productRepo, variantRepo)
	productService := service.NewProductService(productRepo, variantRepo)
	cartService := service.NewCartService(cartRepo, productRepo, variantRepo, pricingService, stockService, policy)
	orderService := service.NewOrderService(orderRepo, cartRepo, pricingService, stockService, policy)
	paymentService := service.NewPaymentService(orderRepo, paymentRepo, mercadoPagoProvider, stripeProvider)
	reviewService := service.NewReviewService(reviewRepo, productRepo)
	reconcileService := service.NewReconcileService(
		db.GetDB(),
		orderRepo,
		paymentRepo,
		variantRepo,
		mercadoPagoProvider,
		stripeProvider,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService, cartService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	paymentController := controller.NewPaymentController(paymentService, reconcileService, mercadoPagoProvider)
	reviewController := controller.NewReviewController(reviewService)
	adminController := controller.NewAdminController(productService, orderService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the reconcile sweeper
	paymentScheduler := scheduler.NewPaymentScheduler(cfg.Payment.ReconcileCron, reconcileService)
	if err := paymentScheduler.Start(); err != nil {
		logger.Fatal("Failed to start payment scheduler", err)
	}
	defer paymentScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		cartController,
		orderController,
		paymentController,
		reviewController,
		adminController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
