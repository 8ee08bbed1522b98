package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/storefront-gateway/internal/backend"
	"github.com/flicky/storefront-gateway/internal/config"
	"github.com/flicky/storefront-gateway/internal/handler"
	"github.com/flicky/storefront-gateway/internal/middleware"
	"github.com/flicky/storefront-gateway/internal/repository"
	"github.com/flicky/storefront-gateway/internal/service"
	"github.com/flicky/storefront-gateway/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}

	if err := repository.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		log.Error("run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := worker.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Backend API client
	apiClient := backend.New(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout)

	// Repositories
	checkoutRepo := repository.NewCheckoutRepository(dbPool)

	// Services
	identitySvc := service.NewIdentityService(apiClient)
	cartSvc := service.NewCartService(apiClient)
	catalogSvc := service.NewCatalogService(apiClient, redisClient)
	orderSvc := service.NewOrderService(apiClient)
	publisher := worker.NewPublisher(amqpCh)
	checkoutSvc := service.NewCheckoutService(apiClient, checkoutRepo, publisher, cfg.Payment.PublishableKey)

	// Session guard
	guard := middleware.NewSessionGuard(apiClient, identitySvc, cfg.Backend.FrontendURL, cfg.Session.Secret, cfg.Session.TTL)

	// Handlers
	cartH := handler.NewCartHandler(cartSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	checkoutH := handler.NewCheckoutHandler(checkoutSvc, cfg.Payment.WebhookSecret)
	healthH := handler.NewHealthHandler(dbPool, redisClient, amqpConn)

	// Worker
	orderWorker := worker.NewOrderWorker(amqpCh, apiClient, redisClient, log)

	// Router
	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)
	router.POST("/webhooks/payment", checkoutH.Webhook)

	api := router.Group("/api", guard.Middleware())
	{
		api.GET("/products", catalogH.List)
		api.GET("/products/:id", catalogH.GetByID)
		api.POST("/products", catalogH.Create)
		api.PUT("/products/:id", catalogH.Update)
		api.GET("/products/:id/reviews", catalogH.ListReviews)
		api.POST("/reviews", catalogH.CreateReview)

		api.GET("/cart", cartH.GetCart)
		api.POST("/cart/items", cartH.AddItem)
		api.PUT("/cart/items", cartH.UpdateItem)
		api.DELETE("/cart/items", cartH.RemoveItem)

		api.POST("/checkout", checkoutH.Begin)
		api.POST("/checkout/complete", checkoutH.Complete)

		api.GET("/orders", orderH.ListOrders)
	}

	if err := orderWorker.Start(ctx); err != nil {
		log.Error("start order worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	orderWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}
