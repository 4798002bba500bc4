package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/CuentaClara/cuenta-clara-backend/config"
	"github.com/CuentaClara/cuenta-clara-backend/db"
	"github.com/CuentaClara/cuenta-clara-backend/handlers"
	"github.com/CuentaClara/cuenta-clara-backend/internal/gateway"
	"github.com/CuentaClara/cuenta-clara-backend/internal/store/postgres"
	"github.com/CuentaClara/cuenta-clara-backend/logger"
	"github.com/CuentaClara/cuenta-clara-backend/models"
	"github.com/CuentaClara/cuenta-clara-backend/router"
	"github.com/CuentaClara/cuenta-clara-backend/services"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const appVersion = "1.0.0"

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL())
	if err != nil {
		log.Fatalf("Failed to parse database config: %v", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	if cfg.Server.Environment == config.EnvProduction {
		poolConfig.ConnConfig.TLSConfig = &tls.Config{
			ServerName: cfg.Database.Host,
			MinVersion: tls.VersionTLS12,
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisOptions := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.UseTLS {
		redisOptions.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	redisClient := redis.NewClient(redisOptions)
	defer redisClient.Close()

	// Stores
	groupStore := postgres.NewGroupStore(pool)
	contactStore := postgres.NewContactStore(pool)
	expenseStore := postgres.NewExpenseStore(pool)
	paymentStore := postgres.NewPaymentStore(pool)

	// Services
	lockService := services.NewPaymentLockService(redisClient, 30*time.Second)
	healthService := services.NewHealthService(pool, redisClient, appVersion)
	gatewayClient := gateway.NewHTTPClient(
		cfg.MercadoPago.BaseURL,
		cfg.MercadoPago.AccessToken,
		time.Duration(cfg.MercadoPago.TimeoutSeconds)*time.Second,
	)

	// Models
	groupModel := models.NewGroupModel(groupStore, contactStore)
	expenseModel := models.NewExpenseModel(expenseStore, groupModel)
	settlementModel := models.NewSettlementModel(groupModel, expenseStore, paymentStore)
	paymentModel := models.NewPaymentModel(
		paymentStore,
		groupModel,
		gatewayClient,
		lockService,
		cfg.Server.BackendURL+"/v1/payments/webhook",
		time.Duration(cfg.MercadoPago.PendingTTLMinutes)*time.Minute,
	)

	r := router.SetupRouter(router.Dependencies{
		Config:            cfg,
		HealthHandler:     handlers.NewHealthHandler(healthService),
		GroupHandler:      handlers.NewGroupHandler(groupModel),
		ExpenseHandler:    handlers.NewExpenseHandler(expenseModel),
		SettlementHandler: handlers.NewSettlementHandler(settlementModel),
		PaymentHandler:    handlers.NewPaymentHandler(paymentModel, cfg.MercadoPago.WebhookSecret),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
}
