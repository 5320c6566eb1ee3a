package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	router "github.com/Project-mardianto/algoplus-app/internal/app"
	"github.com/Project-mardianto/algoplus-app/internal/database"
	"github.com/Project-mardianto/algoplus-app/internal/logger"
	"github.com/Project-mardianto/algoplus-app/internal/metrics"
	"github.com/Project-mardianto/algoplus-app/internal/middlewares"
	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/Project-mardianto/algoplus-app/internal/realtime"
	"github.com/Project-mardianto/algoplus-app/internal/services"
	"github.com/Project-mardianto/algoplus-app/internal/utils"
	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := NewConfig()

	if err := logger.Initialize(config.logLevel, config.env); err != nil {
		log.Fatalf("Logger wasn't initialized due to %s", err)
	}

	db, err := database.New(ctx, config.dsn)
	if err != nil {
		log.Fatalf("Database wasn't initialized due to %s", err)
	}

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Migrations weren't run due to %s", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.redisAddr,
		Password: config.redisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis isn't reachable due to %s", err)
	}

	hub := realtime.NewHub()
	broker := realtime.NewRedisBroker(redisClient, realtime.DefaultChannel, hub)
	go func() {
		if err := broker.Relay(ctx); err != nil {
			logger.Log.Error("Order update relay stopped", zap.Error(err))
		}
	}()

	orderMetrics := metrics.NewOrderMetrics(nil)
	jobQueueService := services.NewJobQueueService(ctx, 100, 2)
	notificationService := services.NewNotificationService(
		db,
		jobQueueService,
		services.NewMailer(config.sendgridAPIKey, config.mailFrom, "AirGalon"),
	)
	jwtService := services.NewJWTService(config.authSecretKey)
	authService := services.NewAuthService(db)

	for _, login := range config.supplierLogins {
		if err := authService.GrantRole(ctx, login, models.RoleSupplier); err != nil {
			logger.Log.Warn("Supplier role wasn't granted", zap.String("login", login), zap.Error(err))
		}
	}

	app := router.New(
		router.Config{
			Endpoint:       config.endpoint,
			AllowedOrigins: config.allowedOrigins,
			TrustProxy:     config.trustProxy,
		},
		middlewares.Services{
			Auth:     authService,
			JWT:      jwtService,
			Password: services.NewPasswordService(db, jwtService, notificationService, config.appURL),
			Order:    services.NewOrderService(db, broker, notificationService, orderMetrics),
			Checkout: services.NewCheckoutService(
				db,
				services.NewRedisCheckoutStore(redisClient, services.DefaultCheckoutTTL),
				services.NewMidtransGateway(config.midtransServerKey, services.MidtransEnvironment(config.midtransEnv)),
				broker,
				notificationService,
				orderMetrics,
			),
			Catalog:      services.NewCatalogService(db),
			Profile:      services.NewProfileService(db),
			Notification: notificationService,
		},
		hub,
	)

	utils.HandleTerminationProcess(func() error {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()

		var result *multierror.Error

		if err := app.Shutdown(shutdownCtx); err != nil {
			result = multierror.Append(result, err)
		}
		cancel()
		jobQueueService.Shutdown()
		if err := redisClient.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		if err := db.Close(); err != nil {
			result = multierror.Append(result, err)
		}

		if err := result.ErrorOrNil(); err != nil {
			logger.Log.Error("Shutdown finished with errors", zap.Error(err))
			return err
		}
		logger.Log.Info("Shutdown finished")
		return nil
	})

	if err := app.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server stopped due to %s", err)
	}

	// Run returns as soon as Shutdown starts; the termination handler exits.
	select {}
}
