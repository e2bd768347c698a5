package main

import (
	"context"
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/server"
	"storefront/internal/services"
	"storefront/internal/validator"
)

// @title           Storefront API
// @version         1.0
// @description     Storefront admin API: authentication, role-gated administration and the audit trail of privileged actions.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Audit trail, with the Redis dead-letter queue when configured
	db := dbManager.DB()
	auditStore := services.NewAuditStore(db)
	auditOpts := []services.AuditOption{services.WithWriteTimeout(appConfig.AuditWriteTimeout)}
	if appConfig.RedisURL != "" {
		rdb, err := database.NewRedisClient(context.Background(), appConfig.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		auditOpts = append(auditOpts, services.WithDeadLetterQueue(
			services.NewRedisDeadLetterQueue(rdb, appConfig.AuditDeadLetterKey)))
		log.Infow("audit dead-letter queue enabled", "key", appConfig.AuditDeadLetterKey)
	} else {
		log.Warn("REDIS_URL not set; failed audit writes are logged but not queued for replay")
	}

	router := server.NewRouter(server.Deps{
		Tokens:        middleware.NewTokenManager(appConfig.JWTSecret, appConfig.JWTExpirationDur),
		MetricsAPIKey: appConfig.MetricsAPIKey,
		Users:         services.NewUserService(db),
		Orders:        services.NewOrderService(db),
		Products:      services.NewProductService(db),
		Categories:    services.NewCategoryService(db),
		Audit:         services.NewAuditService(auditStore, auditOpts...),
		AuditQuery:    services.NewAuditQueryService(auditStore, db),
	})

	log.Infof("Starting storefront API on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
