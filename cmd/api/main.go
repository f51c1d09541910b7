package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andesalud/clinica-backend/internal/adapters/cache"
	"github.com/andesalud/clinica-backend/internal/adapters/database"
	"github.com/andesalud/clinica-backend/internal/adapters/events"
	"github.com/andesalud/clinica-backend/internal/api/handlers"
	"github.com/andesalud/clinica-backend/internal/api/middleware"
	"github.com/andesalud/clinica-backend/internal/api/routes"
	"github.com/andesalud/clinica-backend/internal/application/services"
	"github.com/andesalud/clinica-backend/internal/domain/providers"
	"github.com/andesalud/clinica-backend/internal/domain/repositories"
	"github.com/andesalud/clinica-backend/internal/infrastructure/clients/postgres"
	"github.com/andesalud/clinica-backend/internal/infrastructure/clients/redis"
	"github.com/andesalud/clinica-backend/internal/infrastructure/observability"
	"github.com/andesalud/clinica-backend/pkg/config"
	"github.com/andesalud/clinica-backend/pkg/secrets"
)

func main() {

	// Pull secrets (DB password, Redis password) from Vault into the
	// environment before the config layer reads it
	vaultCtx, vaultCancel := context.WithTimeout(context.Background(), 10*time.Second)
	vaultResult, err := secrets.ApplyVaultSecrets(vaultCtx, secrets.LoadVaultConfigFromEnv(""))
	vaultCancel()
	if err != nil {
		log.Fatalf("Failed to load secrets from Vault: %v", err)
	}
	if vaultResult.Enabled {
		log.Printf("Vault secrets loaded from %s (loaded=%d skipped=%d)",
			vaultResult.Path, vaultResult.Loaded, vaultResult.Skipped)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the engine works without caching or
		// live pending-list updates
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for live pending-list updates
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize adapters

	// Tariffs are read-only at runtime; wrap with caching when Redis is up
	baseTariffAdapter := database.NewTariffAdapter(pgClient)
	var tariffAdapter repositories.TariffRepository
	if cacheProvider != nil {
		tariffAdapter = database.NewCachedTariffAdapter(baseTariffAdapter, cacheProvider)
		log.Println("Tariff adapter wrapped with caching layer")
	} else {
		tariffAdapter = baseTariffAdapter
		log.Println("Tariff adapter running without cache (Redis unavailable)")
	}

	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	profileAdapter := database.NewInsuranceProfileAdapter(pgClient)
	entryAdapter := database.NewReconciliationEntryAdapter(pgClient)

	// Initialize services

	pricingService := services.NewPricingService(cfg.Pricing.FonasaRate, cfg.Pricing.IsapreRate)

	bookingService := services.NewBookingService(
		appointmentAdapter,
		tariffAdapter,
		profileAdapter,
		pricingService,
	)

	reconciliationService := services.NewReconciliationService(
		appointmentAdapter,
		entryAdapter,
		eventBus,
	)

	// Initialize handlers

	bookingHandler := handlers.NewBookingHandler(bookingService)
	reconciliationHandler := handlers.NewReconciliationHandler(reconciliationService, metrics)
	tariffHandler := handlers.NewTariffHandler(tariffAdapter)
	profileHandler := handlers.NewProfileHandler(profileAdapter)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Println("Cache middleware initialized successfully")
	}

	// Set up router

	router := routes.NewRouter(
		bookingHandler,
		reconciliationHandler,
		tariffHandler,
		profileHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}
