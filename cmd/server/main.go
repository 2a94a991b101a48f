package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/cache"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/config"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/database"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/fxprovider"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/ledger"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/rates"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/repository"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply pending migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	transactionRepo := repository.NewTransactionRepository(db)
	rateRepo := repository.NewRateRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Hydrate the in-memory rate table from stored rates
	rateTable := rates.NewTable(rateRepo)
	if err := rateTable.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load rate table: %v", err)
	}

	resultCache := cache.New(int64(cfg.Reconciliation.FetchConcurrency), cfg.Reconciliation.CacheTTL)

	systemService := service.NewSystemService(db)
	settingsService, err := service.NewSettingsService(settingsRepo, cfg.Ledger.FernetKey)
	if err != nil {
		log.Fatalf("Failed to initialize settings service: %v", err)
	}

	// The ledger credential is stored encrypted; a missing key just means
	// reconciliation runs unauthenticated against the configured endpoint.
	ledgerAPIKey, err := settingsService.LedgerAPIKey(context.Background())
	if err != nil {
		log.Printf("Could not read ledger API key: %v", err)
	}
	ledgerClient := ledger.NewClient(cfg.Ledger.BaseURL, ledgerAPIKey)

	rateProvider := fxprovider.NewHTTPClient(cfg.RateProvider.BaseURL)

	// Create services
	transactionService := service.NewTransactionService(
		transactionRepo,
	)
	aggregationService := service.NewAggregationService(
		transactionRepo,
		rateTable,
		resultCache,
		ledgerClient,
		cfg.Reconciliation.CacheTTL,
	)
	rateService := service.NewRateService(
		rateTable,
		rateRepo,
		resultCache,
		rateProvider,
	)
	rolloverService := service.NewRolloverService(
		allocationRepo,
		aggregationService,
		cfg.Reconciliation.AllocationDebounce,
	)
	periodService := service.NewPeriodService(
		transactionRepo,
		periodRepo,
	)

	// Nightly rate auto-fetch
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.RateProvider.FetchSchedule, rateService.RunDailyFetch); err != nil {
		log.Fatalf("Failed to schedule rate fetch: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Transaction: transactionService,
		Aggregation: aggregationService,
		Rate:        rateService,
		Rollover:    rolloverService,
		Period:      periodService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
