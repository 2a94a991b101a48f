package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/handlers"
	custommiddleware "github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/middleware"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/config"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/service"
)

// Services bundles the service dependencies the router wires into handlers.
type Services struct {
	System      *service.SystemService
	Transaction *service.TransactionService
	Aggregation *service.AggregationService
	Rate        *service.RateService
	Rollover    *service.RolloverService
	Period      *service.PeriodService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/transactions", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(services.Transaction)
			r.Get("/", transactionHandler.Transactions)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", transactionHandler.CreateTransaction)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.GetTransaction)
				r.With(custommiddleware.APIKeyMiddleware).Put("/", transactionHandler.UpdateTransaction)
			})
		})

		r.Route("/daily", func(r chi.Router) {
			dailyHandler := handlers.NewDailyHandler(services.Aggregation)
			r.Get("/", dailyHandler.DailyGroups)
		})

		r.Route("/rates", func(r chi.Router) {
			rateHandler := handlers.NewRateHandler(services.Rate)
			r.Get("/", rateHandler.Rates)
			r.With(custommiddleware.APIKeyMiddleware).Post("/override", rateHandler.OverrideRate)
		})

		r.Route("/allocations", func(r chi.Router) {
			allocationHandler := handlers.NewAllocationHandler(services.Rollover)
			r.Get("/", allocationHandler.Allocations)
			r.With(custommiddleware.APIKeyMiddleware).Put("/", allocationHandler.SaveAllocation)
		})

		r.Route("/periods", func(r chi.Router) {
			periodHandler := handlers.NewPeriodHandler(services.Period)
			r.Get("/", periodHandler.Breakdown)
		})
	})

	return r
}
