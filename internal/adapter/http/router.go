package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/goeconomy/internal/adapter/http/handler"
	"github.com/iho/goeconomy/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	BalanceHandler     *handler.BalanceHandler
	TransactionHandler *handler.TransactionHandler
	CurrencyHandler    *handler.CurrencyHandler
	HealthHandler      *handler.HealthHandler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{identifier}", cfg.AccountHandler.Get)
			r.Delete("/{identifier}", cfg.AccountHandler.Delete)
			r.Get("/{identifier}/balance", cfg.BalanceHandler.Get)
			r.Put("/{identifier}/balance", cfg.BalanceHandler.Set)
			r.Get("/{identifier}/balances", cfg.BalanceHandler.List)
			r.Get("/{identifier}/receipts", cfg.TransactionHandler.ListByAccount)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
		})

		// Receipts
		r.Get("/receipts/{id}", cfg.TransactionHandler.GetReceipt)

		// Currencies
		r.Route("/currencies", func(r chi.Router) {
			r.Post("/", cfg.CurrencyHandler.Create)
			r.Get("/", cfg.CurrencyHandler.List)
			r.Get("/{identifier}", cfg.CurrencyHandler.Get)
		})
	})

	return r
}
