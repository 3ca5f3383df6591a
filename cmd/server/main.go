package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/iho/goeconomy/internal/adapter/http"
	"github.com/iho/goeconomy/internal/adapter/http/handler"
	postgresRepo "github.com/iho/goeconomy/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goeconomy/internal/adapter/repository/redis"
	"github.com/iho/goeconomy/internal/domain"
	"github.com/iho/goeconomy/internal/infrastructure/config"
	"github.com/iho/goeconomy/internal/infrastructure/logger"
	"github.com/iho/goeconomy/internal/infrastructure/metrics"
	"github.com/iho/goeconomy/internal/infrastructure/postgres"
	"github.com/iho/goeconomy/internal/infrastructure/redis"
	"github.com/iho/goeconomy/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Node: cfg.NodeName})
	log.Logger = appLogger

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	idGen := postgresRepo.NewULIDGenerator()
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool, idGen).WithMetrics(m)
	currencyRepo := postgresRepo.NewCurrencyRepository(pool).WithMetrics(m)
	receiptRepo := postgresRepo.NewReceiptRepository(pool, txManager, idGen).WithMetrics(m)
	identity := redisRepo.NewIdentity(redisClient)
	delivery := redisRepo.NewDelivery(redisClient, cfg.NodeName, appLogger)

	// Initialize use cases
	currencyUC := usecase.NewCurrencyUseCase(currencyRepo, nil, nil, appLogger).WithMetrics(m)
	holdingsUC := usecase.NewHoldingsUseCase(currencyUC, accountRepo, appLogger)
	accountUC := usecase.NewAccountUseCase(identity, accountRepo, appLogger).WithMetrics(m)
	backlogUC := usecase.NewBacklogUseCase(delivery, cfg.NodeName, cfg.BacklogReplayInterval, appLogger).WithMetrics(m)
	transactionUC := usecase.NewTransactionUseCase(accountUC, holdingsUC, receiptRepo, backlogUC, cfg.NodeName, appLogger).WithMetrics(m)

	transactionUC.AddGroup(usecase.CheckGroup{
		Name: "standard",
		Checks: []domain.Check{
			usecase.RegionCheck{Currencies: currencyUC},
			usecase.FundsCheck{},
			usecase.MaximumCheck{},
		},
	})
	transactionUC.RegisterType(&domain.TransactionType{Identifier: "pay"})
	transactionUC.RegisterType(&domain.TransactionType{Identifier: "give"})
	transactionUC.RegisterType(&domain.TransactionType{Identifier: "take"})

	formatter := usecase.NewFormatter(currencyUC)

	// Load persisted state
	if err := currencyUC.LoadAll(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load currencies")
	}

	if len(currencyUC.Currencies()) == 0 {
		if err := currencyUC.Register(ctx, defaultCurrency(cfg.DefaultRegion)); err != nil {
			log.Fatal().Err(err).Msg("failed to register default currency")
		}
		log.Info().Str("region", cfg.DefaultRegion).Msg("registered default currency")
	}

	if err := accountUC.LoadAll(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load accounts")
	}

	// Join the node mesh
	if err := delivery.Register(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to register node")
	}
	log.Info().Str("node", cfg.NodeName).Msg("node registered")

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	go func() {
		if err := delivery.Heartbeat(bgCtx); err != nil && bgCtx.Err() == nil {
			log.Error().Err(err).Msg("heartbeat stopped")
		}
	}()

	go func() {
		err := delivery.Listen(bgCtx, func(payload []byte) error {
			return applyBalanceMessage(accountUC, holdingsUC, cfg.NodeName, payload)
		})
		if err != nil && bgCtx.Err() == nil {
			log.Error().Err(err).Msg("balance listener stopped")
		}
	}()

	go func() {
		if err := backlogUC.Start(bgCtx); err != nil && bgCtx.Err() == nil {
			log.Error().Err(err).Msg("backlog synchronizer stopped")
		}
	}()

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountUC)
	balanceHandler := handler.NewBalanceHandler(accountUC, holdingsUC, formatter)
	transactionHandler := handler.NewTransactionHandler(accountUC, transactionUC)
	currencyHandler := handler.NewCurrencyHandler(currencyUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     accountHandler,
		BalanceHandler:     balanceHandler,
		TransactionHandler: transactionHandler,
		CurrencyHandler:    currencyHandler,
		HealthHandler:      healthHandler,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	stopBackground()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// applyBalanceMessage overwrites a local balance from a remote node's sync
// message. Messages originating from this node are already applied.
func applyBalanceMessage(accounts *usecase.AccountUseCase, holdings *usecase.HoldingsUseCase, node string, payload []byte) error {
	var message domain.BalanceSyncMessage
	if err := json.Unmarshal(payload, &message); err != nil {
		return err
	}

	if message.Origin == node {
		return nil
	}

	account, ok := accounts.FindAccountByID(message.Account)
	if !ok {
		log.Debug().Str("account", message.Account.String()).Msg("sync for unknown account, skipping")
		return nil
	}

	amount, err := decimal.NewFromString(message.Amount)
	if err != nil {
		return err
	}

	entry := domain.HoldingsEntry{
		Region:   message.Region,
		Currency: message.Currency,
		Handler:  domain.HoldingsHandler(message.Handler),
		Amount:   amount,
	}

	if _, err := holdings.Set(account, entry); err != nil {
		log.Warn().Err(err).
			Str("account", message.Account.String()).
			Str("currency", message.Currency).
			Msg("failed to apply remote balance")
	}

	return nil
}

// defaultCurrency is the bootstrap currency registered on an empty database
// so a fresh node is usable immediately.
func defaultCurrency(region string) *domain.Currency {
	currency := domain.NewCurrency("dollar", "Dollar", "Dollars", 2)
	currency.DisplayMinor = "Cent"
	currency.DisplayMinorPlural = "Cents"
	currency.Symbol = "$"
	currency.GlobalDefault = true
	currency.Regions[region] = domain.RegionSetting{Enabled: true, Default: true}

	return currency
}
