package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/southecare68/crypto-webhook/config"
	"github.com/southecare68/crypto-webhook/internal/adapters/httpserver"
	"github.com/southecare68/crypto-webhook/internal/adapters/logger"
	"github.com/southecare68/crypto-webhook/internal/adapters/pushover"
	"github.com/southecare68/crypto-webhook/internal/adapters/sqlite"
	"github.com/southecare68/crypto-webhook/internal/analytics"
	"github.com/southecare68/crypto-webhook/internal/app"
	"github.com/southecare68/crypto-webhook/internal/ports"
	"github.com/southecare68/crypto-webhook/internal/risk"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize ledger repository")
		log.Fatalf("FATAL: Failed to initialize ledger repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing ledger repository")
		}
	}()
	appLogger.Info(context.Background(), "Ledger repository initialized")

	// 4. Initialize Notifier (Pushover Adapter)
	var notifier ports.Notifier
	if cfg.NotificationsEnabled() {
		notifier, err = pushover.New(pushover.Config{
			Token:  cfg.PushoverToken,
			User:   cfg.PushoverUser,
			Logger: appLogger,
		})
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Pushover client")
			log.Fatalf("FATAL: Failed to initialize Pushover client: %v", err)
		}
		appLogger.Info(context.Background(), "Pushover client initialized")
	} else {
		notifier = pushover.NoopNotifier{}
		appLogger.Warn(context.Background(), "Pushover credentials not set, notifications disabled")
	}

	// 5. Initialize Sizing Policy
	sizer, err := risk.New(risk.Config{
		RiskBudget:  cfg.RiskBudget,
		MaxNotional: cfg.MaxNotional,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize sizing policy")
		log.Fatalf("FATAL: Failed to initialize sizing policy: %v", err)
	}

	// 6. Initialize Lifecycle Service
	service, err := app.NewTradeService(cfg, appLogger, repo, notifier, sizer)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize trade service")
		log.Fatalf("FATAL: Failed to initialize trade service: %v", err)
	}
	appLogger.Info(context.Background(), "Trade service initialized")

	// 7. Initialize Aggregator
	aggregator, err := analytics.New(analytics.Config{
		Repo:        repo,
		Logger:      appLogger,
		StartEquity: cfg.StartEquity,
		RiskBudget:  cfg.RiskBudget,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize aggregator")
		log.Fatalf("FATAL: Failed to initialize aggregator: %v", err)
	}

	// 8. Start the HTTP Server with graceful shutdown
	server, err := httpserver.NewServer(service, aggregator, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize HTTP server")
		log.Fatalf("FATAL: Failed to initialize HTTP server: %v", err)
	}

	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: server.R}
	errCh := make(chan error, 1)
	go func() {
		appLogger.Info(context.Background(), "HTTP server listening", map[string]interface{}{"addr": cfg.ListenAddr})
		errCh <- httpSrv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLogger.Info(context.Background(), "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(context.Background(), err, "HTTP server shutdown failed")
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			appLogger.Error(context.Background(), err, "HTTP server exited with error")
			log.Fatalf("FATAL: HTTP server exited with error: %v", err)
		}
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
