package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/famledger/internal/app"
	"github.com/mmynk/famledger/internal/auth"
	"github.com/mmynk/famledger/internal/config"
	"github.com/mmynk/famledger/internal/httpapi"
	"github.com/mmynk/famledger/internal/jobs"
	"github.com/mmynk/famledger/internal/observability"
	"github.com/mmynk/famledger/internal/service"
	"github.com/mmynk/famledger/pkg/logging"
)

func main() {
	hashPassphrase := flag.String("hash-passphrase", "", "print the bcrypt hash of a family passphrase and exit")
	flag.Parse()

	if *hashPassphrase != "" {
		hash, err := auth.HashPassphrase(*hashPassphrase)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	location, err := cfg.Ledger.Location()
	if err != nil {
		return fmt.Errorf("failed to load time zone: %w", err)
	}

	store, table, err := app.OpenLedger(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer table.Close()
	logger.Info("Storage initialized", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path, "sheet", cfg.Storage.Sheet)

	ledgerSvc := service.NewLedgerService(store, app.Directory(cfg.Ledger),
		service.WithLocation(location),
		service.WithLogger(logger),
	)

	var (
		authSvc    *service.AuthService
		jwtManager *auth.JWTManager
	)
	if cfg.Auth.Enabled() {
		jwtManager = auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		authenticator := auth.NewPassphraseAuthenticator(cfg.Auth.PassphraseHash, cfg.Ledger.People)
		authSvc = service.NewAuthService(authenticator, jwtManager, logger)
	} else {
		logger.Warn("Authentication disabled, set auth.passphrase_hash to require a login")
	}

	metrics := observability.NewMetrics()
	jobMetrics := jobs.NewMetrics(metrics.Registerer())

	redisClient := app.NewRedis(cfg.Redis)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Redis close", "error", err)
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, notifier runs will not be recorded", "addr", cfg.Redis.Addr, "error", err)
	}
	runLog := jobs.NewRunLog(redisClient)

	notifier, err := app.NewNotifier(cfg, store, logger)
	if err != nil {
		return err
	}
	dueSoon := jobs.NewDueSoonJob(notifier, runLog, logger, jobMetrics, cfg.Notifier.ThresholdDays)

	router := httpapi.NewRouter(httpapi.Deps{
		Ledger:           ledgerSvc,
		Auth:             authSvc,
		JWT:              jwtManager,
		Notifier:         dueSoon,
		RunLog:           runLog,
		Metrics:          metrics,
		DefaultThreshold: cfg.Notifier.ThresholdDays,
		RateLimit:        cfg.Server.RateLimit,
		Logger:           logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h2c.NewHandler(router, &http2.Server{}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
