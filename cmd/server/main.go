package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tabshare/tabshare/internal/api"
	"github.com/tabshare/tabshare/internal/auth"
	"github.com/tabshare/tabshare/internal/calculator"
	"github.com/tabshare/tabshare/internal/config"
	"github.com/tabshare/tabshare/internal/consensus"
	"github.com/tabshare/tabshare/internal/pubsub"
	"github.com/tabshare/tabshare/internal/service"
	"github.com/tabshare/tabshare/internal/storage"
	"github.com/tabshare/tabshare/internal/storage/postgres"
	"github.com/tabshare/tabshare/internal/storage/sqlite"
	"github.com/tabshare/tabshare/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.DBDriver)

	pub := pubsub.New(
		pubsub.WithBufferSize(cfg.StreamBuffer),
		pubsub.WithIdleTTL(cfg.StreamTTL),
	)
	defer pub.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	groups := service.NewGroupService(store, pub,
		service.WithSplitPolicy(calculator.ForName(cfg.SplitPolicy)),
		service.WithDeclineStrategy(consensus.StrategyForName(cfg.DeclinePolicy)),
	)
	txns := service.NewTransactionService(store)
	auths := service.NewAuthService(auth.NewAuthenticator(store), jwtManager)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.New(groups, txns, auths, jwtManager, pub).Handler(),
	}

	go func() {
		slog.Info("Server starting", "address", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.DBDriver == "postgres" {
		return postgres.New(ctx, cfg.DatabaseURL)
	}
	return sqlite.New(cfg.DBPath)
}
