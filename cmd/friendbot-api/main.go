package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/comigor/friendbot-go/internal/auth"
	"github.com/comigor/friendbot-go/internal/config"
	"github.com/comigor/friendbot-go/internal/llm"
	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/metrics"
	"github.com/comigor/friendbot-go/internal/persona"
	"github.com/comigor/friendbot-go/internal/server"
	"github.com/comigor/friendbot-go/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.Storage.Path)
	if err != nil {
		logger.L.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Auth.JWTSecret == "default-jwt-secret" {
		logger.L.Warn("using the default JWT secret; set FRIENDBOT_AUTH_JWT_SECRET in production")
	}
	metrics.MustRegister()

	srv := server.New(
		db,
		auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		llm.NewGenerator(cfg.LLM, persona.New(nil)),
		cfg.Server.HistoryWindow,
	)

	// Start server
	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	if err := srv.ListenAndServe(ctx, serverAddr); err != nil {
		logger.L.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
