package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-signup-recorder/internal/application/signup"
	"github.com/go-signup-recorder/internal/config"
	"github.com/go-signup-recorder/internal/infrastructure/docstore"
	"github.com/go-signup-recorder/internal/infrastructure/google"
	jwtinfra "github.com/go-signup-recorder/internal/infrastructure/jwt"
	"github.com/go-signup-recorder/internal/infrastructure/metrics"
	transporthttp "github.com/go-signup-recorder/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connect, err := docstore.Connector(cfg)
	if err != nil {
		logger.Error("select store backend", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	opts := docstore.Options(cfg)
	recorder, err := signup.New(ctx, connect, opts, signup.WithMetrics(collector))
	if err != nil {
		logger.Error("connect sign-up store",
			"backend", cfg.Store.Backend,
			"endpoint", opts.Endpoint,
			"credential", opts.Credential,
			"err", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := recorder.Close(closeCtx); err != nil {
			logger.Warn("close sign-up store", "err", err)
		}
	}()

	info := recorder.Info()
	if ok, msg := recorder.Ensure(ctx); ok {
		logger.Info(msg, "database", info.DatabaseName, "container", info.ContainerName)
	} else {
		logger.Warn(msg, "database", info.DatabaseName, "container", info.ContainerName)
	}

	deps := &transporthttp.Deps{
		Recorder: recorder,
		Gatherer: reg,
		Logger:   logger,
	}

	if cfg.GoogleClientID != "" {
		deps.Verifier = google.NewVerifier(cfg.GoogleClientID)
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, sign-in callback disabled")
	}

	// JWT provider is optional; without it the callback records sign-ups but
	// issues no session.
	if p, err := jwtinfra.NewProvider(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTExpiry); err == nil {
		deps.JWTProvider = p
	} else {
		logger.Warn("JWT provider not available", "err", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "backend", info.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "err", err)
	}
	logger.Info("server stopped")
}
