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
	"time"

	"github.com/iudanet/ispadmin/internal/auth"
	"github.com/iudanet/ispadmin/internal/config"
	"github.com/iudanet/ispadmin/internal/mailer"
	"github.com/iudanet/ispadmin/internal/server/handlers"
	"github.com/iudanet/ispadmin/internal/server/middleware"
	"github.com/iudanet/ispadmin/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	// Соль и ключ подписи создаются при первом старте и переживают рестарты
	secrets := auth.NewSecretService(store)
	salt, err := secrets.GetOrCreate(ctx, auth.SecretPasswordSalt)
	if err != nil {
		return fmt.Errorf("failed to load password salt: %w", err)
	}
	jwtKey, err := secrets.GetOrCreate(ctx, auth.SecretJWTKey)
	if err != nil {
		return fmt.Errorf("failed to load jwt signing key: %w", err)
	}

	hasher := auth.NewHasher(salt, cfg.HashIterations)

	policyCfg := auth.DefaultPolicyConfig()
	policyCfg.MinLength = cfg.PasswordMinLength
	policyCfg.MaxLength = cfg.PasswordMaxLength
	policyCfg.RequireUppercase = cfg.RequireUppercase
	policyCfg.HistoryDepth = cfg.HistoryDepth
	policy := auth.NewPolicy(policyCfg, hasher, store)

	throttleCfg := auth.ThrottleConfig{
		MaxAccountFailures:  cfg.MaxAccountFailures,
		AccountLockDuration: cfg.AccountLockDuration,
		MaxSourceFailures:   cfg.MaxSourceFailures,
		SourceLockDuration:  cfg.SourceLockDuration,
		FailureWindow:       cfg.FailureWindow,
	}
	throttle := auth.NewThrottle(logger, store, store, throttleCfg)

	tokens := auth.NewTokenService(jwtKey, cfg.TokenTTL)

	var sender auth.Sender
	if cfg.Web3FormsKey == "" {
		logger.Warn("WEB3FORMS_API_KEY is not set, reset codes will be written to the log")
		sender = mailer.NewLogSender(logger)
	} else {
		sender = mailer.NewWeb3FormsSender(logger, cfg.Web3FormsKey, cfg.EmailFrom)
	}
	resets := auth.NewResetService(logger, store, store, sender, cfg.ResetTokenTTL)

	authHandler := handlers.NewAuthHandler(logger, store, store, hasher, policy, throttle, tokens)
	resetHandler := handlers.NewResetHandler(logger, store, store, hasher, policy, throttle, resets)
	customerHandler := handlers.NewCustomerHandler(logger, store)
	healthHandler := handlers.NewHealthHandler(logger, store, Version)

	requireAuth := middleware.AuthMiddleware(logger, tokens)

	mux := http.NewServeMux()

	// Публичные endpoints
	mux.HandleFunc("GET /api/health", healthHandler.Health)
	mux.HandleFunc("POST /api/register", authHandler.Register)
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("POST /api/forgot-password", resetHandler.Forgot)
	mux.HandleFunc("POST /api/verify-reset-token", resetHandler.VerifyToken)
	mux.HandleFunc("POST /api/reset-password", resetHandler.Reset)

	// Endpoints, требующие bearer токен
	mux.Handle("GET /api/me", requireAuth(http.HandlerFunc(authHandler.Me)))
	mux.Handle("POST /api/change-password", requireAuth(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("GET /api/customers", requireAuth(http.HandlerFunc(customerHandler.List)))
	mux.Handle("POST /api/customers", requireAuth(http.HandlerFunc(customerHandler.Create)))
	mux.Handle("GET /api/customers/{id}", requireAuth(http.HandlerFunc(customerHandler.Get)))
	mux.Handle("PUT /api/customers/{id}", requireAuth(http.HandlerFunc(customerHandler.Update)))
	mux.Handle("DELETE /api/customers/{id}", requireAuth(http.HandlerFunc(customerHandler.Delete)))

	// Более жесткий лимит на endpoints аутентификации
	authLimits := []middleware.PathRateLimit{
		{Path: "/api/login", Rate: cfg.AuthRateLimit, Window: cfg.RateLimitWindow},
		{Path: "/api/register", Rate: cfg.AuthRateLimit, Window: cfg.RateLimitWindow},
		{Path: "/api/forgot-password", Rate: cfg.AuthRateLimit, Window: cfg.RateLimitWindow},
	}

	var handler http.Handler = mux
	handler = middleware.RateLimitByPathMiddleware(authLimits, cfg.RateLimitRequests, cfg.RateLimitWindow, logger)(handler)
	handler = middleware.CORSMiddleware(cfg.CORSAllowedOrigins)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/api/health"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("version", Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped")

	return nil
}

func printVersion() {
	fmt.Printf("ISP Admin Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
