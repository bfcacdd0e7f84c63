// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rolegate/rolegate/internal/access"
	"github.com/rolegate/rolegate/internal/auth"
	"github.com/rolegate/rolegate/internal/auth/memory"
	"github.com/rolegate/rolegate/internal/config"
	"github.com/rolegate/rolegate/internal/httpapi"
	"github.com/rolegate/rolegate/internal/logging"
	"github.com/rolegate/rolegate/internal/observability"
)

const serviceName = "rolegate"

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the RoleGate HTTP API",
		Long: `Start the HTTP API that handles login, registration, identity
lookups and role-gated resources. Accounts are held in memory and seeded
at startup from --accounts-file or, if unset, the built-in fixtures.

Configuration is read from defaults, --config, the environment
(ROLEGATE_*) and flags, in that order of precedence.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.LoadOptions{
				File:    configFile,
				EnvFile: envFile,
				Flags:   cmd.Flags(),
			})
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

// runServeWithDeps starts the API with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, ready, logger)
		}
	}
	if deps.HasherFactory == nil {
		deps.HasherFactory = func() (auth.PasswordHasher, error) {
			return auth.NewArgon2idHasher(), nil
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := logging.Setup(serviceName, version, cfg.LogFormat, level, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	logger.Info("starting rolegate",
		"http_addr", cfg.HTTPAddr,
		"metrics_addr", cfg.MetricsAddr,
		"log_format", cfg.LogFormat,
	)

	hasher, err := deps.HasherFactory()
	if err != nil {
		return fmt.Errorf("failed to create password hasher: %w", err)
	}
	tokens, err := auth.NewTokenService(cfg.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}
	users := memory.NewUserRepository()

	accounts, err := loadAccounts(cfg.AccountsFile, logger)
	if err != nil {
		return err
	}
	if _, err := auth.SeedAccounts(ctx, users, hasher, accounts, logger); err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}

	svc, err := auth.NewAuthServiceWithLogger(users, hasher, tokens, logger)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ready atomic.Bool

	var (
		obsServer ObservabilityServer
		metrics   *observability.Metrics
	)
	if cfg.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.MetricsAddr, ready.Load, logger)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability", logger)
		metrics = obsServer.Metrics()
	}

	shutdownCtx := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	}
	stopObservability := func(ctx context.Context) {
		if obsServer == nil {
			return
		}
		if err := obsServer.Stop(ctx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	api, err := httpapi.New(httpapi.Options{
		Auth:    svc,
		Gate:    access.NewDefaultGate(),
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		sctx, scancel := shutdownCtx()
		defer scancel()
		stopObservability(sctx)
		return fmt.Errorf("failed to create API: %w", err)
	}

	apiServer := httpapi.NewServer(cfg.HTTPAddr, api.Handler(), logger)
	apiErrChan, err := apiServer.Start()
	if err != nil {
		sctx, scancel := shutdownCtx()
		defer scancel()
		stopObservability(sctx)
		return fmt.Errorf("failed to start http server: %w", err)
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "http", logger)

	sigChan := deps.Signals
	if sigChan == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(ch)
		sigChan = ch
	}

	ready.Store(true)
	cmd.Printf("RoleGate listening on %s\n", apiServer.Addr())
	logger.Info("rolegate ready", "http_addr", apiServer.Addr())
	if deps.OnReady != nil {
		deps.OnReady(apiServer.Addr())
	}

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	ready.Store(false)
	logger.Info("shutting down...")

	sctx, scancel := shutdownCtx()
	defer scancel()

	if err := apiServer.Stop(sctx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}
	stopObservability(sctx)

	logger.Info("shutdown complete")
	return nil
}

// loadAccounts returns the accounts to seed: the configured file, or the
// built-in fixtures when none is configured.
func loadAccounts(path string, logger *slog.Logger) ([]auth.Account, error) {
	if path == "" {
		logger.Warn("no accounts file configured, seeding built-in fixture accounts")
		return auth.DefaultAccounts(), nil
	}
	file, err := auth.LoadAccountsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return file.Accounts, nil
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
