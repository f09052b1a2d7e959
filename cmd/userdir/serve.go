// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/userdir/userdir/internal/auth"
	"github.com/userdir/userdir/internal/config"
	"github.com/userdir/userdir/internal/directory"
	"github.com/userdir/userdir/internal/httpapi"
	"github.com/userdir/userdir/internal/logging"
	"github.com/userdir/userdir/internal/observability"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the directory API server",
		Long: `Start the directory API server. The store is seeded with the
bootstrap administrator and lives in process memory only.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "config file path")
	cmd.Flags().String("listen-addr", config.DefaultListenAddr, "API listen address")
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL, "read cache time-to-live")
	cmd.Flags().String("jwt-key", "", "session token signing key")
	cmd.Flags().String("jwt-issuer", "userdir", "session token issuer claim")
	cmd.Flags().String("jwt-audience", "userdir", "session token audience claim")
	cmd.Flags().Duration("jwt-ttl", config.DefaultTokenTTL, "session token lifetime")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logging.SetDefault("userdir", version, cfg.LogFormat)
	logger := slog.Default()

	logger.Info("starting userdir",
		"listen_addr", cfg.ListenAddr,
		"metrics_addr", cfg.MetricsAddr,
		"log_format", cfg.LogFormat,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hasher := auth.NewPBKDF2Hasher()

	store, err := directory.NewBootstrappedStore(hasher)
	if err != nil {
		return fmt.Errorf("bootstrap store: %w", err)
	}
	cache := directory.NewCache(store, directory.WithTTL(cfg.CacheTTL))

	issuer, err := auth.NewJWTIssuer([]byte(cfg.JWT.Key), cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	svc, err := directory.NewService(store, cache, hasher, issuer, logger)
	if err != nil {
		return fmt.Errorf("directory service: %w", err)
	}

	var obsServer *observability.Server
	var obsErrCh <-chan error
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool { return true })
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return fmt.Errorf("start observability server: %w", err)
		}
		metrics = obsServer.Metrics()
	}

	apiServer, err := httpapi.NewServer(cfg.ListenAddr, svc, issuer, metrics, logger)
	if err != nil {
		return fmt.Errorf("api server: %w", err)
	}
	apiErrCh, err := apiServer.Start()
	if err != nil {
		return fmt.Errorf("start api server: %w", err)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-apiErrCh:
		if err != nil {
			logger.Error("api server failed", "error", err)
		}
	case err = <-obsErrCh:
		if err != nil {
			logger.Error("observability server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if stopErr := apiServer.Stop(shutdownCtx); stopErr != nil {
		logger.Error("api server shutdown failed", "error", stopErr)
	}
	if obsServer != nil {
		if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
			logger.Error("observability server shutdown failed", "error", stopErr)
		}
	}

	return err
}
