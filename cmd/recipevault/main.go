// Command recipevault runs the recipe API server: an authenticated HTTP
// API for managing recipe categories and recipes, plus a separate health
// and metrics listener.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"github.com/recipevault/recipevault/pkg/api"
	"github.com/recipevault/recipevault/pkg/auth"
	"github.com/recipevault/recipevault/pkg/config"
	"github.com/recipevault/recipevault/pkg/maintenance"
	"github.com/recipevault/recipevault/pkg/middleware"
	"github.com/recipevault/recipevault/pkg/observability"
	"github.com/recipevault/recipevault/pkg/storage"
	"github.com/recipevault/recipevault/pkg/storage/postgres"
	"github.com/recipevault/recipevault/pkg/storage/rediscache"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Log.Level, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()

	pg, err := postgres.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pg.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = pg.Migrate(migrateCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database ready")

	tokens, err := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	health := observability.NewHealthHandler()
	health.AddCheck("database", pg.Ping)

	var store storage.Store = pg
	if cfg.Redis.URL != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		defer rdb.Close()

		store = storage.WithBlacklist(pg, rediscache.NewBlacklist(rdb, pg, tokens.TTL()))
		health.AddCheck("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		logger.Info("redis blacklist cache enabled")
	}

	guard := middleware.NewGuard(tokens, store, metrics)
	server := api.NewServer(store, tokens, guard, logger, metrics)

	purger := maintenance.NewPurger(store, tokens.TTL(), logger, metrics)
	if err := purger.Start(cfg.Auth.PurgeSchedule); err != nil {
		return err
	}
	defer purger.Stop()

	apiSrv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	healthMux.Handle("/health", health)
	healthMux.Handle("/metrics", metrics.Handler())
	healthSrv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:      healthMux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Sample pool stats for the gauge while the servers run.
	statsDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-statsDone:
				return
			case <-ticker.C:
				metrics.DBConnectionsActive.Set(float64(pg.DB().Stats().OpenConnections))
			}
		}
	}()
	defer close(statsDone)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("addr", apiSrv.Addr).Info("api server listening")
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthSrv.Addr).Info("health server listening")
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
		}
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("health server shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
