package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/api"
	"github.com/xzzpig/content-rest/internal/core/config"
	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/metrics"
	"github.com/xzzpig/content-rest/internal/core/rescache"
	"github.com/xzzpig/content-rest/internal/core/schema"
	"github.com/xzzpig/content-rest/internal/i18n"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST server",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Initialize Logger first
		logger.InitLogger(logger.Environment(cfg.App.Environment), logger.LogLevel(cfg.Log.Level), cfg.Log.Levels)
		defer logger.Sync()
		logger.L().Info("Starting content-rest server...")

		if err := i18n.Init(); err != nil {
			logger.L().Fatal("Failed to initialize i18n", zap.Error(err))
		}

		config.Watch(applyLogLevels, func(err error) {
			logger.L().Error("Failed to reload configuration", zap.Error(err))
		})

		if cfg.Upstream.ExternalPreviewEnabled && !cfg.Upstream.ExternalPreviewReady() {
			logger.L().Warn("External preview is enabled but app key or secret is missing")
		}
		if !cfg.Upstream.PublishedReady() {
			logger.L().Warn("Published routes will fail: single key or gateway is not configured")
		}

		client, introspector, assembler := newPipeline(cfg,
			schema.WithMetrics(metrics.NewCacheMetrics(prometheus.DefaultRegisterer, "schema")),
		)

		var cache *rescache.Cache
		if cfg.Cache.Enabled {
			cache = rescache.New(cfg.Cache.TTL,
				rescache.WithMetrics(metrics.NewCacheMetrics(prometheus.DefaultRegisterer, "response")),
			)
			sweeper := rescache.NewSweeper(cache)
			if err := sweeper.Start(cfg.Cache.SweepInterval); err != nil {
				return fmt.Errorf("start cache sweeper: %w", err)
			}
			defer sweeper.Stop()
		}

		r := api.SetupRouter(api.RouterDeps{
			Config:    cfg,
			Upstream:  client,
			Assembler: assembler,
			Cache:     cache,
			Schemas:   introspector,
			Gatherer:  prometheus.DefaultGatherer,
		})

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.L().Info("Server starting",
			zap.String("address", addr),
			zap.String("graphql", client.EndpointFor(publicAuth)),
			zap.Bool("cache", cache != nil),
		)

		srv := &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.L().Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Wait for interrupt signal to gracefully shutdown the server with
		// a timeout of 5 seconds.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.L().Info("Shutdown signal received, stopping server...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.L().Error("Server forced to shutdown", zap.Error(err))
			return err
		}

		logger.L().Info("Server exiting")
		return nil
	},
}

// applyLogLevels installs the log levels of a reloaded configuration.
func applyLogLevels(cfg *config.Config) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.L().Warn("Ignoring invalid log level", zap.String("level", cfg.Log.Level))
		return
	}
	logger.InitLevelConfig(cfg.Log.Levels, level)
	logger.L().Info("Log levels reloaded", zap.String("level", cfg.Log.Level), zap.Int("overrides", len(cfg.Log.Levels)))
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
