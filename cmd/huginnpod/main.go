package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/huginn_podcast/internal/cache"
	"github.com/friendsincode/huginn_podcast/internal/config"
	"github.com/friendsincode/huginn_podcast/internal/db"
	"github.com/friendsincode/huginn_podcast/internal/logging"
	"github.com/friendsincode/huginn_podcast/internal/server"
	"github.com/friendsincode/huginn_podcast/internal/telemetry"
	"github.com/friendsincode/huginn_podcast/internal/version"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "huginnpod",
	Short: "Huginn Podcast - playlist and smart playlist engine",
	Long:  "Huginn Podcast serves manual playlists and rule-driven smart playlists over an episode catalog.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Huginn Podcast server",
	Long:  "Start the HTTP API server and the smart playlist refresh worker",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	Long:  "Apply schema migrations and seed the built-in smart playlists, then exit",
	RunE:  runMigrate,
}

var cacheFlushCmd = &cobra.Command{
	Use:   "cache-flush",
	Short: "Flush all cached evaluation results",
	Long:  "Remove every cached smart playlist evaluation, episode, and duration entry from Redis",
	RunE:  runCacheFlush,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("huginnpod " + version.Version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(cacheFlushCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	database, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error().Err(err).Msg("failed to close database")
		}
	}()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	logger.Info().Msg("migrations applied")
	return nil
}

func runCacheFlush(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisAddr = cfg.RedisAddr
	cacheCfg.RedisPassword = cfg.RedisPassword
	cacheCfg.RedisDB = cfg.RedisDB
	cacheCfg.DisableOnError = false

	c, err := cache.New(cacheCfg, logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer c.Close()

	if err := c.FlushAll(context.Background()); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}

	logger.Info().Msg("cache flushed")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	logger.Info().Msg("Huginn Podcast starting")

	tracerProvider, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName:    "huginn-podcast",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	httpServer := srv.HTTPServer()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down gracefully...")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if err := srv.Close(); err != nil {
		logger.Error().Err(err).Msg("shutdown cleanup failed")
	}

	logger.Info().Msg("Huginn Podcast stopped")
	return nil
}
