// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teradata-labs/arena/internal/version"
	"github.com/teradata-labs/arena/pkg/config"
	"github.com/teradata-labs/arena/pkg/evals"
	"github.com/teradata-labs/arena/pkg/llm/factory"
	"github.com/teradata-labs/arena/pkg/observability"
	"github.com/teradata-labs/arena/pkg/server"
	"github.com/teradata-labs/arena/pkg/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Arena HTTP/SSE server",
	Long: `Start the Arena Server.

The server will:
- Expose debate and dialectic streams over Server-Sent Events
- Persist sessions, transcripts, and completion records to SQL
- Sweep finished sessions past their TTL on a cron schedule

Press Ctrl+C to gracefully shutdown.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("host", "", "listen host (overrides config)")
	f.Int("port", 0, "listen port (overrides config)")
	f.String("provider", "", "default LLM provider (overrides config)")
	f.String("db", "", "database DSN (overrides config)")
	f.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	f.String("log-format", "", "log format: text, json (overrides config)")

	rootCmd.AddCommand(serveCmd)
}

// applyServeFlags folds explicit command flags over the loaded config.
// Flags outrank the file, the environment, and the keyring.
func applyServeFlags(cmd *cobra.Command, cfg *config.ServerConfig) {
	f := cmd.Flags()
	if f.Changed("host") {
		cfg.Server.Host, _ = f.GetString("host")
	}
	if f.Changed("port") {
		cfg.Server.Port, _ = f.GetInt("port")
	}
	if f.Changed("provider") {
		cfg.LLM.DefaultProvider, _ = f.GetString("provider")
	}
	if f.Changed("db") {
		cfg.Database.DSN, _ = f.GetString("db")
		cfg.Database.Driver = ""
	}
	if f.Changed("log-level") {
		cfg.Logging.Level, _ = f.GetString("log-level")
	}
	if f.Changed("log-format") {
		cfg.Logging.Format, _ = f.GetString("log-format")
	}
}

// newServerLogger builds the zap logger described by the logging
// config. The returned atomic level allows live log-level reloads.
func newServerLogger(cfg config.LoggingConfig) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			log.Printf("Invalid log level %q, using INFO: %v", cfg.Level, err)
			level = zap.InfoLevel
		}
	}
	atomic := zap.NewAtomicLevelAt(level)

	zapConfig := zap.NewProductionConfig()
	if cfg.Format != "json" {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = atomic

	logger, err := zapConfig.Build(zap.AddStacktrace(zap.ErrorLevel))
	return logger, atomic, err
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadServerConfig(cfgFile)
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger, logLevel, err := newServerLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Arena Server", zap.String("version", version.Get()))

	// One tracer instance serves both layers: the orchestrators span
	// their protocol steps, the wrapped providers span each LLM call.
	tracer := observability.NewLogTracer(logger.Named("tracer"))

	factoryCfg := cfg.FactoryConfig()
	factoryCfg.Tracer = tracer
	providers := factory.NewProviderFactory(factoryCfg)

	driver := storage.DetectDriver(cfg.Database.Driver, cfg.Database.DSN)
	store, err := storage.Open(driver, cfg.Database.DSN, logger.Named("storage"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	logger.Info("Database ready", zap.String("driver", driver), zap.String("dsn", cfg.Database.DSN))

	results, err := evals.NewStore(filepath.Join(cfg.DataDir, "evals.db"))
	if err != nil {
		return fmt.Errorf("failed to open evaluation store: %w", err)
	}
	defer results.Close()

	srv := server.New(server.Config{
		Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		CORS: server.CORSConfig{
			Enabled:        cfg.Server.CORS.Enabled,
			AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		},
		SessionTTL:    time.Duration(cfg.Sessions.TTLMinutes) * time.Minute,
		SweepSchedule: cfg.Sessions.SweepSchedule,
	}, providers,
		server.WithLogger(logger),
		server.WithTracer(tracer),
		server.WithStore(store),
		server.WithResultStore(results),
	)

	// Live reload: a config file edit adjusts the log level without a
	// restart. Everything else requires one.
	cfg.Watch(func(next *config.ServerConfig) {
		level := zap.InfoLevel
		if err := level.UnmarshalText([]byte(next.Logging.Level)); err != nil {
			logger.Warn("Ignoring invalid log level from config reload", zap.String("level", next.Logging.Level))
			return
		}
		logLevel.SetLevel(level)
		logger.Info("Log level reloaded", zap.String("level", next.Logging.Level))
	})

	// Handle graceful shutdown
	go func() {
		sigch := make(chan os.Signal, 1)
		signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
		<-sigch
		logger.Info("Shutting down gracefully... (press Ctrl+C again to force)")

		go func() {
			<-sigch
			logger.Warn("Force shutdown requested")
			os.Exit(1)
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Warn("Error stopping server", zap.Error(err))
		}
	}()

	if err := srv.Start(cmd.Context()); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
