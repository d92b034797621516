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

	"bozoruz/internal/config"
	"bozoruz/internal/database"
	"bozoruz/internal/logger"
	"bozoruz/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// Open websocket streams and in-flight requests get 30 seconds
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("session_backend", cfg.Session.Backend),
	)

	srv, err := server.NewServer(cmd.Context(), cfg, log)
	if err != nil {
		log.Error("Failed to create server", zap.Error(err))
		return err
	}

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("HTTP server error", zap.Error(err))
		return err
	}

	<-done
	log.Info("Graceful shutdown complete")
	return nil
}

func newMigrateCommand() *cobra.Command {
	var driver string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the session table schema",
	}
	cmd.PersistentFlags().StringVar(&driver, "driver", "", "database driver (postgres or sqlite), defaults to DB_DRIVER")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd.Context(), driver, func(db migrateTarget) error {
					return database.RunMigrations(db.db, db.driver, db.log)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print migration status",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd.Context(), driver, func(db migrateTarget) error {
					return database.GetMigrationStatus(db.db, db.driver)
				})
			},
		},
	)
	return cmd
}

func main() {
	root := &cobra.Command{
		Use:           "bozoruz",
		Short:         "Bozoruz storefront API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE:  serve,
		},
		newMigrateCommand(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
