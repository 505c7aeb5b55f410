// Command socloud serves the catalog API. "socloud migrate up|down" applies or
// rolls back the schema instead of serving.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"socloud/internal/blob"
	"socloud/internal/config"
	"socloud/internal/logging"
	"socloud/internal/store"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging)
	logging.SetGlobalLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, logger, cfg.Database.URL, defaultDialPolicy)
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) > 0 && args[0] == "migrate" {
		return runMigrate(logger, db, args[1:])
	}

	storage, err := blob.Open(ctx, cfg.Storage.Config)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	if closer, ok := storage.(io.Closer); ok {
		defer closer.Close()
	}

	app := newApplication(cfg, db, storage)
	if err := bootstrap(ctx, logger, cfg, db, app.users); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           app.handler(cfg),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Str("storage", string(cfg.Storage.Backend)).Msg("API listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runMigrate(logger zerolog.Logger, db *sql.DB, args []string) error {
	if len(args) != 1 || (args[0] != "up" && args[0] != "down") {
		return errors.New("usage: socloud migrate [up|down]")
	}

	if args[0] == "up" {
		if err := store.Migrate(db); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied successfully")
		return nil
	}

	if err := store.MigrateDown(db); err != nil {
		return err
	}
	logger.Info().Msg("migrations rolled back successfully")
	return nil
}
