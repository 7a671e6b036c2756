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

	"github.com/versebattle/engine/internal/api"
	"github.com/versebattle/engine/internal/infra/logging"
	"github.com/versebattle/engine/internal/infra/pgutils"
	"github.com/versebattle/engine/internal/infra/redisutils"
	"github.com/versebattle/engine/internal/services/battle"
	"github.com/versebattle/engine/internal/services/gacha"
	"github.com/versebattle/engine/internal/services/ledger"
	"github.com/versebattle/engine/internal/services/matchmaking"
	"github.com/versebattle/engine/pkg/envconf"
	"github.com/versebattle/engine/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		slog.Info("Close database pool")

		return db.Close()
	})

	redisClient, err := redisutils.Open(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("open redis: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		slog.Info("Close redis client")

		return redisClient.Close()
	})

	// --- Services ---
	ledgerSvc := ledger.New(db)
	gachaSvc := gacha.New(db, ledgerSvc, nil)
	matchSvc := matchmaking.New(db, redisClient, ledgerSvc)
	battleSvc := battle.New(db, ledgerSvc)

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, ledgerSvc, gachaSvc, matchSvc, battleSvc)

	// Register HTTP server graceful shutdown
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
