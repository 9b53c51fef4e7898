package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/selimozcann/StoreHunter/internal/api"
	"github.com/selimozcann/StoreHunter/internal/config"
	"github.com/selimozcann/StoreHunter/internal/engine"
	"github.com/selimozcann/StoreHunter/internal/metrics"
	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/store"
)

const (
	testsTable   = "storehunter_tests"
	devicesTable = "storehunter_custom_devices"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.String("addr", ":3000", "Listen address")
	f.String("store", "memory", "State backend (memory or postgres)")
	f.Int("max-concurrent", 2, "Batches allowed to run at once")
	_ = a.v.BindPFlag("server.addr", f.Lookup("addr"))
	_ = a.v.BindPFlag("store.backend", f.Lookup("store"))
	_ = a.v.BindPFlag("server.max_concurrent_tests", f.Lookup("max-concurrent"))
	return cmd
}

// stores holds the backends of the HTTP service.
type stores struct {
	tests  store.Store[api.TestRecord]
	custom store.Store[model.DeviceProfile]
	db     *sql.DB
}

func (s stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (a *app) openStores(ctx context.Context, c config.Store) (stores, error) {
	if c.Backend != "postgres" {
		return stores{
			tests:  store.NewMemory[api.TestRecord](),
			custom: store.NewMemory[model.DeviceProfile](),
		}, nil
	}
	db, err := store.OpenPostgres(ctx, c.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	tests := store.NewPostgres[api.TestRecord](db, testsTable, a.logger)
	custom := store.NewPostgres[model.DeviceProfile](db, devicesTable, a.logger)
	for _, m := range []interface{ Migrate(context.Context) error }{tests, custom} {
		if err := m.Migrate(ctx); err != nil {
			_ = db.Close()
			return stores{}, err
		}
	}
	return stores{tests: tests, custom: custom, db: db}, nil
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger

	st, err := a.openStores(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("close store", "error", cerr)
		}
	}()

	sweeper := store.NewSweeper(st.tests, cfg.Store.MaxAge, cfg.Store.SweepInterval, logger)
	sweeper.Start()
	defer sweeper.Stop()

	eng := engine.New(engine.FromConfiguration(cfg), nil, logger)
	srv := api.New(eng, st.tests, st.custom, api.Options{
		MaxConcurrentTests:  cfg.Server.MaxConcurrentTests,
		AllowPrivateTargets: cfg.Server.AllowPrivateTargets,
		CORSOrigins:         cfg.Server.CORSOrigins,
		Metrics:             metrics.New(prometheus.DefaultRegisterer),
		Gatherer:            prometheus.DefaultGatherer,
		Logger:              logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr, "store", cfg.Store.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("background tests did not stop", "error", err)
	}
	logger.Info("server stopped")
	return nil
}
