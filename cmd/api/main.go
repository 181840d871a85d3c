// cmd/api/main.go
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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"bookcirc/config"
	"bookcirc/internal/catalog"
	"bookcirc/internal/lending"
	"bookcirc/internal/loan"
	"bookcirc/internal/patron"
	"bookcirc/pkg/eventlog"
	"bookcirc/pkg/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := initTracing(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownTracing()

	db, err := postgres.Open(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	patronRepo := patron.NewRepository()
	itemRepo := catalog.NewRepository()
	loanRepo := loan.NewRepository()

	patronSvc := patron.NewService(db, patronRepo, logger.Named("patron"))
	catalogSvc := catalog.NewService(db, itemRepo, logger.Named("catalog"))
	lendingSvc := lending.NewService(
		postgres.NewUnitOfWork(db),
		patronRepo,
		itemRepo,
		loanRepo,
		lending.WithLogger(logger.Named("lending")),
		lending.WithFinePolicy(lending.FinePolicy{DailyRate: cfg.Lending.DailyFineRate}),
		lending.WithLocale(cfg.Lending.Locale),
		lending.WithEventLog(eventlog.New()),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Route("/api/v1", func(r chi.Router) {
		patron.NewHandler(patronSvc).Routes(r)
		catalog.NewHandler(catalogSvc).Routes(r)
		lending.NewHandler(lendingSvc).Routes(r)
	})
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPServer.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.Int("port", cfg.HTTPServer.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	if cfg.Mode == "development" {
		return zap.NewDevelopment()
	}

	zapCfg := zap.NewProductionConfig()
	if err := zapCfg.Level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	return zapCfg.Build()
}
