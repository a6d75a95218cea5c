package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "reviewhub/docs" // swagger docs
	"reviewhub/internal/common/pagination"
	hhttp "reviewhub/internal/handler/http"
	hauth "reviewhub/internal/handler/http/auth"
	"reviewhub/internal/handler/http/requestid"
	hreview "reviewhub/internal/handler/http/review"
	hsearch "reviewhub/internal/handler/http/search"
	pgRepo "reviewhub/internal/infra/adapter/persistence/postgres"
	sqliteRepo "reviewhub/internal/infra/adapter/persistence/sqlite"
	"reviewhub/internal/infra/db"
	"reviewhub/internal/observability/logging"
	"reviewhub/internal/observability/metrics"
	"reviewhub/internal/observability/tracing"
	"reviewhub/internal/repository"
	"reviewhub/internal/resilience/circuitbreaker"
	"reviewhub/internal/resilience/retry"
	reviewUC "reviewhub/internal/usecase/review"
	searchUC "reviewhub/internal/usecase/search"
	"reviewhub/pkg/config"
)

func main() {
	logger := initLogger()

	cfg, err := config.LoadAppConfig("")
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Setup(cfg.Tracing.ServiceName, cfg.Tracing.SampleRatio)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracer provider", slog.Any("error", err))
		}
	}()

	database, err := initDatabase(ctx, logger, cfg.Database)
	if err != nil {
		logger.Error("failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	handler := setupServer(logger, database, cfg, version)

	if err := runServer(ctx, logger, handler, cfg.Server, version); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// initLogger installs the JSON logger as the slog default and returns it.
func initLogger() *slog.Logger {
	logger := logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the pool, retrying while the database is still coming
// up, and applies the schema.
func initDatabase(ctx context.Context, logger *slog.Logger, cfg config.DatabaseConfig) (*sql.DB, error) {
	database, err := retry.Do(ctx, retry.DBStartupPolicy(), "open database", func(ctx context.Context) (*sql.DB, error) {
		return db.Open(ctx, cfg.Driver, cfg.URL)
	})
	if err != nil {
		return nil, err
	}

	if err := db.MigrateUp(ctx, database, cfg.Driver); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("database ready", slog.String("driver", cfg.Driver))
	return database, nil
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

// newRepositories returns the review and search sources for the configured
// driver, all querying through breaker.
func newRepositories(driver string, breaker *circuitbreaker.DBCircuitBreaker, searchTimeout time.Duration) (repository.ReviewRepository, repository.SearchRepository) {
	if driver == db.DriverSQLite {
		return sqliteRepo.NewReviewRepo(breaker), sqliteRepo.NewSearchRepo(breaker)
	}
	return pgRepo.NewReviewRepo(breaker), pgRepo.NewSearchRepo(breaker, searchTimeout)
}

// setupServer wires repositories, use cases and routes, and wraps the mux
// in the middleware chain.
func setupServer(logger *slog.Logger, database *sql.DB, cfg config.AppConfig, version string) http.Handler {
	breaker := circuitbreaker.NewDBCircuitBreaker(database)
	if err := metrics.RegisterDBStats(prometheus.DefaultRegisterer, database, "reviewhub"); err != nil {
		logger.Warn("failed to register pool metrics", slog.Any("error", err))
	}
	reviewRepo, searchRepo := newRepositories(cfg.Database.Driver, breaker, cfg.Database.SearchTimeout)

	paginationCfg := pagination.Config{
		DefaultPage:     cfg.Pagination.DefaultPage,
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
		MaxPageSize:     cfg.Pagination.MaxPageSize,
		DefaultLimit:    cfg.Pagination.DefaultLimit,
		MaxLimit:        cfg.Pagination.MaxLimit,
	}
	paginator := pagination.NewPaginator(paginationCfg)

	reviewSvc := &reviewUC.Service{Repo: reviewRepo, Paginator: paginator}
	searchSvc := &searchUC.Service{Repo: searchRepo, Paginator: paginator, Logger: logger}

	var searchLimit func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		limiter := hhttp.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		limiter.TrustProxy = cfg.RateLimit.TrustProxy
		searchLimit = limiter.Limit
		logger.Info("search rate limiting enabled",
			slog.Float64("rps", cfg.RateLimit.RPS),
			slog.Int("burst", cfg.RateLimit.Burst),
			slog.Bool("trust_proxy", cfg.RateLimit.TrustProxy))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	mux := http.NewServeMux()
	hreview.Register(mux, reviewSvc, paginationCfg, hauth.Authn([]byte(cfg.Auth.JWTSecret)), logger)
	hsearch.Register(mux, searchSvc, paginationCfg, searchLimit, logger)

	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, Pinger: breaker, Breaker: breaker, Version: version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Pinger: breaker})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return applyMiddleware(logger, mux, cfg.Server)
}

// applyMiddleware wraps the handler with the middleware chain.
// Order (outermost first): Recover → Request ID → Logging → Input validation
// → Timeout → Tracing → Metrics → mux. Tracing and metrics read the matched
// route pattern after the mux has run, so nothing between them and the mux
// may replace the request.
func applyMiddleware(logger *slog.Logger, mux http.Handler, cfg config.ServerConfig) http.Handler {
	h := hhttp.MetricsMiddleware(mux)
	h = tracing.Middleware(h)
	h = hhttp.Timeout(cfg.RequestTimeout)(h)
	h = hhttp.InputValidation()(h)
	h = hhttp.Logging(logger)(h)
	h = requestid.Middleware(h)
	h = hhttp.Recover(logger)(h)
	return h
}

// runServer serves until ctx is canceled, then drains in-flight requests.
func runServer(ctx context.Context, logger *slog.Logger, handler http.Handler, cfg config.ServerConfig, version string) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout, // Prevent Slowloris attacks
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
