package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	httpAPI "movie-catalog/internal/api"
	"movie-catalog/internal/config"
	grpcServer "movie-catalog/internal/grpc"
	"movie-catalog/internal/store"
)

// redactDSN hides the password when logging a connection string.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return "(unparsed dsn)"
	}
	return u.Redacted()
}

// openDB returns a tuned sqlx connection pool that has answered a ping.
func openDB(cfg *config.Config, logger *slog.Logger) (*sqlx.DB, error) {
	logger.Info("Connecting to catalog database", slog.String("dsn", redactDSN(cfg.DB.DSN)))

	db, err := sqlx.Open("postgres", cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.DB.MaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info("Database connection pool established")
	return db, nil
}

// newStore builds the configured MovieStore. The returned func releases it.
func newStore(cfg *config.Config, logger *slog.Logger) (store.MovieStore, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("Using in-memory movie store; data is lost on exit")
		return store.NewMemoryMovieStore(logger, store.DefaultGenres, store.DefaultLanguages), func() {}, nil
	}

	db, err := openDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		logger.Info("Closing catalog database connection...")
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", slog.String("error", err.Error()))
		}
	}

	pgStore, err := store.NewPostgresMovieStore(db, logger)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	if cfg.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := pgStore.Migrate(ctx); err != nil {
			closeDB()
			return nil, nil, err
		}
	}
	return pgStore, closeDB, nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("Catalog service stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	validate := validator.New()

	movieStorage, closeStore, err := newStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- gRPC ---
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on port %d: %w", cfg.GRPCPort, err)
	}
	grpcSrv := grpc.NewServer()
	grpcServer.RegisterMovieCatalogServer(grpcSrv, grpcServer.NewServer(movieStorage, logger))
	reflection.Register(grpcSrv)

	serveErr := make(chan error, 2)
	go func() {
		logger.Info("Catalog gRPC server starting", slog.Int("port", cfg.GRPCPort))
		if err := grpcSrv.Serve(lis); err != nil {
			serveErr <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	// --- HTTP ---
	movieHandler := httpAPI.NewMovieHandler(movieStorage, logger, validate, cfg.QueryTimeout)
	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      httpAPI.NewRouter(movieHandler),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	go func() {
		logger.Info("Catalog HTTP server starting", slog.Int("port", cfg.HTTPPort), slog.String("store", cfg.Store))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case s := <-quit:
		logger.Info("Catalog service shutting down...", slog.String("signal", s.String()))
	case runErr = <-serveErr:
		logger.Error("Server failed, shutting down", slog.String("error", runErr.Error()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}
	grpcSrv.GracefulStop()
	logger.Info("gRPC server gracefully stopped.")
	return runErr
}
