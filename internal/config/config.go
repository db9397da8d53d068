package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds everything the catalog service needs at startup.
type Config struct {
	HTTPPort     int
	GRPCPort     int
	Store        string
	LogLevel     slog.Level
	QueryTimeout time.Duration
	Migrate      bool
	DB           struct {
		DSN          string
		MaxOpenConns int
		MaxIdleConns int
		MaxIdleTime  time.Duration
	}
}

// Load reads an optional .env file, then the environment, then args.
// Flags win over environment variables.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var (
		cfg      Config
		logLevel string
		errs     []error
	)
	fs := flag.NewFlagSet("catalogservice", flag.ContinueOnError)

	fs.IntVar(&cfg.HTTPPort, "http-port", envInt("CATALOG_HTTP_PORT", 8081, &errs), "HTTP API port")
	fs.IntVar(&cfg.GRPCPort, "grpc-port", envInt("CATALOG_GRPC_PORT", 9092, &errs), "gRPC API port")
	fs.StringVar(&cfg.Store, "store", envString("CATALOG_STORE", StorePostgres), "Storage backend (postgres|memory)")
	fs.StringVar(&logLevel, "log-level", envString("LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	fs.DurationVar(&cfg.QueryTimeout, "query-timeout", envDuration("QUERY_TIMEOUT", 5*time.Second, &errs), "Timeout for a single store call")
	fs.BoolVar(&cfg.Migrate, "migrate", envBool("CATALOG_MIGRATE", false, &errs), "Apply the embedded schema at startup")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", os.Getenv("CATALOG_DATABASE_URL"), "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", envInt("DB_MAX_OPEN_CONNS", 25, &errs), "PostgreSQL max open connections")
	fs.IntVar(&cfg.DB.MaxIdleConns, "db-max-idle-conns", envInt("DB_MAX_IDLE_CONNS", 25, &errs), "PostgreSQL max idle connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", envDuration("DB_MAX_IDLE_TIME", 15*time.Minute, &errs), "PostgreSQL max connection idle time")

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", logLevel)
	}
	cfg.Store = strings.ToLower(cfg.Store)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DB.DSN == "" {
			return errors.New("CATALOG_DATABASE_URL (or -db-dsn) is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.HTTPPort <= 0 || c.GRPCPort <= 0 {
		return errors.New("ports must be positive")
	}
	if c.QueryTimeout <= 0 {
		return errors.New("query timeout must be positive")
	}
	return nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int, errs *[]error) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func envBool(key string, fallback bool, errs *[]error) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
