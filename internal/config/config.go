// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	LogLevel        string
	ShutdownTimeout time.Duration

	DB    DBConfig
	Cache CacheConfig
}

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// CacheConfig enables the Redis list cache when Addr is set.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

const defaultMySQLDSN = "root:root@tcp(localhost:3306)/food"

// Load reads envFile (ignored when missing) and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	l := loader{}
	cfg := Config{
		HTTPAddr:        l.getString("HTTP_ADDR", ":8080"),
		GRPCAddr:        l.getString("GRPC_ADDR", ":50051"),
		LogLevel:        l.getString("LOG_LEVEL", "info"),
		ShutdownTimeout: l.getDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		DB: DBConfig{
			Driver:          l.getString("DB_DRIVER", "mysql"),
			DSN:             l.getString("DB_DSN", defaultMySQLDSN),
			MaxOpenConns:    l.getInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    l.getInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: l.getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     l.getBool("DB_AUTO_MIGRATE", true),
		},
		Cache: CacheConfig{
			Addr:     l.getString("REDIS_ADDR", ""),
			Password: l.getString("REDIS_PASSWORD", ""),
			DB:       l.getInt("REDIS_DB", 0),
			TTL:      l.getDuration("CACHE_TTL", 5*time.Minute),
		},
	}
	if err := errors.Join(l.errs...); err != nil {
		return Config{}, err
	}

	switch cfg.DB.Driver {
	case "mysql", "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DB.Driver)
	}
	return cfg, nil
}

// loader collects every malformed variable instead of stopping at the first.
type loader struct {
	errs []error
}

func (l *loader) getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (l *loader) getInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (l *loader) getBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (l *loader) getDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
