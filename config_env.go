package ocidrv

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ConfigFromEnv builds a Config (username/password/DSN plus the tuning
// knobs OpTimeout/ConnMaxLifetime/LogQueries) from environment
// variables, first attempting to load a local .env file the way
// aashiq-04-oracle-dba's config loader does -- a missing .env is not an
// error, since production deployments set the real environment
// directly instead of shipping a file.
//
// Recognised variables: ORACLE_DSN, ORACLE_USERNAME, ORACLE_PASSWORD,
// ORACLE_OP_TIMEOUT, ORACLE_CONN_MAX_LIFETIME, ORACLE_LOG_QUERIES.
func ConfigFromEnv() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()
	cfg.DSN = os.Getenv("ORACLE_DSN")
	cfg.Username = os.Getenv("ORACLE_USERNAME")
	cfg.Password = os.Getenv("ORACLE_PASSWORD")
	if d, err := time.ParseDuration(os.Getenv("ORACLE_OP_TIMEOUT")); err == nil {
		cfg.OpTimeout = d
	}
	if d, err := time.ParseDuration(os.Getenv("ORACLE_CONN_MAX_LIFETIME")); err == nil {
		cfg.ConnMaxLifetime = d
	}
	if v, err := strconv.ParseBool(os.Getenv("ORACLE_LOG_QUERIES")); err == nil {
		cfg.LogQueries = v
	}
	return cfg
}

// OpenConnectionFromEnv opens a standalone Connection using
// ConfigFromEnv, overridden by any opts passed in (opts apply after the
// environment-derived defaults, so a caller can still override a single
// field without re-specifying the rest).
func (e *Environment) OpenConnectionFromEnv(ctx context.Context, opts ...Option) (*Connection, error) {
	cfg := ConfigFromEnv()
	cfg.Formats = e.Formats()
	if cfg.Logger == nil {
		cfg.Logger = e.log()
	}
	for _, o := range opts {
		o(&cfg)
	}
	return e.openConnectionWithConfig(ctx, cfg, nil)
}
