// Package config loads the handful of environment variables every daemon
// in this repo needs: a thin os.Getenv wrapper, with an optional .env file
// loaded first via joho/godotenv for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AlekSi/pointer"
	"github.com/joho/godotenv"
)

// defaultAPIPort is used whenever API_PORT is unset.
var defaultAPIPort = pointer.ToInt(11000)

// Config holds the connection info every cmd/ entrypoint needs. Not every
// field is required by every daemon: cmd/detector never dials GRPC_URL,
// for instance, but loading the full set up front keeps this one place as
// the sole source of environment-variable names across the repo.
type Config struct {
	RPCURL   string
	GRPCURL  string
	MySQLDSN string
	APIPort  int
}

// Load reads an optional .env file (silently ignored if absent) and then the
// process environment. RPC_URL and MYSQL are required; GRPC_URL is only
// required by cmd/indexer and cmd/realtime-detector, so it's left empty
// rather than erroring here.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		RPCURL:   strings.TrimSpace(os.Getenv("RPC_URL")),
		GRPCURL:  strings.TrimSpace(os.Getenv("GRPC_URL")),
		MySQLDSN: strings.TrimSpace(os.Getenv("MYSQL")),
		APIPort:  *defaultAPIPort,
	}

	if cfg.RPCURL == "" {
		return Config{}, fmt.Errorf("config: RPC_URL is not set")
	}
	if cfg.MySQLDSN == "" {
		return Config{}, fmt.Errorf("config: MYSQL is not set")
	}

	if raw := strings.TrimSpace(os.Getenv("API_PORT")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: API_PORT %q is not a valid port: %w", raw, err)
		}
		cfg.APIPort = port
	}

	return cfg, nil
}

// RequireGRPC returns an error if GRPCURL wasn't set; called by the
// entrypoints that actually need it.
func (c Config) RequireGRPC() error {
	if c.GRPCURL == "" {
		return fmt.Errorf("config: GRPC_URL is not set")
	}
	return nil
}
