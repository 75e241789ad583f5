package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresRPCAndMySQL(t *testing.T) {
	os.Unsetenv("RPC_URL")
	os.Unsetenv("MYSQL")
	os.Unsetenv("GRPC_URL")
	os.Unsetenv("API_PORT")

	_, err := Load()
	require.Error(t, err)

	os.Setenv("RPC_URL", "https://example.invalid")
	defer os.Unsetenv("RPC_URL")
	_, err = Load()
	require.Error(t, err)

	os.Setenv("MYSQL", "user:pass@tcp(127.0.0.1:3306)/db")
	defer os.Unsetenv("MYSQL")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 11000, cfg.APIPort)
	require.Error(t, cfg.RequireGRPC())
}

func TestLoadCustomAPIPort(t *testing.T) {
	os.Setenv("RPC_URL", "https://example.invalid")
	os.Setenv("MYSQL", "user:pass@tcp(127.0.0.1:3306)/db")
	os.Setenv("API_PORT", "9001")
	defer os.Unsetenv("RPC_URL")
	defer os.Unsetenv("MYSQL")
	defer os.Unsetenv("API_PORT")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9001, cfg.APIPort)
}
