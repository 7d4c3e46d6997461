package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: 8080},
		Storage:  StorageConfig{Backend: BackendMemory},
		Auth:     AuthConfig{TokenSecret: "0123456789abcdef", TokenTTL: time.Hour},
		Postgres: PostgresConfig{Host: "localhost", User: "u", Password: "p", DBName: "db"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{name: "memory", mutate: func(*Config) {}, ok: true},
		{name: "postgres", mutate: func(c *Config) { c.Storage.Backend = BackendPostgres }, ok: true},
		{name: "no_port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "unknown_backend", mutate: func(c *Config) { c.Storage.Backend = "sqlite" }},
		{name: "short_secret", mutate: func(c *Config) { c.Auth.TokenSecret = "short" }},
		{name: "zero_ttl", mutate: func(c *Config) { c.Auth.TokenTTL = 0 }},
		{name: "postgres_no_credentials", mutate: func(c *Config) {
			c.Storage.Backend = BackendPostgres
			c.Postgres.Password = ""
		}},
		{name: "memory_ignores_postgres", mutate: func(c *Config) { c.Postgres = PostgresConfig{} }, ok: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
		})
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("AUTH_TOKEN_SECRET", "a-very-long-test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("POSTGRES_TX_MAX_ELAPSED", "5s")

	cfg, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.Storage.Backend)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 5*time.Second, cfg.Postgres.TxMaxElapsed)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, "bugtracker", cfg.Auth.Issuer)
}

func TestNewConfigEnvFileDoesNotOverrideProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT=7070\nSTORAGE_BACKEND=postgres\nAUTH_TOKEN_SECRET=secret-from-env-file\n"), 0o600))

	t.Setenv(envFileVar, path)
	t.Setenv("STORAGE_BACKEND", "memory")
	// registered with t.Setenv so cleanup restores them after loadEnvFile sets them
	for _, k := range []string{"SERVER_PORT", "AUTH_TOKEN_SECRET"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, BackendMemory, cfg.Storage.Backend)
	require.Equal(t, "secret-from-env-file", cfg.Auth.TokenSecret)
}
