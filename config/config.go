// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultEnvFile = "config/.env"
	envFileVar     = "BUGTRACKER_ENV_FILE"
)

// defaults doubles as the list of keys bound to the environment.
var defaults = map[string]any{
	"logging.level": "info",

	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.shutdown_timeout": 5 * time.Second,

	"http.request_timeout": 3 * time.Second,

	"storage.backend": BackendPostgres,

	"auth.token_ttl": 24 * time.Hour,
	"auth.issuer":    "bugtracker",

	"postgres.host":            "localhost",
	"postgres.port":            5432,
	"postgres.user":            "postgres",
	"postgres.password":        "postgres",
	"postgres.db_name":         "bug_tracker_db",
	"postgres.ssl_mode":        "disable",
	"postgres.migrations_dir":  "db/migrations",
	"postgres.migrate_timeout": 10 * time.Second,
	"postgres.query_timeout":   2 * time.Second,
	"postgres.max_conns":       10,
	"postgres.min_conns":       2,
	"postgres.tx_max_elapsed":  2 * time.Second,
}

// keys without a default that must still be read from the environment.
var requiredKeys = []string{"auth.token_secret"}

// NewConfig reads the optional .env file, overlays the process environment and
// validates the result. Variables already set in the process win over the file.
func NewConfig() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, k := range keys() {
		if d, ok := defaults[k]; ok {
			v.SetDefault(k, d)
		}
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	path := os.Getenv(envFileVar)
	if path == "" {
		path = defaultEnvFile
	}
	envMap, err := godotenv.Read(path)
	if err != nil {
		return
	}
	for k, val := range envMap {
		if _, exists := os.LookupEnv(k); !exists {
			_ = os.Setenv(k, val)
		}
	}
}

func keys() []string {
	res := make([]string, 0, len(defaults)+len(requiredKeys))
	for k := range defaults {
		res = append(res, k)
	}
	res = append(res, requiredKeys...)
	sort.Strings(res)
	return res
}
