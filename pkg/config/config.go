// Package config builds the service's runtime configuration from
// environment variables, using a *Config struct built by New().
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cuemby/catalogd/pkg/policyreload"
)

// AuthorizationConfig is the external interface's authorization policy
// surface: whether authorization is enabled at all, where its policy file
// lives, and the server name privilege checks are scoped under.
type AuthorizationConfig struct {
	Enabled    bool
	PolicyFile string
	ServerName string
}

// Config is the full set of environment-driven settings wired into
// cmd/catalogd.
type Config struct {
	Authorization AuthorizationConfig

	PolicyReloadInterval time.Duration

	ListenAddr   string
	HealthAddr   string
	MetaStoreDB  string
	MetaStorePoolSize int

	LogJSON  bool
	LogLevel string
}

// New builds a Config from CATALOGD_* environment variables, falling back
// to sensible defaults for local experimentation.
func New() *Config {
	return &Config{
		Authorization: AuthorizationConfig{
			Enabled:    envBool("CATALOGD_AUTHZ_ENABLED", true),
			PolicyFile: envString("CATALOGD_AUTHZ_POLICY_FILE", "policy.yaml"),
			ServerName: envString("CATALOGD_AUTHZ_SERVER_NAME", "server1"),
		},
		PolicyReloadInterval: envDuration("CATALOGD_AUTHZ_RELOAD_INTERVAL", policyreload.DefaultInterval),
		ListenAddr:           envString("CATALOGD_LISTEN_ADDR", ":26000"),
		HealthAddr:           envString("CATALOGD_HEALTH_ADDR", ":26001"),
		MetaStoreDB:          envString("CATALOGD_METASTORE_DB", "metastore.db"),
		MetaStorePoolSize:    envInt("CATALOGD_METASTORE_POOL_SIZE", 8),
		LogJSON:              envBool("CATALOGD_LOG_JSON", false),
		LogLevel:             envString("CATALOGD_LOG_LEVEL", "info"),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
