// Package config provides unified configuration for the falpipe gateway.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (FALPIPE_ prefix, plus FAL_KEY)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"time"

	"github.com/bmertz/falpipe/pkg/settings"
)

// Config holds all configuration for the falpipe gateway.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Backend       BackendConfig       `yaml:"backend"`
	Pipe          PipeConfig          `yaml:"pipe"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 10 MB
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
	Limits          LimitsConfig  `yaml:"limits"`
}

// LimitsConfig holds request validation limits.
type LimitsConfig struct {
	MaxMessages    int `yaml:"max_messages"`     // default: 1000
	MaxContentSize int `yaml:"max_content_size"` // default: 1 MB
}

// BackendConfig holds fal.ai queue client settings.
type BackendConfig struct {
	QueueURL     string        `yaml:"queue_url"`     // default: "https://queue.fal.run"
	Timeout      time.Duration `yaml:"timeout"`       // default: 120s
	PollInterval time.Duration `yaml:"poll_interval"` // default: 500ms
}

// PipeConfig holds the initial settings document. It seeds the settings
// store on first boot; after that the stored document wins and this
// section is ignored.
type PipeConfig struct {
	Initial settings.Settings `yaml:"initial"`

	// CredentialFile is the _file variant for initial.credential.
	CredentialFile string `yaml:"credential_file"`
}

// StorageConfig holds settings persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	DSNFile         string        `yaml:"dsn_file"` // _file variant for dsn
	MaxConns        int32         `yaml:"max_conns"`         // default: 10
	MinConns        int32         `yaml:"min_conns"`         // default: 1
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"` // default: 5m
	MigrateOnStart  bool          `yaml:"migrate_on_start"`  // default: false
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Type      string          `yaml:"type"`     // "none", "apikey", "jwt", default: "none"
	APIKeys   []APIKeyConfig  `yaml:"api_keys"` // API key entries for type=apikey
	JWT       JWTConfig       `yaml:"jwt"`      // shared-secret settings for type=jwt
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key         string   `yaml:"key"`
	KeyFile     string   `yaml:"key_file"` // _file variant for key
	Subject     string   `yaml:"subject"`
	ServiceTier string   `yaml:"service_tier"`
	Scopes      []string `yaml:"scopes"`
}

// JWTConfig holds shared-secret JWT validation settings.
type JWTConfig struct {
	Secret      string `yaml:"secret"`
	SecretFile  string `yaml:"secret_file"` // _file variant for secret
	Issuer      string `yaml:"issuer"`
	Audience    string `yaml:"audience"`
	UserClaim   string `yaml:"user_claim"`   // default: "sub"
	TierClaim   string `yaml:"tier_claim"`   // default: "tier"
	ScopesClaim string `yaml:"scopes_claim"` // default: "scope"
}

// RateLimitConfig holds per-tier rate limit settings.
type RateLimitConfig struct {
	Enabled    bool           `yaml:"enabled"`     // default: false
	DefaultRPM int            `yaml:"default_rpm"` // default: 60
	Tiers      map[string]int `yaml:"tiers"`       // tier -> requests per minute
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds log level and debug category settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // default: "INFO"
	Debug string `yaml:"debug"` // comma-separated debug categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			MaxBodySize:     10 << 20,
			ShutdownTimeout: 30 * time.Second,
			Limits: LimitsConfig{
				MaxMessages:    1000,
				MaxContentSize: 1 << 20,
			},
		},
		Backend: BackendConfig{
			QueueURL:     "https://queue.fal.run",
			Timeout:      120 * time.Second,
			PollInterval: 500 * time.Millisecond,
		},
		Pipe: PipeConfig{
			Initial: settings.Default(),
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns:        10,
				MinConns:        1,
				MaxConnLifetime: 5 * time.Minute,
			},
		},
		Auth: AuthConfig{
			Type: "none",
			RateLimit: RateLimitConfig{
				DefaultRPM: 60,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			Logging: LoggingConfig{
				Level: "INFO",
			},
		},
	}
}
