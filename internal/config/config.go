// Package config loads and validates the Recruitbase configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the RB_ prefix (e.g., RB_DATABASE_HOST
// overrides database.host in the YAML). This layering allows the same binary to
// run with a config.yaml in local development and with pure environment variables
// in containerized deployments — no recompilation or different binaries needed.
//
// The JWT_SECRET variable has no RB_ prefix because it may be injected by
// infrastructure tooling (e.g., Kubernetes secrets, Vault agent) that does not
// know the application-specific prefix and treats it as a generic secret name.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Sharing   SharingConfig   `mapstructure:"sharing"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	PublicURL    string        `mapstructure:"public_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// GetAddress returns the listen address in host:port form
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GetPublicURL returns the public-facing URL used when building shareable links.
// When server.public_url is set it is returned as-is; otherwise it falls back to
// server.base_url. This distinction matters in reverse-proxied deployments where
// the internal listen address (base_url) differs from the URL recipients of a
// shared link will actually hit (public_url).
func (s *ServerConfig) GetPublicURL() string {
	if s.PublicURL != "" {
		return s.PublicURL
	}
	return s.BaseURL
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
}

// GetDSN builds a PostgreSQL connection string from the individual fields
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// JWTSecret is read from the JWT_SECRET env var; see the package doc for why
	// it carries no RB_ prefix.
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTExpiry time.Duration `mapstructure:"jwt_expiry"`
	// BcryptCost is the cost factor used when hashing link passwords
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// LoggingConfig holds structured logging configuration
type LoggingConfig struct {
	Format string `mapstructure:"format"` // "json" or "text"
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
}

// TelemetryConfig holds metrics and profiling configuration
type TelemetryConfig struct {
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Profiling ProfilingConfig `mapstructure:"profiling"`
}

// MetricsConfig holds Prometheus exposition configuration
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// ProfilingConfig holds pprof side-channel configuration
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// AuditConfig holds audit trail configuration
type AuditConfig struct {
	// LogReadOperations controls whether anonymous resolution attempts of shared
	// links are recorded in addition to mutations. The audit trail is the only
	// record of anonymous link access, so this defaults to true.
	LogReadOperations bool `mapstructure:"log_read_operations"`
	// Destinations configures optional external audit shippers (file, webhook).
	// The database write is always performed regardless of destinations.
	Destinations []ShipperDestination `mapstructure:"destinations"`
}

// ShipperDestination configures one external audit log destination
type ShipperDestination struct {
	Type    string            `mapstructure:"type"` // "file" or "webhook"
	Path    string            `mapstructure:"path"` // file shipper
	URL     string            `mapstructure:"url"`  // webhook shipper
	Headers map[string]string `mapstructure:"headers"`
	Timeout time.Duration     `mapstructure:"timeout"`
}

// SharingConfig holds shareable link configuration
type SharingConfig struct {
	// LinkBasePath is the URL path prefix under which shared links are served
	LinkBasePath string `mapstructure:"link_base_path"`
	// ResolveRequestsPerMinute bounds anonymous resolution attempts per client IP
	ResolveRequestsPerMinute int `mapstructure:"resolve_requests_per_minute"`
	// ResolveBurstSize is the burst allowance for the resolution rate limit
	ResolveBurstSize int `mapstructure:"resolve_burst_size"`
}

// Load reads configuration from the given file path (optional) plus environment
// variables, applying defaults for anything unset.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/recruitbase")
		// A missing config file is fine; defaults + env vars take over.
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("RB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// JWT_SECRET is injected without the RB_ prefix by secret tooling.
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "recruitbase")
	v.SetDefault("database.user", "recruitbase")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_idle_connections", 5)

	// Auth
	v.SetDefault("auth.jwt_expiry", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)

	// Logging
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.level", "info")

	// Telemetry
	v.SetDefault("telemetry.metrics.enabled", true)
	v.SetDefault("telemetry.metrics.prometheus_port", 9090)
	v.SetDefault("telemetry.profiling.enabled", false)
	v.SetDefault("telemetry.profiling.port", 6060)

	// Audit
	v.SetDefault("audit.log_read_operations", true)

	// Sharing
	v.SetDefault("sharing.link_base_path", "/shared")
	v.SetDefault("sharing.resolve_requests_per_minute", 30)
	v.SetDefault("sharing.resolve_burst_size", 10)
}

// Validate checks that the configuration is internally consistent
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.MaxConnections < c.Database.MinIdleConnections {
		return fmt.Errorf("database.max_connections (%d) must be >= database.min_idle_connections (%d)",
			c.Database.MaxConnections, c.Database.MinIdleConnections)
	}
	if c.Auth.BcryptCost < 10 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 10 and 31, got %d", c.Auth.BcryptCost)
	}
	for i, d := range c.Audit.Destinations {
		switch d.Type {
		case "file":
			if d.Path == "" {
				return fmt.Errorf("audit.destinations[%d]: file shipper requires a path", i)
			}
		case "webhook":
			if d.URL == "" {
				return fmt.Errorf("audit.destinations[%d]: webhook shipper requires a url", i)
			}
		default:
			return fmt.Errorf("audit.destinations[%d]: unknown shipper type %q", i, d.Type)
		}
	}
	return nil
}
