package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("database.ssl_mode = %q, want disable", cfg.Database.SSLMode)
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Errorf("auth.bcrypt_cost = %d, want 12", cfg.Auth.BcryptCost)
	}
	if !cfg.Audit.LogReadOperations {
		t.Error("audit.log_read_operations should default to true")
	}
	if cfg.Sharing.LinkBasePath != "/shared" {
		t.Errorf("sharing.link_base_path = %q, want /shared", cfg.Sharing.LinkBasePath)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	os.Setenv("RB_SERVER_PORT", "9999")
	os.Setenv("RB_DATABASE_HOST", "db.internal")
	t.Cleanup(func() {
		os.Unsetenv("RB_SERVER_PORT")
		os.Unsetenv("RB_DATABASE_HOST")
	})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("database.host = %q, want db.internal", cfg.Database.Host)
	}
}

func TestLoad_JWTSecretFromEnv(t *testing.T) {
	os.Setenv("JWT_SECRET", "super-secret-value-for-tests-32ch!")
	t.Cleanup(func() { os.Unsetenv("JWT_SECRET") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.JWTSecret != "super-secret-value-for-tests-32ch!" {
		t.Errorf("auth.jwt_secret not picked up from JWT_SECRET env var")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 8181
  public_url: https://jobs.example.com
sharing:
  resolve_requests_per_minute: 5
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("server.port = %d, want 8181", cfg.Server.Port)
	}
	if got := cfg.Server.GetPublicURL(); got != "https://jobs.example.com" {
		t.Errorf("GetPublicURL() = %q, want https://jobs.example.com", got)
	}
	if cfg.Sharing.ResolveRequestsPerMinute != 5 {
		t.Errorf("sharing.resolve_requests_per_minute = %d, want 5", cfg.Sharing.ResolveRequestsPerMinute)
	}
}

func TestValidate_Errors(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080, ReadTimeout: time.Second, WriteTimeout: time.Second},
			Database: DatabaseConfig{MaxConnections: 25, MinIdleConnections: 5},
			Auth:     AuthConfig{BcryptCost: 12},
		}
	}

	cfg := base()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero port")
	}

	cfg = base()
	cfg.Database.MaxConnections = 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for max < min connections")
	}

	cfg = base()
	cfg.Auth.BcryptCost = 4
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bcrypt cost below 10")
	}

	cfg = base()
	cfg.Audit.Destinations = []ShipperDestination{{Type: "file"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for file shipper without path")
	}

	cfg = base()
	cfg.Audit.Destinations = []ShipperDestination{{Type: "syslog"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown shipper type")
	}
}
