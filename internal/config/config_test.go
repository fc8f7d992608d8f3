package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixfil/yogapluriel-sub002/internal/config"
)

const sessionSecret = "this-is-a-very-long-secret-key-for-testing-purposes-123456789" // pragma: allowlist secret

// validConfig returns a minimal configuration that passes Validate.
func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080},
		Session: config.SessionConfig{
			Secret:        sessionSecret,
			TTL:           168 * time.Hour,
			RefreshWindow: 24 * time.Hour,
		},
		Gate: config.GateConfig{
			AdminPrefix:     "/admin",
			AdminLoginPath:  "/admin/login",
			MaintenancePath: "/maintenance",
			SiteRoot:        "/",
		},
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(*testing.T, *config.Config)
	}{
		{
			name: "valid_configuration",
			envVars: map[string]string{
				"SESSION_SECRET": sessionSecret,
				"SERVER_PORT":    "9090",
				"REDIS_URL":      "redis://localhost:6380",
			},
			wantErr: false,
			validate: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "redis://localhost:6380", cfg.Redis.URL)
				assert.Equal(t, sessionSecret, cfg.Session.Secret)
			},
		},
		{
			name: "gate_defaults",
			envVars: map[string]string{
				"SESSION_SECRET": sessionSecret,
			},
			wantErr: false,
			validate: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "/admin", cfg.Gate.AdminPrefix)
				assert.Equal(t, "/admin/login", cfg.Gate.AdminLoginPath)
				assert.Equal(t, "/maintenance", cfg.Gate.MaintenancePath)
				assert.Equal(t, "/", cfg.Gate.SiteRoot)
				assert.Contains(t, cfg.Gate.ExcludedPrefixes, "/_next/")
				assert.Contains(t, cfg.Gate.AssetExtensions, "woff2")
			},
		},
		{
			name: "session_defaults",
			envVars: map[string]string{
				"SESSION_SECRET": sessionSecret,
			},
			wantErr: false,
			validate: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "yp_session", cfg.Session.CookieName)
				assert.Equal(t, 168*time.Hour, cfg.Session.TTL)
				assert.Equal(t, 24*time.Hour, cfg.Session.RefreshWindow)
				assert.True(t, cfg.Session.CookieSecure)
			},
		},
		{
			name: "missing_session_secret",
			envVars: map[string]string{
				"SERVER_PORT": "8080",
			},
			wantErr: true,
		},
		{
			name: "short_session_secret",
			envVars: map[string]string{
				"SESSION_SECRET": "short",
				"SERVER_PORT":    "8080",
			},
			wantErr: true,
		},
		{
			name: "invalid_port",
			envVars: map[string]string{
				"SESSION_SECRET": sessionSecret,
				"SERVER_PORT":    "99999",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv()

			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := config.Load()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.validate != nil {
				tt.validate(t, cfg)
			}

			// Verify default values are set
			assert.Equal(t, "0.0.0.0", cfg.Server.Host)
			assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
			assert.Equal(t, "info", cfg.Logging.Level)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{
			name:    "valid_config",
			mutate:  func(*config.Config) {},
			wantErr: false,
		},
		{
			name:    "empty_session_secret",
			mutate:  func(c *config.Config) { c.Session.Secret = "" },
			wantErr: true,
		},
		{
			name:    "short_session_secret",
			mutate:  func(c *config.Config) { c.Session.Secret = "short" },
			wantErr: true,
		},
		{
			name:    "invalid_port_low",
			mutate:  func(c *config.Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid_port_high",
			mutate:  func(c *config.Config) { c.Server.Port = 99999 },
			wantErr: true,
		},
		{
			name:    "ttl_below_minimum",
			mutate:  func(c *config.Config) { c.Session.TTL = 30 * time.Minute },
			wantErr: true,
		},
		{
			name: "refresh_window_not_below_ttl",
			mutate: func(c *config.Config) {
				c.Session.TTL = 24 * time.Hour
				c.Session.RefreshWindow = 24 * time.Hour
			},
			wantErr: true,
		},
		{
			name:    "relative_admin_prefix",
			mutate:  func(c *config.Config) { c.Gate.AdminPrefix = "admin" },
			wantErr: true,
		},
		{
			name:    "relative_maintenance_path",
			mutate:  func(c *config.Config) { c.Gate.MaintenancePath = "maintenance" },
			wantErr: true,
		},
		{
			name:    "login_path_outside_admin_prefix",
			mutate:  func(c *config.Config) { c.Gate.AdminLoginPath = "/login" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigServerAddr(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 9090,
		},
	}

	addr := cfg.ServerAddr()
	assert.Equal(t, "localhost:9090", addr)
}

func TestConfigIsTLSEnabled(t *testing.T) {
	tests := []struct {
		name     string
		config   *config.Config
		expected bool
	}{
		{
			name: "tls_enabled",
			config: &config.Config{
				Server: config.ServerConfig{
					TLSCert: "/path/to/cert.pem",
					TLSKey:  "/path/to/key.pem",
				},
			},
			expected: true,
		},
		{
			name: "tls_disabled_no_cert",
			config: &config.Config{
				Server: config.ServerConfig{
					TLSKey: "/path/to/key.pem",
				},
			},
			expected: false,
		},
		{
			name: "tls_disabled_no_key",
			config: &config.Config{
				Server: config.ServerConfig{
					TLSCert: "/path/to/cert.pem",
				},
			},
			expected: false,
		},
		{
			name: "tls_disabled_empty",
			config: &config.Config{
				Server: config.ServerConfig{},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.IsTLSEnabled()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfigPostgres(t *testing.T) {
	cfg := &config.Config{
		Postgres: config.DatabaseConfig{
			Host:     "db.internal",
			Port:     5432,
			Database: "yogapluriel",
			Schema:   "public",
			User:     "gateway_service",
			Password: "secret",
			SSLMode:  "require",
		},
	}

	assert.True(t, cfg.IsPostgresConfigured())
	assert.Equal(t,
		"host=db.internal port=5432 dbname=yogapluriel user=gateway_service password=secret sslmode=require search_path=public",
		cfg.PostgresDSN(),
	)

	cfg.Postgres.Password = ""
	assert.False(t, cfg.IsPostgresConfigured())
}

func clearEnv() {
	envVars := []string{
		"SERVER_PORT", "SERVER_HOST", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB", "POSTGRES_GATEWAY_DB_USER", "POSTGRES_GATEWAY_DB_PASSWORD",
		"REDIS_URL", "REDIS_PASSWORD", "REDIS_DB",
		"SESSION_SECRET", "SESSION_COOKIE_NAME", "SESSION_TTL", "SESSION_REFRESH_WINDOW",
		"GATE_ADMIN_PREFIX", "GATE_ADMIN_LOGIN_PATH", "GATE_MAINTENANCE_PATH", "GATE_SITE_ROOT",
		"GATE_EXCLUDED_PREFIXES", "GATE_ASSET_EXTENSIONS",
		"SECURITY_RATE_LIMIT_RPS", "SECURITY_RATE_LIMIT_BURST", "SECURITY_TRUSTED_PROXIES",
		"LOGGING_LEVEL", "LOGGING_FORMAT",
	}

	for _, env := range envVars {
		os.Unsetenv(env)
	}
}
