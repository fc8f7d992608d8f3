// Package config provides configuration management for the site gateway.
// It supports environment variable-based configuration with validation and
// default values for all service components including server, Postgres,
// Redis, session, gate, security, and logging settings, plus an optional
// YAML overlay for the gate's operational path lists.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// MinSessionSecretLength is the minimum required length for the
	// session cookie signing secret.
	MinSessionSecretLength = 32
	// MinPortNumber is the minimum valid port number.
	MinPortNumber = 1
	// MaxPortNumber is the maximum valid port number.
	MaxPortNumber = 65535
)

// Config represents the complete configuration for the site gateway,
// aggregating all component-specific configurations.
type Config struct {
	// Environment holds environment-specific settings.
	Environment EnvironmentConfig `envconfig:"ENVIRONMENT"`
	// Server contains HTTP server configuration including ports, timeouts, and TLS settings.
	Server ServerConfig `envconfig:"SERVER"`
	// Postgres contains PostgreSQL database configuration.
	Postgres DatabaseConfig `envconfig:"POSTGRES"`
	// Redis contains Redis connection and pool configuration for the session store.
	Redis RedisConfig `envconfig:"REDIS"`
	// Session contains session cookie and lifetime settings.
	Session SessionConfig `envconfig:"SESSION"`
	// Gate contains the request gate's path constants and exclusion lists.
	Gate GateConfig `envconfig:"GATE"`
	// Security contains security-related settings like rate limiting and trusted proxies.
	Security SecurityConfig `envconfig:"SECURITY"`
	// Logging contains logging configuration.
	Logging LoggingConfig `envconfig:"LOGGING"`
}

// Environment identifies the running environment.
type Environment string

const (
	// Local is the developer-workstation environment.
	Local Environment = "LOCAL"
	// NonProd is the staging/preview environment.
	NonProd Environment = "NONPROD"
	// Prod is the production environment.
	Prod Environment = "PROD"
)

// EnvironmentConfig holds environment-specific settings.
type EnvironmentConfig struct {
	// Environment indicates the current running environment (LOCAL, NONPROD, PROD).
	Environment Environment `envconfig:"ENV" default:"LOCAL"`
}

// ServerConfig holds HTTP server configuration including network settings,
// timeouts, and TLS certificate paths.
type ServerConfig struct {
	// Port is the HTTP server listening port.
	Port int `envconfig:"PORT"             default:"8080"`
	// Host is the network interface to bind to.
	Host string `envconfig:"HOST"             default:"0.0.0.0"`
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT"     default:"15s"`
	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT"    default:"15s"`
	// IdleTimeout is the maximum amount of time to wait for keep-alive connections.
	IdleTimeout time.Duration `envconfig:"IDLE_TIMEOUT"     default:"60s"`
	// ShutdownTimeout is the maximum time to wait for graceful server shutdown.
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	// TLSCert is the path to the TLS certificate file for HTTPS.
	TLSCert string `envconfig:"TLS_CERT"`
	// TLSKey is the path to the TLS private key file for HTTPS.
	TLSKey string `envconfig:"TLS_KEY"`
}

// DatabaseConfig contains PostgreSQL database connection configuration
// including connection pool settings and health check parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname.
	Host string `envconfig:"HOST"                default:"localhost"`
	// Port is the PostgreSQL server port.
	Port int `envconfig:"PORT"                default:"5432"`
	// Database is the PostgreSQL database name.
	Database string `envconfig:"DB"                  default:"yogapluriel"`
	// Schema is the PostgreSQL schema name.
	Schema string `envconfig:"SCHEMA"              default:"public"`
	// User is the database username. The gateway connects as a service
	// role that bypasses row-level security, so the gate's profile reads
	// succeed even for principals that cannot read their own row.
	User string `envconfig:"GATEWAY_DB_USER"`
	// Password is the database password.
	Password string `envconfig:"GATEWAY_DB_PASSWORD"`
	// SSLMode is the SSL connection mode (disable, require, verify-ca, verify-full).
	SSLMode string `envconfig:"SSL_MODE"            default:"require"`
	// MaxConn is the maximum number of connections in the pool.
	MaxConn int32 `envconfig:"MAX_CONN"            default:"25"`
	// MinConn is the minimum number of connections in the pool.
	MinConn int32 `envconfig:"MIN_CONN"            default:"5"`
	// MaxConnLifetime is the maximum lifetime of a connection.
	MaxConnLifetime time.Duration `envconfig:"MAX_CONN_LIFETIME"   default:"1h"`
	// MaxConnIdleTime is the maximum idle time for a connection.
	MaxConnIdleTime time.Duration `envconfig:"MAX_CONN_IDLE_TIME"  default:"30m"`
	// HealthCheckPeriod is how often to check database connectivity.
	HealthCheckPeriod time.Duration `envconfig:"HEALTH_CHECK_PERIOD" default:"30s"`
	// ConnectTimeout is the timeout for establishing connections.
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT"     default:"10s"`
}

// RedisConfig contains Redis connection configuration including
// connection pool settings and timeouts.
type RedisConfig struct {
	// URL is the Redis connection URL.
	URL string `envconfig:"URL"           default:"redis://localhost:6379"`
	// Password is the Redis authentication password.
	Password string `envconfig:"PASSWORD"`
	// DB is the Redis database number to use.
	DB int `envconfig:"DB"            default:"0"`
	// MaxRetries is the maximum number of retry attempts for failed operations.
	MaxRetries int `envconfig:"MAX_RETRIES"   default:"3"`
	// PoolSize is the maximum number of socket connections.
	PoolSize int `envconfig:"POOL_SIZE"     default:"10"`
	// MinIdleConn is the minimum number of idle connections.
	MinIdleConn int `envconfig:"MIN_IDLE_CONN" default:"5"`
	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration `envconfig:"DIAL_TIMEOUT"  default:"5s"`
	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT"  default:"3s"`
	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
	// PoolTimeout is the amount of time client waits for connection.
	PoolTimeout time.Duration `envconfig:"POOL_TIMEOUT"  default:"4s"`
	// IdleTimeout is the amount of time after which client closes idle connections.
	IdleTimeout time.Duration `envconfig:"IDLE_TIMEOUT"  default:"300s"`
}

// SessionConfig contains session cookie and lifetime settings used by the
// gate's session resolver.
type SessionConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string `envconfig:"COOKIE_NAME"    default:"yp_session"`
	// Secret is the HMAC signing secret for session cookie tokens
	// (required, minimum 32 characters).
	Secret string `envconfig:"SECRET"         required:"true"`
	// TTL is the lifetime of a session record.
	TTL time.Duration `envconfig:"TTL"            default:"168h"`
	// RefreshWindow is the remaining-lifetime threshold below which the
	// resolver extends the session and mints a replacement cookie.
	RefreshWindow time.Duration `envconfig:"REFRESH_WINDOW" default:"24h"`
	// CookieDomain is the Domain attribute for session cookies.
	CookieDomain string `envconfig:"COOKIE_DOMAIN"`
	// CookieSecure marks session cookies as Secure.
	CookieSecure bool `envconfig:"COOKIE_SECURE"  default:"true"`
}

// GateConfig contains the request gate's fixed path constants and the
// exclusion lists for infrastructure and static-asset traffic. The two list
// fields may additionally be overridden by the YAML overlay (see
// loadYAMLConfig); the envconfig defaults double as the compiled-in
// fallback when no YAML file is present.
type GateConfig struct {
	// AdminPrefix is the path prefix of the admin back-office.
	AdminPrefix string `envconfig:"ADMIN_PREFIX"     default:"/admin"`
	// AdminLoginPath is the admin login page, always reachable.
	AdminLoginPath string `envconfig:"ADMIN_LOGIN_PATH" default:"/admin/login"`
	// MaintenancePath is the public maintenance page.
	MaintenancePath string `envconfig:"MAINTENANCE_PATH" default:"/maintenance"`
	// SiteRoot is where role-unauthorized admin requests are bounced.
	SiteRoot string `envconfig:"SITE_ROOT"        default:"/"`
	// ExcludedPrefixes are infrastructure path prefixes the gate never
	// inspects (framework assets, API routes, static files, well-known).
	ExcludedPrefixes []string `envconfig:"EXCLUDED_PREFIXES" default:"/_next/,/api/,/static/,/.well-known/,/favicon.ico"`
	// AssetExtensions are file extensions treated as static assets.
	AssetExtensions []string `envconfig:"ASSET_EXTENSIONS" default:"svg,png,jpg,jpeg,gif,webp,avif,ico,css,js,mjs,map,woff,woff2,ttf,otf,eot,txt,xml,json,pdf,mp4,webm"`
}

// SecurityConfig contains security-related settings including
// rate limiting and trusted proxies.
type SecurityConfig struct {
	// RateLimitRPS is the maximum requests per second per client.
	RateLimitRPS int `envconfig:"RATE_LIMIT_RPS"    default:"100"`
	// RateLimitBurst is the maximum burst size for rate limiting.
	RateLimitBurst int `envconfig:"RATE_LIMIT_BURST"  default:"200"`
	// TrustedProxies are the trusted proxy IP addresses.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

// LoggingConfig contains logging configuration including
// log level, format, and output destination.
type LoggingConfig struct {
	// Level is the logging level (debug, info, warn, error).
	Level string `envconfig:"LEVEL"  default:"info"`
	// Format is the log output format (json, text).
	Format string `envconfig:"FORMAT" default:"json"`
	// Output is the log output destination (stdout, stderr, file path).
	Output string `envconfig:"OUTPUT" default:"stdout"`
}

// Load reads configuration from environment variables, applies the optional
// YAML overlay for the gate's path lists, and returns a validated Config
// instance. It returns an error if configuration is invalid or required
// values are missing.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := applyYAMLOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply YAML overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate performs comprehensive validation of all configuration values,
// ensuring they meet security and operational requirements.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("session secret is required")
	}

	if len(c.Session.Secret) < MinSessionSecretLength {
		return fmt.Errorf("session secret must be at least %d characters long", MinSessionSecretLength)
	}

	if c.Server.Port < MinPortNumber || c.Server.Port > MaxPortNumber {
		return errors.New("server port must be between 1 and 65535")
	}

	if c.Session.TTL < time.Hour {
		return errors.New("session TTL must be at least 1 hour")
	}

	if c.Session.RefreshWindow >= c.Session.TTL {
		return errors.New("session refresh window must be shorter than the session TTL")
	}

	for name, p := range map[string]string{
		"admin prefix":     c.Gate.AdminPrefix,
		"admin login path": c.Gate.AdminLoginPath,
		"maintenance path": c.Gate.MaintenancePath,
		"site root":        c.Gate.SiteRoot,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must start with '/': %q", name, p)
		}
	}

	if !strings.HasPrefix(c.Gate.AdminLoginPath, c.Gate.AdminPrefix) {
		return errors.New("admin login path must be under the admin prefix")
	}

	return nil
}

// ServerAddr returns the formatted server address string in host:port format.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsTLSEnabled returns true if both TLS certificate and key paths are configured.
func (c *Config) IsTLSEnabled() bool {
	return c.Server.TLSCert != "" && c.Server.TLSKey != ""
}

// PostgresDSN returns the PostgreSQL connection string (Data Source Name).
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s search_path=%s",
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Database,
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.SSLMode,
		c.Postgres.Schema,
	)
}

// IsPostgresConfigured returns true if database user and password are configured.
func (c *Config) IsPostgresConfigured() bool {
	return c.Postgres.User != "" && c.Postgres.Password != ""
}
