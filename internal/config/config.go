package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	HTTPAddr     string
	ClientOrigin string
	LogLevel     string
	Location     *time.Location

	// TrustedProxies may set X-Forwarded-For; empty means only the socket address counts.
	TrustedProxies []string

	DBDSN string

	JWTSecret    string
	JWTTTL       time.Duration
	CookieName   string
	CookieSecure bool
	BcryptCost   int

	AdminEmail    string
	AdminPassword string
	AdminName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthRateLimit  int
	AuthRateWindow time.Duration

	EnforceOwnership bool
	MaxRangeDays     int
	MetricsEnabled   bool
}

// fileConfig is the optional YAML layer beneath the environment.
// Keys mirror the environment variable names.
type fileConfig map[string]string

// Load loads configuration from .env (optional), an optional YAML file named by CONFIG_FILE,
// and environment variables. Environment variables win over the YAML file.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	defaults, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	get := func(key, def string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		if v, ok := defaults[key]; ok {
			return v
		}
		return def
	}

	cfg := &Config{}

	// Application environment (default: dev)
	cfg.IsProduction = get("APP_ENV", "dev") == PROD_STRING

	cfg.HTTPAddr = get("HTTP_ADDR", ":4000")
	cfg.ClientOrigin = get("CLIENT_ORIGIN", "http://localhost:5173")
	cfg.LogLevel = get("LOG_LEVEL", "info")
	if cfg.TrustedProxies, err = parseProxies(get("TRUSTED_PROXIES", "")); err != nil {
		return nil, err
	}

	// Calendar days and export timestamps are rendered in this zone.
	tz := get("TIMEZONE", "UTC")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	// Database DSN is required
	cfg.DBDSN = get("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for signing session tokens
	cfg.JWTSecret = get("JWT_SECRET", "")
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET is required and must be at least 32 characters")
	}

	if cfg.JWTTTL, err = parseDuration("JWT_TTL", get("JWT_TTL", "168h")); err != nil {
		return nil, err
	}
	cfg.CookieName = get("COOKIE_NAME", "party_zala_token")
	if cfg.CookieSecure, err = parseBool("COOKIE_SECURE", get("COOKIE_SECURE", "false")); err != nil {
		return nil, err
	}

	// Bcrypt cost for password hashing (default: 12)
	if cfg.BcryptCost, err = parseInt("BCRYPT_COST", get("BCRYPT_COST", "12")); err != nil {
		return nil, err
	}

	cfg.AdminEmail = get("ADMIN_EMAIL", "")
	cfg.AdminPassword = get("ADMIN_PASSWORD", "")
	cfg.AdminName = get("ADMIN_NAME", "Admin")
	if cfg.AdminEmail != "" && len(cfg.AdminPassword) < 8 {
		return nil, fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}

	// Redis is optional; without it revoked sessions are tracked in memory.
	cfg.RedisAddr = get("REDIS_ADDR", "")
	cfg.RedisPassword = get("REDIS_PASSWORD", "")
	if cfg.RedisDB, err = parseInt("REDIS_DB", get("REDIS_DB", "0")); err != nil {
		return nil, err
	}

	if cfg.AuthRateLimit, err = parseInt("AUTH_RATE_LIMIT", get("AUTH_RATE_LIMIT", "5")); err != nil {
		return nil, err
	}
	if cfg.AuthRateWindow, err = parseDuration("AUTH_RATE_WINDOW", get("AUTH_RATE_WINDOW", "15m")); err != nil {
		return nil, err
	}

	if cfg.EnforceOwnership, err = parseBool("ENFORCE_OWNERSHIP", get("ENFORCE_OWNERSHIP", "false")); err != nil {
		return nil, err
	}
	if cfg.MaxRangeDays, err = parseInt("MAX_RANGE_DAYS", get("MAX_RANGE_DAYS", "90")); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled, err = parseBool("METRICS_ENABLED", get("METRICS_ENABLED", "true")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile reads the optional YAML layer. A missing path yields no defaults.
func loadFile(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if fc == nil {
		fc = fileConfig{}
	}
	return fc, nil
}

// parseProxies reads a comma-separated list of IPs or CIDRs.
func parseProxies(value string) ([]string, error) {
	var proxies []string
	for _, p := range strings.Split(value, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil && net.ParseIP(p) == nil {
			return nil, fmt.Errorf("env TRUSTED_PROXIES entry %q is not an IP or CIDR", p)
		}
		proxies = append(proxies, p)
	}
	return proxies, nil
}

func parseInt(key, value string) (int, error) {
	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, value, err)
	}
	return val, nil
}

func parseBool(key, value string) (bool, error) {
	val, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid boolean: %w", key, value, err)
	}
	return val, nil
}

// parseDuration parses values such as "15m" or "168h".
func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
