package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Env     string `env:"APP_ENV" env-default:"local" env-description:"Environment"`
	Version string `env:"APP_VERSION" env-description:"Build version reported by /api/health"`
	Port    string `env:"PORT" env-default:"3000" env-description:"HTTP listen port"`

	Database Database

	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" env-default:"5s" env-description:"Upper bound for one engine call against the store"`
	HubBuffer       int           `env:"HUB_BUFFER" env-default:"64" env-description:"Queued events per viewer before drops"`
	StreamKeepAlive time.Duration `env:"STREAM_KEEPALIVE" env-default:"15s" env-description:"SSE keep-alive comment interval"`
	CardCacheTTL    time.Duration `env:"CARD_CACHE_TTL" env-default:"30s" env-description:"Card lookup cache TTL"`
	CORSOrigins     string        `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	DeviceRateLimit int           `env:"DEVICE_RATE_LIMIT" env-default:"120" env-description:"Device requests per minute per IP"`
}

// Database groups the MySQL connection settings.
type Database struct {
	Host       string `env:"DB_HOST" env-default:"localhost"`
	Port       string `env:"DB_PORT" env-default:"3306"`
	User       string `env:"DB_USER" env-default:"root"`
	Password   string `env:"DB_PASS" env-default:""`
	Name       string `env:"DB_NAME" env-default:"Attendance"`
	SkipSchema bool   `env:"DB_SKIP_SCHEMA" env-default:"false"`
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.StoreTimeout <= 0 {
		return Config{}, fmt.Errorf("STORE_TIMEOUT must be positive, got %s", cfg.StoreTimeout)
	}
	if cfg.HubBuffer <= 0 {
		return Config{}, fmt.Errorf("HUB_BUFFER must be positive, got %d", cfg.HubBuffer)
	}
	if cfg.StreamKeepAlive <= 0 {
		return Config{}, fmt.Errorf("STREAM_KEEPALIVE must be positive, got %s", cfg.StreamKeepAlive)
	}
	if cfg.DeviceRateLimit <= 0 {
		return Config{}, fmt.Errorf("DEVICE_RATE_LIMIT must be positive, got %d", cfg.DeviceRateLimit)
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return ":" + c.Port
}

// DSN renders the go-sql-driver DSN for the configured database.
func (d Database) DSN() string {
	mc := mysql.NewConfig()
	mc.User = d.User
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(d.Host, d.Port)
	mc.DBName = d.Name
	mc.ParseTime = true
	mc.ClientFoundRows = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// AllowedOrigins returns the CORS origins as a comma separated list without blanks.
func (c Config) AllowedOrigins() string {
	var out []string
	for _, part := range strings.Split(c.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}
