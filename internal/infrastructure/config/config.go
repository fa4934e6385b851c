package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// devSecret signs tokens when no JWT_SECRET is set outside production.
const devSecret = "console-api-dev-secret"

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// Token lifetimes: short-lived access, 7-day refresh window.
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=24h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`

	// ActivityWorkers sizes the async activity-log dispatcher pool.
	ActivityWorkers int `env:"ACTIVITY_WORKERS, default=8"`

	MySQL MySQLConfig
	Redis RedisConfig
	Sweep SweepConfig
}

type MySQLConfig struct {
	Host     string `env:"MYSQL_HOST, default=localhost"`
	Port     string `env:"MYSQL_PORT, default=3306"`
	User     string `env:"MYSQL_USER, default=console"`
	Password string `env:"MYSQL_PASSWORD"`
	Database string `env:"MYSQL_DB,   default=console"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// SweepConfig drives the expired-session sweeper binary.
type SweepConfig struct {
	Schedule string        `env:"SWEEP_SCHEDULE, default=@every 5m"`
	LockTTL  time.Duration `env:"SWEEP_LOCK_TTL, default=4m"`
}

// Load reads configuration from environment variables using go-envconfig.
// The signing secret is mandatory in production; elsewhere a development
// fallback is substituted so local setups work out of the box.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if cfg.JWTSecret == "" {
		if cfg.Production() {
			return nil, errors.New("JWT_SECRET is required when ENV=production")
		}
		cfg.JWTSecret = devSecret
	}

	return &cfg, nil
}

// Production reports whether the process runs with production settings.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// DSN renders the MySQL connection string. parseTime maps DATETIME columns
// to time.Time; loc=UTC keeps comparisons consistent.
func (c MySQLConfig) DSN() string {
	auth := c.User
	if c.Password != "" {
		auth = fmt.Sprintf("%s:%s", c.User, c.Password)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, c.Host, c.Port, c.Database)
}
