package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Auth     AuthConfig
	HTTP     HTTPConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Audit    AuditConfig
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`

	// The clinician account seeded at startup. Seeding is skipped when the
	// password is empty.
	SeedUsername string `env:"CLINICIAN_USERNAME, default=doctor"`
	SeedPassword string `env:"CLINICIAN_PASSWORD"`
}

type HTTPConfig struct {
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,     default=10s"`
}

type PostgresConfig struct {
	URL          string `env:"DATABASE_URL,            default=postgres://localhost:5432/health_records?sslmode=disable"`
	MaxOpenConns int    `env:"DATABASE_MAX_OPEN_CONNS, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=health_records"`
}

type RedisConfig struct {
	Addr       string        `env:"REDIS_ADDR,        default=localhost:6379"`
	Password   string        `env:"REDIS_PASSWORD"`
	DB         int           `env:"REDIS_DB,          default=0"`
	ProgramTTL time.Duration `env:"PROGRAM_CACHE_TTL, default=5m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
	Buffer  int `env:"AUDIT_BUFFER,  default=256"`
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// PrettyLogs reports whether console log output was requested. Production
// always logs JSON, whatever LOG_PRETTY says.
func (c *Config) PrettyLogs() bool {
	return c.LogPretty && !c.IsProduction()
}

// Load reads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
