package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/artshoppe/storefront/internal/core/gate"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Session   SessionConfig
	Auth      AuthConfig
	Identity  IdentityConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	CSP       CSPConfig
	Bootstrap BootstrapConfig
	Audit     AuditConfig
}

type SessionConfig struct {
	Secret    string        `env:"SESSION_SECRET"`
	TTL       time.Duration `env:"SESSION_TTL,        default=15m"`
	ClockSkew time.Duration `env:"SESSION_CLOCK_SKEW, default=0s"`
}

type AuthConfig struct {
	JWTSecret      string        `env:"AUTH_JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL, default=8h"`
}

type IdentityConfig struct {
	Provider string        `env:"IDENTITY_PROVIDER,   default=local"`
	URL      string        `env:"HOSTED_AUTH_URL"`
	APIKey   string        `env:"HOSTED_AUTH_API_KEY"`
	Timeout  time.Duration `env:"HOSTED_AUTH_TIMEOUT, default=5s"`
}

type StoreConfig struct {
	Admins string `env:"ADMIN_STORE, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	DB       int    `env:"REDIS_DB,   default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

type CSPConfig struct {
	StorageOrigin    string   `env:"CSP_STORAGE_ORIGIN"`
	FontStyleOrigins []string `env:"CSP_FONT_STYLE_ORIGINS, default=https://fonts.googleapis.com"`
	FontOrigins      []string `env:"CSP_FONT_ORIGINS,       default=https://fonts.gstatic.com"`
	PaymentOrigins   []string `env:"CSP_PAYMENT_ORIGINS,    default=https://js.stripe.com,https://hooks.stripe.com"`
}

type BootstrapConfig struct {
	Email    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	Password string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through l and validates the enumerated
// settings.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether ENV names a production deployment, using
// the same reading of ENV as the gate's security headers.
func (c *Config) IsProduction() bool {
	return gate.ParseMode(c.Env) == gate.ModeProduction
}

func (c *Config) validate() error {
	switch c.Identity.Provider {
	case "local":
	case "hosted":
		if c.Identity.URL == "" || c.Identity.APIKey == "" {
			return fmt.Errorf("config: HOSTED_AUTH_URL and HOSTED_AUTH_API_KEY are required when IDENTITY_PROVIDER=hosted")
		}
	default:
		return fmt.Errorf("config: unknown IDENTITY_PROVIDER %q", c.Identity.Provider)
	}

	switch c.Store.Admins {
	case "mongo":
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("config: POSTGRES_DSN is required when ADMIN_STORE=postgres")
		}
	default:
		return fmt.Errorf("config: unknown ADMIN_STORE %q", c.Store.Admins)
	}

	if c.Audit.Workers < 1 {
		c.Audit.Workers = 1
	}
	if c.IsProduction() && c.Session.Secret == "" {
		return fmt.Errorf("config: SESSION_SECRET is required in production")
	}
	return nil
}
