package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	StoreDriver string `env:"STORE_DRIVER, default=sqlite"`

	SQLite  SQLiteConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Session SessionConfig
	Twilio  TwilioConfig
}

type SQLiteConfig struct {
	Path string `env:"DB_PATH, default=database.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=sos_alert"`
}

// RedisConfig points at the session revocation store. An empty Addr disables it.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET, required"`
	TTL          time.Duration `env:"SESSION_TTL,           default=24h"`
	CookieName   string        `env:"SESSION_COOKIE_NAME,   default=sos_session"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=false"`
}

type TwilioConfig struct {
	AccountSID string        `env:"TWILIO_ACCOUNT_SID, required"`
	AuthToken  string        `env:"TWILIO_AUTH_TOKEN,  required"`
	FromNumber string        `env:"TWILIO_FROM_NUMBER, required"`
	Timeout    time.Duration `env:"SMS_TIMEOUT,        default=10s"`
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from the environment using go-envconfig. A .env
// file in the working directory, when present, is loaded first without
// overriding variables that are already set.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := load(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if cfg.StoreDriver != StoreSQLite && cfg.StoreDriver != StoreMongo {
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreSQLite, StoreMongo, cfg.StoreDriver)
	}
	return &cfg, nil
}
