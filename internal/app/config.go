package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/order"
)

const defaultAddr = "0.0.0.0:8080"

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendLevelDB  = "leveldb"
	BackendPostgres = "postgres"
)

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"API server listen address"`
	AdminKey  string `env:"ADMIN_KEY" yaml:"admin_key" usage:"Key required in the api_key header of admin routes; empty disables the check" flag:"admin-key"`
	Storage   StorageConfig
	Orders    OrdersConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// StorageConfig selects the slot backend holding the order collection.
type StorageConfig struct {
	Backend     string `default:"leveldb" usage:"Slot backend: memory, leveldb or postgres"`
	Path        string `default:"data/storefront" usage:"LevelDB directory"`
	DatabaseURL string `env:"DATABASE_URL" yaml:"database_url" usage:"PostgreSQL connection URL (STOREFRONT_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Key         string `default:"geeks_orders" usage:"Storage key of the order collection"`
}

// OrdersConfig controls order numbering and pricing.
type OrdersConfig struct {
	IDPolicy    string `env:"ID_POLICY" yaml:"id_policy" default:"count" usage:"Order id policy: count or sequence" flag:"id-policy"`
	ShippingFee int    `env:"SHIPPING_FEE" yaml:"shipping_fee" default:"50" usage:"Flat shipping fee added to every order" flag:"shipping-fee"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then applies platform defaults and validates the result.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's STOREFRONT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Storage.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendLevelDB:
		if c.Storage.Path == "" {
			return errors.New("storage path is required for leveldb")
		}
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("database URL is required: set STOREFRONT_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return errors.New("storage key is required")
	}
	if _, err := order.ParseIDPolicy(c.Orders.IDPolicy); err != nil {
		return err
	}
	if c.Orders.ShippingFee < 0 {
		return errors.Errorf("negative shipping fee %d", c.Orders.ShippingFee)
	}
	return nil
}
