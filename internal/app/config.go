package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/order"
)

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string   `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string   `usage:"PostgreSQL connection URL (SHOP_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Holidays    []string `usage:"Closed dates in YYYY-MM-DD form, besides Sundays"`
	Token       TokenConfig
	Order       OrderConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// TokenConfig controls JWT issuing.
type TokenConfig struct {
	Secret string        `usage:"HMAC signing secret for access tokens (SHOP_TOKEN_SECRET)" flag:"token-secret"`
	TTL    time.Duration `default:"30m" usage:"Access token lifetime" flag:"token-ttl"`
}

// OrderConfig bounds the final amount of every order.
type OrderConfig struct {
	MinAmount string `default:"99" usage:"Minimum final order amount" flag:"order-min-amount"`
	MaxAmount string `default:"4999" usage:"Maximum final order amount" flag:"order-max-amount"`
}

// AmountRange parses the configured bounds.
func (c OrderConfig) AmountRange() (order.AmountRange, error) {
	min, err := decimal.NewFromString(c.MinAmount)
	if err != nil {
		return order.AmountRange{}, errors.Wrap(err, "parse min amount")
	}
	max, err := decimal.NewFromString(c.MaxAmount)
	if err != nil {
		return order.AmountRange{}, errors.Wrap(err, "parse max amount")
	}
	if max.LessThan(min) {
		return order.AmountRange{}, errors.Errorf("max amount %s below min %s", max, min)
	}
	return order.AmountRange{Min: min, Max: max}, nil
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

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set SHOP_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Token.Secret == "" {
		return nil, errors.New("token secret is required: set SHOP_TOKEN_SECRET")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's SHOP_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
