package config

import (
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"

	apperrors "sjsage522/divulgador/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Partner API credentials
	PartnerID  int64  `env:"SHOPEE_PARTNER_ID"`
	PartnerKey string `env:"SHOPEE_PARTNER_KEY"`

	// Marketplace endpoints
	APIBaseURL       string   `env:"SHOPEE_API_URL" envDefault:"https://partner.shopeemobile.com"`
	SiteBaseURL      string   `env:"SHOPEE_SITE_URL" envDefault:"https://shopee.com.br"`
	ImageBaseURL     string   `env:"SHOPEE_IMAGE_URL" envDefault:"https://down-br.img.susercontent.com/file/"`
	ShortLinkDomains []string `env:"SHORT_LINK_DOMAINS" envSeparator:"," envDefault:"shope.ee,shp.ee,s.shopee.com.br"`
	AffiliateEnabled bool     `env:"AFFILIATE_ENABLED" envDefault:"false"`

	// Outbound request limits
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT" envDefault:"30s"`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"1"`
	BlockTime      time.Duration `env:"BLOCK_TIME" envDefault:"60s"`
	SearchLimit    int           `env:"SEARCH_LIMIT" envDefault:"5"`

	// Telegram
	TelegramToken string `env:"TELEGRAM_TOKEN"`

	// Memcache configuration
	MemcacheAddr string `env:"MEMCACHE_ADDR"`

	// Redis configuration
	RedisAddr            string `env:"REDIS_ADDR"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0"`
	RedisStream          string `env:"REDIS_STREAM" envDefault:"divulgador:lookups"`
	RedisStreamMaxLength int64  `env:"REDIS_STREAM_MAX_LENGTH" envDefault:"1000"`

	// Prometheus listener, empty disables it
	MetricsAddr string `env:"METRICS_ADDR"`

	// Environment
	Environment string `env:"DIVULGADOR_ENVIRONMENT" envDefault:"development"`
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.NewConfiguration("can't parse env variables", err)
	}
	return cfg, nil
}

// Validate checks that the credentials are present and values are usable.
// It runs once at startup so a missing secret stops the process before the
// bot accepts any message.
func (c *Config) Validate() error {
	if c.PartnerID <= 0 {
		return apperrors.NewConfiguration("SHOPEE_PARTNER_ID is required", nil)
	}
	if c.PartnerKey == "" {
		return apperrors.NewConfiguration("SHOPEE_PARTNER_KEY is required", nil)
	}
	for name, raw := range map[string]string{
		"SHOPEE_API_URL":  c.APIBaseURL,
		"SHOPEE_SITE_URL": c.SiteBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return apperrors.NewConfiguration(name+" must be an absolute URL", err)
		}
	}
	if c.HTTPTimeout <= 0 {
		return apperrors.NewConfiguration("HTTP_TIMEOUT must be positive", nil)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 1 {
		return apperrors.NewConfiguration("RATE_LIMIT_RPS must be >= 0 and RATE_LIMIT_BURST >= 1", nil)
	}
	if c.SearchLimit < 1 {
		return apperrors.NewConfiguration("SEARCH_LIMIT must be positive", nil)
	}
	return nil
}

// ValidateBot additionally requires the Telegram token.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.TelegramToken == "" {
		return apperrors.NewConfiguration("TELEGRAM_TOKEN is required", nil)
	}
	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
