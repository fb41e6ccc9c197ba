package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sjsage522/divulgador/pkg/errors"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://partner.shopeemobile.com", cfg.APIBaseURL)
	assert.Equal(t, "https://shopee.com.br", cfg.SiteBaseURL)
	assert.Equal(t, []string{"shope.ee", "shp.ee", "s.shopee.com.br"}, cfg.ShortLinkDomains)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 60*time.Second, cfg.BlockTime)
	assert.Equal(t, 5, cfg.SearchLimit)
	assert.Equal(t, "divulgador:lookups", cfg.RedisStream)
	assert.False(t, cfg.IsProduction())

	// Test with environment variables
	t.Setenv("SHOPEE_PARTNER_ID", "2001234")
	t.Setenv("SHOPEE_PARTNER_KEY", "secret")
	t.Setenv("SHORT_LINK_DOMAINS", "shope.ee,example.link")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("DIVULGADOR_ENVIRONMENT", "production")

	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(2001234), cfg.PartnerID)
	assert.Equal(t, "secret", cfg.PartnerKey)
	assert.Equal(t, []string{"shope.ee", "example.link"}, cfg.ShortLinkDomains)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.True(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigInvalidValue(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestValidate(t *testing.T) {
	t.Setenv("SHOPEE_PARTNER_ID", "1")
	t.Setenv("SHOPEE_PARTNER_KEY", "key")
	base, err := LoadConfig()
	require.NoError(t, err)

	tests := map[string]struct {
		mutate  func(c *Config)
		wantErr bool
	}{
		"valid":               {mutate: func(c *Config) {}},
		"missing partner id":  {mutate: func(c *Config) { c.PartnerID = 0 }, wantErr: true},
		"missing partner key": {mutate: func(c *Config) { c.PartnerKey = "" }, wantErr: true},
		"relative api url":    {mutate: func(c *Config) { c.APIBaseURL = "/api" }, wantErr: true},
		"zero timeout":        {mutate: func(c *Config) { c.HTTPTimeout = 0 }, wantErr: true},
		"negative rate":       {mutate: func(c *Config) { c.RateLimitRPS = -1 }, wantErr: true},
		"zero search limit":   {mutate: func(c *Config) { c.SearchLimit = 0 }, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateBotRequiresToken(t *testing.T) {
	t.Setenv("SHOPEE_PARTNER_ID", "1")
	t.Setenv("SHOPEE_PARTNER_KEY", "key")
	t.Setenv("TELEGRAM_TOKEN", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.ErrorIs(t, cfg.ValidateBot(), apperrors.ErrConfiguration)

	cfg.TelegramToken = "123:abc"
	assert.NoError(t, cfg.ValidateBot())
}
