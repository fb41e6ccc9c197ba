// Package shopee is the partner REST client for item detail, search and
// affiliate links.
package shopee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"sjsage522/divulgador/config"
	"sjsage522/divulgador/helpers"
	"sjsage522/divulgador/internal/auth"
	"sjsage522/divulgador/logger"
	"sjsage522/divulgador/metrics"
	apperrors "sjsage522/divulgador/pkg/errors"
	"sjsage522/divulgador/services/cache"
)

const (
	source = "shopee"

	itemDetailPath = "/api/v2/item/get_item_detail"
	searchPath     = "/api/v2/item/search"
	affiliatePath  = "/api/v2/affiliate/generate_short_link"

	// blockKey is the cache key of the rate-limit block marker
	blockKey = "shopee_rate_limited"

	maxResponseSize = 4 << 20
)

// Client talks to the partner REST API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	signer     *auth.Signer
	limiter    *rate.Limiter
	cacheSvc   cache.CacheService
	logger     *logger.Logger

	baseURL   string
	siteURL   string
	imageURL  string
	affiliate bool
	blockTime time.Duration
}

// Option is custom configuration of Client.
type Option func(c *Client)

// WithHTTPClient overrides the HTTP client built from the timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCache stores the rate-limit block marker in cacheSvc.
func WithCache(cacheSvc cache.CacheService) Option {
	return func(c *Client) {
		c.cacheSvc = cacheSvc
	}
}

// WithLimiter overrides the outbound limiter built from the config.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client from the validated configuration.
func NewClient(cfg *config.Config, signer *auth.Signer, opts ...Option) *Client {
	c := &Client{
		signer:    signer,
		baseURL:   strings.TrimRight(cfg.APIBaseURL, "/"),
		siteURL:   strings.TrimRight(cfg.SiteBaseURL, "/"),
		imageURL:  cfg.ImageBaseURL,
		affiliate: cfg.AffiliateEnabled,
		blockTime: cfg.BlockTime,
	}
	if cfg.RateLimitRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = helpers.NewHTTPClient(cfg.HTTPTimeout)
	}
	if c.logger == nil {
		c.logger = logger.ForMarketplace()
	}
	return c
}

// apiError is the error part shared by every response envelope
type apiError struct {
	Code      string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// notFoundCodes are error codes that mean the item does not exist
var notFoundCodes = map[string]bool{
	"error_item_not_found": true,
	"item_not_found":       true,
}

func (e apiError) err() error {
	if e.Code == "" {
		return nil
	}
	msg := e.Code
	if e.Message != "" {
		msg = e.Code + ": " + e.Message
	}
	if notFoundCodes[e.Code] {
		return apperrors.NewNotFound(source, msg)
	}
	return apperrors.NewUpstream(source, msg, nil)
}

// isBlocked reports whether a previous 429 set the block marker
func (c *Client) isBlocked() bool {
	if c.cacheSvc == nil {
		return false
	}
	_, err := c.cacheSvc.Get(blockKey)
	if err != nil && !cache.IsMiss(err) {
		c.logger.Debug().Err(err).Msg("Failed to read rate-limit block marker")
	}
	return err == nil
}

func (c *Client) block() {
	if c.cacheSvc == nil || c.blockTime <= 0 {
		return
	}
	value := []byte(strconv.FormatInt(int64(c.blockTime/time.Second), 10))
	if err := c.cacheSvc.Set(blockKey, value, c.blockTime); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to store rate-limit block marker")
	}
}

// do sends one signed request and decodes the JSON body into out. A nil
// body sends no payload.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	if c.isBlocked() {
		return apperrors.NewRateLimit(source, c.blockTime)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperrors.NewUpstream(source, "rate limiter wait aborted", err)
		}
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewUpstream(source, "failed to encode request", err)
		}
		payload = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return apperrors.NewUpstream(source, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.signer.Apply(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordRequest(method, path, 0, time.Since(start))
		return apperrors.NewUpstream(source, "request failed", err)
	}
	defer resp.Body.Close()
	metrics.RecordRequest(method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == 430 {
		c.block()
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Dur("block_time", c.blockTime).
			Msg("Rate limited by marketplace API")
		return apperrors.NewRateLimit(source, c.blockTime)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewUpstreamStatus(source, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		appErr := apperrors.NewUpstream(source, fmt.Sprintf("malformed response from %s", path), err)
		appErr.StatusCode = resp.StatusCode
		return appErr
	}
	return nil
}

// canonicalLink is the product page on the storefront
func (c *Client) canonicalLink(shopID, itemID int64) string {
	return fmt.Sprintf("%s/product/%d/%d", c.siteURL, shopID, itemID)
}
