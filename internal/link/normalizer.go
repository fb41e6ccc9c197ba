package link

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"sjsage522/divulgador/internal/product"
	"sjsage522/divulgador/logger"
	apperrors "sjsage522/divulgador/pkg/errors"
)

// Resolver follows a short link to the page it points at.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (*Resolution, error)
}

// Normalizer maps message text to a product reference, resolving short
// links on the way.
type Normalizer struct {
	resolver     Resolver
	shortDomains []string
	logger       *logger.Logger
}

// Option is custom configuration of Normalizer.
type Option func(n *Normalizer)

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(n *Normalizer) {
		n.logger = l
	}
}

// NewNormalizer creates a Normalizer. A nil resolver disables short link
// resolution.
func NewNormalizer(resolver Resolver, shortDomains []string, opts ...Option) *Normalizer {
	domains := make([]string, 0, len(shortDomains))
	for _, d := range shortDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}

	n := &Normalizer{
		resolver:     resolver,
		shortDomains: domains,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = logger.ForNormalizer()
	}
	return n
}

// Normalize extracts the product reference from text. Short links are
// resolved once; a resolved URL that is itself a short link is not followed
// again.
func (n *Normalizer) Normalize(ctx context.Context, text string) (product.Ref, error) {
	candidate := Candidate(text, n.shortDomains)
	if candidate == "" {
		return product.Ref{}, apperrors.NewNormalization(source, "no link found in message", nil)
	}

	if !n.IsShortLink(candidate) {
		return Parse(candidate)
	}

	if n.resolver == nil {
		return product.Ref{}, apperrors.NewNormalization(source, "short link resolution is disabled", nil)
	}

	res, err := n.resolver.Resolve(ctx, candidate)
	if err != nil {
		n.logger.Warn().Err(err).Str("url", candidate).Msg("Short link resolution failed")
		return product.Ref{}, err
	}

	n.logger.Debug().
		Str("url", candidate).
		Str("final_url", res.FinalURL).
		Int("status", res.StatusCode).
		Msg("Short link resolved")

	if ref, err := Parse(res.FinalURL); err == nil {
		return ref, nil
	}
	if res.Canonical != "" {
		if ref, err := Parse(res.Canonical); err == nil {
			return ref, nil
		}
	}

	if res.StatusCode != 0 && (res.StatusCode < 200 || res.StatusCode >= 300) {
		return product.Ref{}, apperrors.NewNormalization(source,
			fmt.Sprintf("short link %s answered with status %d", candidate, res.StatusCode), nil)
	}
	return product.Ref{}, apperrors.NewNormalization(source,
		fmt.Sprintf("short link %s resolved to %s without product ids", candidate, res.FinalURL), nil)
}

// IsShortLink reports whether rawURL is hosted on a short link domain.
func (n *Normalizer) IsShortLink(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, d := range n.shortDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
