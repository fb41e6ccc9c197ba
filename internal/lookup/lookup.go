// Package lookup composes the link normalizer and the marketplace client
// into the two pipeline operations used by the bot.
package lookup

import (
	"context"

	"github.com/google/uuid"

	"sjsage522/divulgador/internal/product"
	"sjsage522/divulgador/internal/shopee"
	"sjsage522/divulgador/logger"
	"sjsage522/divulgador/metrics"
	apperrors "sjsage522/divulgador/pkg/errors"
)

// Normalizer turns message text into a product reference.
type Normalizer interface {
	Normalize(ctx context.Context, text string) (product.Ref, error)
}

// Marketplace fetches products and search results.
type Marketplace interface {
	FetchItem(ctx context.Context, ref product.Ref) (*product.Product, error)
	Search(ctx context.Context, q shopee.SearchQuery) ([]product.Summary, error)
}

// Service runs lookups. It holds no mutable state and is safe for
// concurrent use.
type Service struct {
	normalizer  Normalizer
	marketplace Marketplace
	searchLimit int
	logger      *logger.Logger
}

// Option is custom configuration of Service.
type Option func(s *Service)

// WithSearchLimit sets the number of results used when a search sets none.
func WithSearchLimit(limit int) Option {
	return func(s *Service) {
		s.searchLimit = limit
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a Service.
func NewService(normalizer Normalizer, marketplace Marketplace, opts ...Option) *Service {
	s := &Service{
		normalizer:  normalizer,
		marketplace: marketplace,
		searchLimit: shopee.DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.ForComponent("lookup")
	}
	return s
}

// Resolve normalizes the link in text and fetches the product. No retry is
// attempted; the typed error is returned as is.
func (s *Service) Resolve(ctx context.Context, text string) (*product.Product, error) {
	log := s.logger.WithFields(logger.Fields{
		"request_id": uuid.NewString(),
		"operation":  "resolve",
	})

	ref, err := s.normalizer.Normalize(ctx, text)
	if err != nil {
		s.record("resolve", err)
		log.WithError(err).Info().Msg("Link not recognized")
		return nil, err
	}

	p, err := s.marketplace.FetchItem(ctx, ref)
	s.record("resolve", err)
	if err != nil {
		log.WithError(err).Warn().Str("ref", ref.String()).Msg("Product lookup failed")
		return nil, err
	}

	log.Info().Str("ref", ref.String()).Msg("Product resolved")
	return p, nil
}

// Search runs a keyword search. A limit of 0 uses the configured default.
func (s *Service) Search(ctx context.Context, term string, limit int, categoryID int64) ([]product.Summary, error) {
	log := s.logger.WithFields(logger.Fields{
		"request_id": uuid.NewString(),
		"operation":  "search",
	})

	if limit <= 0 {
		limit = s.searchLimit
	}

	results, err := s.marketplace.Search(ctx, shopee.SearchQuery{
		Term:       term,
		Limit:      limit,
		CategoryID: categoryID,
	})
	s.record("search", err)
	if err != nil {
		log.WithError(err).Warn().Str("term", term).Msg("Search failed")
		return nil, err
	}

	log.Info().Str("term", term).Int("results", len(results)).Msg("Search completed")
	return results, nil
}

func (s *Service) record(operation string, err error) {
	metrics.RecordLookup(operation, outcome(err))
}

// outcome is the metrics label for err
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if t := apperrors.TypeOf(err); t != "" {
		return string(t)
	}
	return "unknown"
}
