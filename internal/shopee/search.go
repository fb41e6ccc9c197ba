package shopee

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"sjsage522/divulgador/internal/product"
	apperrors "sjsage522/divulgador/pkg/errors"
)

const (
	// DefaultSearchLimit is used when a query sets no limit
	DefaultSearchLimit = 5
	// MaxSearchLimit caps the number of results of one query
	MaxSearchLimit = 50
)

// SearchQuery is a keyword search, optionally narrowed to a category.
type SearchQuery struct {
	Term       string
	Limit      int
	CategoryID int64
}

func (q SearchQuery) limit() int {
	switch {
	case q.Limit <= 0:
		return DefaultSearchLimit
	case q.Limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return q.Limit
	}
}

// Search returns up to q.Limit summaries. No results is an empty slice, not
// an error.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]product.Summary, error) {
	term := strings.TrimSpace(q.Term)
	if term == "" {
		return nil, apperrors.NewValidation(source, "search term is empty")
	}
	limit := q.limit()

	query := url.Values{}
	query.Set("keyword", term)
	query.Set("limit", strconv.Itoa(limit))
	if q.CategoryID > 0 {
		query.Set("category_id", strconv.FormatInt(q.CategoryID, 10))
	}

	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, searchPath, query, nil, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []product.Summary{}, nil
		}
		return nil, err
	}
	if resp.Response == nil || len(resp.Response.Items) == 0 {
		return []product.Summary{}, nil
	}

	items := resp.Response.Items
	if len(items) > limit {
		items = items[:limit]
	}

	summaries := lo.Map(items, func(hit searchItem, _ int) product.Summary {
		return c.toSummary(hit.item())
	})

	c.logger.Debug().
		Str("term", term).
		Int("results", len(summaries)).
		Msg("Search completed")

	return summaries, nil
}
