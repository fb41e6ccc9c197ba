package shopee

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"sjsage522/divulgador/internal/product"
	apperrors "sjsage522/divulgador/pkg/errors"
)

// FetchItem returns the product identified by ref. Errors are NotFound or
// upstream errors; a product is never returned partially filled.
func (c *Client) FetchItem(ctx context.Context, ref product.Ref) (*product.Product, error) {
	query := url.Values{}
	query.Set("shop_id", strconv.FormatInt(ref.MarketplaceID, 10))
	query.Set("item_id", strconv.FormatInt(ref.ItemID, 10))

	var resp itemDetailResponse
	if err := c.do(ctx, http.MethodGet, itemDetailPath, query, nil, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	if resp.Response == nil || resp.Response.Item == nil {
		return nil, apperrors.NewNotFound(source, "item "+ref.String()+" not found")
	}

	p := c.toProduct(resp.Response.Item, ref)

	if c.affiliate {
		link, err := c.AffiliateLink(ctx, p.Link)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Str("ref", ref.String()).
				Msg("Affiliate link generation failed, keeping canonical link")
		} else {
			p.Link = link
		}
	}

	c.logger.Debug().
		Str("ref", ref.String()).
		Str("name", p.Name).
		Msg("Item fetched")

	return p, nil
}
