package shopee

import (
	"context"
	"net/http"
	"strings"

	apperrors "sjsage522/divulgador/pkg/errors"
)

// affiliateSubID tags links generated by this bot in affiliate reports
const affiliateSubID = "divulgador"

// AffiliateLink converts originURL into a tracked short link.
func (c *Client) AffiliateLink(ctx context.Context, originURL string) (string, error) {
	body := affiliateRequest{
		OriginURL: originURL,
		SubIDs:    []string{affiliateSubID},
	}

	var resp affiliateResponse
	if err := c.do(ctx, http.MethodPost, affiliatePath, nil, body, &resp); err != nil {
		return "", err
	}
	if err := resp.err(); err != nil {
		return "", err
	}
	if resp.Response == nil || strings.TrimSpace(resp.Response.ShortLink) == "" {
		return "", apperrors.NewUpstream(source, "affiliate response without short link", nil)
	}
	return strings.TrimSpace(resp.Response.ShortLink), nil
}
