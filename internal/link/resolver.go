package link

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/divulgador/helpers"
	"sjsage522/divulgador/metrics"
	apperrors "sjsage522/divulgador/pkg/errors"
)

// maxBodySize bounds how much of an HTML landing page is parsed
const maxBodySize = 2 << 20

// Resolution is the outcome of following a short link.
type Resolution struct {
	// FinalURL is the URL of the last response in the redirect chain
	FinalURL string
	// Canonical is the canonical or og:url target of an HTML landing page
	Canonical string
	// StatusCode is the status of the last response
	StatusCode int
}

// HTTPResolver resolves short links with a plain GET.
type HTTPResolver struct {
	client *http.Client
}

// NewHTTPResolver creates a resolver on client. The client must follow
// redirects.
func NewHTTPResolver(client *http.Client) *HTTPResolver {
	return &HTTPResolver{client: client}
}

// Resolve follows the redirect chain of rawURL. Transport failures are
// normalization errors; an error status on the final page is not.
func (r *HTTPResolver) Resolve(ctx context.Context, rawURL string) (*Resolution, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.NewNormalization(source, "invalid short link", err)
	}
	helpers.SetBrowserHeaders(req)

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		metrics.RecordRequest(http.MethodGet, "short_link", 0, time.Since(start))
		return nil, apperrors.NewNormalization(source, "short link request failed", err)
	}
	defer resp.Body.Close()
	metrics.RecordRequest(http.MethodGet, "short_link", resp.StatusCode, time.Since(start))

	// a non-2xx page still reports its final URL; only the canonical lookup
	// needs the body
	final := resp.Request.URL
	res := &Resolution{FinalURL: final.String(), StatusCode: resp.StatusCode}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return res, nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !helpers.IsHTML(contentType) {
		return res, nil
	}

	body, err := helpers.ReadUTF8(resp.Body, contentType, maxBodySize)
	if err != nil {
		return res, nil
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return res, nil
	}
	res.Canonical = canonicalURL(doc, final)

	return res, nil
}

// canonicalURL returns the absolute canonical link of the page, falling back
// to og:url.
func canonicalURL(doc *goquery.Document, base *url.URL) string {
	href := strings.TrimSpace(doc.Find(`link[rel="canonical"]`).First().AttrOr("href", ""))
	if href == "" {
		href = strings.TrimSpace(doc.Find(`meta[property="og:url"]`).First().AttrOr("content", ""))
	}
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
