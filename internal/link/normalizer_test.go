package link

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/divulgador/helpers"
	"sjsage522/divulgador/internal/product"
	"sjsage522/divulgador/logger"
	apperrors "sjsage522/divulgador/pkg/errors"
)

// newShortLinkServer serves /s/* as short links redirecting to target paths
// on the same server.
func newShortLinkServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/s/product", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/produto-exemplo-i.123.456?sp_atk=xyz", http.StatusFound)
	})
	mux.HandleFunc("/s/twice", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/s/product", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/s/home", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})
	mux.HandleFunc("/s/landing", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landing", http.StatusFound)
	})
	mux.HandleFunc("/s/og", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/og", http.StatusFound)
	})
	mux.HandleFunc("/s/blocked", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/produto-i.123.456", http.StatusFound)
	})
	mux.HandleFunc("/produto-i.123.456", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `<html><head><link rel="canonical" href="/product/9/9"></head></html>`)
	})
	mux.HandleFunc("/s/gone", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/landing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><link rel="canonical" href="/product/123/456"></head><body>Promoção</body></html>`)
	})
	mux.HandleFunc("/og", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><meta property="og:url" content="https://shopee.com.br/i.123.456"></head></html>`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "ok")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestNormalizer(server *httptest.Server) *Normalizer {
	resolver := NewHTTPResolver(helpers.NewHTTPClient(2 * time.Second))
	return NewNormalizer(resolver, []string{"127.0.0.1", "shope.ee"}, WithLogger(logger.Nop()))
}

func TestNormalizeLongLink(t *testing.T) {
	n := NewNormalizer(nil, []string{"shope.ee"}, WithLogger(logger.Nop()))

	ref, err := n.Normalize(context.Background(), "Olha: https://shopee.com.br/produto-exemplo-i.123.456?foo=bar")
	require.NoError(t, err)
	assert.Equal(t, product.Ref{MarketplaceID: 123, ItemID: 456}, ref)
}

func TestNormalizeShortLink(t *testing.T) {
	server := newShortLinkServer(t)
	n := newTestNormalizer(server)
	want := product.Ref{MarketplaceID: 123, ItemID: 456}

	tests := map[string]string{
		"redirect":           "/s/product",
		"redirect chain":     "/s/twice",
		"canonical fallback": "/s/landing",
		"og:url fallback":    "/s/og",
		"forbidden target":   "/s/blocked",
	}

	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			ref, err := n.Normalize(context.Background(), "veja "+server.URL+path)
			require.NoError(t, err)
			assert.Equal(t, want, ref)
		})
	}
}

func TestNormalizeShortLinkFailures(t *testing.T) {
	server := newShortLinkServer(t)
	n := newTestNormalizer(server)

	tests := map[string]string{
		"target without ids": "/s/home",
		"not found":          "/s/gone",
	}

	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := n.Normalize(context.Background(), server.URL+path)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrNormalization)
			assert.NotErrorIs(t, err, apperrors.ErrUpstream)
		})
	}
}

func TestNormalizeShortLinkNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	n := newTestNormalizer(server)
	_, err := n.Normalize(context.Background(), url+"/s/abc")
	assert.ErrorIs(t, err, apperrors.ErrNormalization)
}

func TestNormalizeShortLinkWithoutResolver(t *testing.T) {
	n := NewNormalizer(nil, []string{"shope.ee"}, WithLogger(logger.Nop()))

	_, err := n.Normalize(context.Background(), "https://shope.ee/AbC123")
	assert.ErrorIs(t, err, apperrors.ErrNormalization)
}

func TestNormalizeNoLink(t *testing.T) {
	n := NewNormalizer(nil, nil, WithLogger(logger.Nop()))

	_, err := n.Normalize(context.Background(), "quero um fone barato")
	assert.ErrorIs(t, err, apperrors.ErrNormalization)
}

func TestIsShortLink(t *testing.T) {
	n := NewNormalizer(nil, []string{" SHOPE.EE ", "s.shopee.com.br", ""}, WithLogger(logger.Nop()))

	assert.True(t, n.IsShortLink("https://shope.ee/AbC"))
	assert.True(t, n.IsShortLink("https://www.shope.ee/AbC"))
	assert.True(t, n.IsShortLink("https://s.shopee.com.br/AbC"))
	assert.False(t, n.IsShortLink("https://shopee.com.br/produto-i.1.2"))
	assert.False(t, n.IsShortLink("i.1.2"))
}

func TestResolveKeepsFinalURLOnErrorStatus(t *testing.T) {
	server := newShortLinkServer(t)
	resolver := NewHTTPResolver(helpers.NewHTTPClient(2 * time.Second))

	res, err := resolver.Resolve(context.Background(), server.URL+"/s/blocked")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/produto-i.123.456", res.FinalURL)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Empty(t, res.Canonical)
}
