package helpers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBrowserHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that headers are set
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("Accept-Language"), "pt-BR")
		assert.NotEmpty(t, r.Header.Get("Referer"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	SetBrowserHeaders(req)

	resp, err := NewHTTPClient(time.Second).Do(req)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestNewHTTPClientStopsRedirectLoops(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	_, err := NewHTTPClient(time.Second).Get(server.URL + "/")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("stopped after %d redirects", maxRedirects))
}

func TestReadUTF8(t *testing.T) {
	tests := map[string]struct {
		body        []byte
		contentType string
		want        string
	}{
		"utf-8": {
			body:        []byte("<html><body>Promoção</body></html>"),
			contentType: "text/html; charset=utf-8",
			want:        "Promoção",
		},
		"latin-1": {
			// "Promoção" in ISO-8859-1
			body:        []byte("<html><body>Promo\xe7\xe3o</body></html>"),
			contentType: "text/html; charset=iso-8859-1",
			want:        "Promoção",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			reader, err := ReadUTF8(strings.NewReader(string(tt.body)), tt.contentType, 1<<20)
			require.NoError(t, err)

			body, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.Contains(t, string(body), tt.want)
		})
	}
}

func TestReadUTF8Limit(t *testing.T) {
	reader, err := ReadUTF8(strings.NewReader("abcdefgh"), "text/plain; charset=utf-8", 4)
	require.NoError(t, err)

	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(body))
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("text/html; charset=UTF-8"))
	assert.False(t, IsHTML("application/json"))
}
