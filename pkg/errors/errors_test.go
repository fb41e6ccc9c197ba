package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesSentinelByType(t *testing.T) {
	err := fmt.Errorf("fetch failed: %w", NewNotFound("shopee", "item missing"))

	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.False(t, stderrors.Is(err, ErrUpstream))
	assert.Equal(t, ErrorTypeNotFound, TypeOf(err))
}

func TestErrorMessage(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewUpstream("shopee", "request failed", cause)

	assert.Equal(t, "[upstream] shopee: request failed - connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	status := NewUpstreamStatus("shopee", http.StatusBadGateway)
	assert.Contains(t, status.Error(), "status 502")
}

func TestIsRetryable(t *testing.T) {
	tests := map[string]struct {
		err  *Error
		want bool
	}{
		"network failure": {err: NewUpstream("x", "dial", stderrors.New("timeout")), want: true},
		"server error":    {err: NewUpstreamStatus("x", http.StatusInternalServerError), want: true},
		"client error":    {err: NewUpstreamStatus("x", http.StatusForbidden), want: false},
		"rate limited":    {err: NewRateLimit("x", time.Minute), want: false},
		"not found":       {err: NewNotFound("x", "gone"), want: false},
		"normalization":   {err: NewNormalization("x", "bad link", nil), want: false},
		"configuration":   {err: NewConfiguration("missing key", nil), want: false},
		"api error":       {err: NewUpstream("x", "error_param", nil), want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.IsRetryable())
		})
	}
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(fmt.Errorf("wrapped: %w", NewRateLimit("shopee", time.Second))))
	assert.False(t, IsRateLimited(NewUpstreamStatus("shopee", http.StatusInternalServerError)))
	assert.False(t, IsRateLimited(stderrors.New("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(stderrors.New("plain")))
}
