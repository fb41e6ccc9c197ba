// Package auth signs outbound partner API requests.
//
// The signature is hex(HMAC-SHA256(key, partner_id + path + timestamp)).
// Sign and Verify share baseString so the field order cannot drift between
// the two.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	apperrors "sjsage522/divulgador/pkg/errors"
)

// Query parameter names attached to every signed request.
const (
	ParamPartnerID = "partner_id"
	ParamTimestamp = "timestamp"
	ParamSign      = "sign"
)

// Clock returns the current time.
type Clock func() time.Time

// Context is the per-request authentication material.
type Context struct {
	PartnerID int64
	Path      string
	Timestamp int64
	Signature string
}

// Signer holds the partner credentials loaded at startup.
type Signer struct {
	partnerID int64
	key       []byte
	clock     Clock
}

// Option is custom configuration of Signer.
type Option func(s *Signer)

// WithClock overrides the wall clock.
func WithClock(clock Clock) Option {
	return func(s *Signer) {
		s.clock = clock
	}
}

// NewSigner returns a Signer or a configuration error when a credential is
// unset.
func NewSigner(partnerID int64, key string, opts ...Option) (*Signer, error) {
	if partnerID <= 0 {
		return nil, apperrors.NewConfiguration("partner id is not set", nil)
	}
	if key == "" {
		return nil, apperrors.NewConfiguration("partner signing key is not set", nil)
	}

	s := &Signer{
		partnerID: partnerID,
		key:       []byte(key),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// PartnerID returns the configured partner id.
func (s *Signer) PartnerID() int64 {
	return s.partnerID
}

// Context computes fresh authentication material for path.
func (s *Signer) Context(path string) Context {
	ts := s.clock().Unix()
	return Context{
		PartnerID: s.partnerID,
		Path:      path,
		Timestamp: ts,
		Signature: sign(s.key, s.partnerID, ts, path),
	}
}

// Apply computes a fresh Context for the request path and attaches it as
// query parameters.
func (s *Signer) Apply(req *http.Request) Context {
	ctx := s.Context(req.URL.Path)

	q := req.URL.Query()
	q.Set(ParamPartnerID, strconv.FormatInt(ctx.PartnerID, 10))
	q.Set(ParamTimestamp, strconv.FormatInt(ctx.Timestamp, 10))
	q.Set(ParamSign, ctx.Signature)
	req.URL.RawQuery = q.Encode()

	return ctx
}

// Sign returns the hex signature for the given fields.
func Sign(secret string, partnerID int64, timestamp int64, path string) string {
	return sign([]byte(secret), partnerID, timestamp, path)
}

// Verify reports whether signature matches the given fields.
func Verify(secret string, partnerID int64, timestamp int64, path, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(baseString(partnerID, path, timestamp)))
	return hmac.Equal(mac.Sum(nil), expected)
}

// VerifyRequest checks the auth query parameters of an incoming request.
func VerifyRequest(secret string, req *http.Request) bool {
	q := req.URL.Query()
	partnerID, err := strconv.ParseInt(q.Get(ParamPartnerID), 10, 64)
	if err != nil {
		return false
	}
	ts, err := strconv.ParseInt(q.Get(ParamTimestamp), 10, 64)
	if err != nil {
		return false
	}
	return Verify(secret, partnerID, ts, req.URL.Path, q.Get(ParamSign))
}

func sign(key []byte, partnerID int64, timestamp int64, path string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(baseString(partnerID, path, timestamp)))
	return hex.EncodeToString(mac.Sum(nil))
}

func baseString(partnerID int64, path string, timestamp int64) string {
	return strconv.FormatInt(partnerID, 10) + path + strconv.FormatInt(timestamp, 10)
}
