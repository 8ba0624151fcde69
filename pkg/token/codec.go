package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// signatureLen is the truncated HMAC-SHA256 length appended to every token.
const signatureLen = 8

// envelope wraps the caller's payload with an absolute expiry so both are
// covered by a single signature.
type envelope struct {
	Payload map[string]any `json:"p"`
	Exp     int64          `json:"exp"`
}

// Codec signs and verifies expiring tokens with a fixed secret key.
// The key is injected at construction; a Codec is pure given its key
// and clock, so instances are safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option configures a Codec during construction.
type Option func(*Codec)

// WithClock overrides the wall clock used for expiry stamping and checks.
// Intended for tests that exercise expiry boundaries.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// New creates a Codec signing with the given secret.
func New(secret string, opts ...Option) *Codec {
	c := &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode serializes the payload with an absolute expiry of now+ttl, signs the
// result, and returns the opaque token string. No side effects.
func (c *Codec) Encode(payload map[string]any, ttl time.Duration) (string, error) {
	data, err := json.Marshal(envelope{
		Payload: payload,
		Exp:     c.now().Add(ttl).Unix(),
	})
	if err != nil {
		return "", err
	}

	h := hmac.New(sha256.New, c.secret)
	h.Write(data)
	sig := h.Sum(nil)[:signatureLen]

	return base64.RawURLEncoding.EncodeToString(data) + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Decode verifies a token and returns its payload. Checks run in a fixed
// order: signature, then expiry, then presence of the required keys.
// Structurally unparseable input reports ErrInvalidToken; a valid structure
// with a bad signature reports ErrSignatureInvalid even if it is also
// expired or missing fields.
func (c *Codec) Decode(tok string, required ...string) (map[string]any, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return nil, ErrInvalidToken
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}

	h := hmac.New(sha256.New, c.secret)
	h.Write(data)
	expectedSig := h.Sum(nil)[:signatureLen]

	if subtle.ConstantTimeCompare(sig, expectedSig) != 1 {
		return nil, ErrSignatureInvalid
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrMalformedPayload
	}

	if c.now().Unix() > env.Exp {
		return nil, ErrTokenExpired
	}

	for _, key := range required {
		if _, ok := env.Payload[key]; !ok {
			return nil, ErrMalformedPayload
		}
	}

	return env.Payload, nil
}
