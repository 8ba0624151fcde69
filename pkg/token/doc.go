// Package token provides compact, expiring signed tokens for embedding JSON payloads.
//
// Tokens use HMAC-SHA256 with truncated 8-byte signatures for balance between
// security and compactness. Suitable for email confirmations, password resets,
// and email change links. Not recommended for high-value or long-lived tokens.
//
// Token format: base64url(envelope).base64url(signature)
//
// The envelope carries the caller's payload together with an absolute expiry
// timestamp, so any mutation of either invalidates the signature. The 8-byte
// signature provides ~2^32 collision resistance, sufficient for typical
// short-lived application tokens.
//
// # Usage
//
//	import "github.com/dmitrymomot/idkit/pkg/token"
//
//	codec := token.New("my-very-strong-secret")
//
//	tok, err := codec.Encode(map[string]any{"confirm": userID}, time.Hour)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	payload, err := codec.Decode(tok, "confirm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Decode verifies the signature before anything else, then the expiry, then
// the payload shape. The ordering keeps failure modes from acting as an
// oracle: an expired-but-tampered token reports ErrSignatureInvalid, never
// ErrTokenExpired.
package token
