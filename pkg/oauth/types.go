package oauth

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/idkit/pkg/scopes"
)

// GrantTTL is the fixed validity window of an authorization code, measured
// from creation. RFC 6749 recommends at most 10 minutes.
const GrantTTL = 10 * time.Minute

// TokenTypeBearer is the token_type reported in every token response.
const TokenTypeBearer = "Bearer"

// Client is the immutable registration record of an OAuth2 application.
// Managing clients is out of scope here beyond lookup by id.
type Client struct {
	ID           string
	Secret       string
	RedirectURIs []string
	Scopes       []string // scopes granted when the request names none
	Confidential bool     // confidential clients must authenticate with their secret
	OwnerID      uuid.UUID
}

// AllowsRedirect reports whether the URI is registered for this client.
func (c *Client) AllowsRedirect(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

// DefaultRedirect returns the client's first registered redirect URI, or ""
// when none are registered.
func (c *Client) DefaultRedirect() string {
	if len(c.RedirectURIs) == 0 {
		return ""
	}
	return c.RedirectURIs[0]
}

// AllowsScopes reports whether every requested scope is covered by the
// client's registered scopes.
func (c *Client) AllowsScopes(requested []string) bool {
	return scopes.HasAllScopes(c.Scopes, requested)
}

// Grant is a single-use authorization code recording user consent,
// uniquely keyed by (ClientID, Code).
type Grant struct {
	ClientID    string
	Code        string
	RedirectURI string
	Scopes      []string
	UserID      uuid.UUID
	ExpiresAt   time.Time
}

// Expired reports whether the grant's window has elapsed at the given time.
func (g *Grant) Expired(now time.Time) bool {
	return now.After(g.ExpiresAt)
}

// Token is a stored access/refresh pair. At most one live Token exists per
// (ClientID, UserID); issuing a new one removes all prior rows for the pair.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scopes       []string
	ExpiresAt    time.Time
	ClientID     string
	UserID       uuid.UUID
}

// Expired reports whether the access token's window has elapsed. The
// refresh token has no expiry of its own; it dies when the pair is
// replaced or revoked.
func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// TokenResponse is the wire shape of a successful token exchange,
// mirroring the RFC 6749 token endpoint response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Scopes       string `json:"scopes"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ClientStore looks up registered OAuth2 clients.
type ClientStore interface {
	// FindClient returns the client registration or ErrClientNotFound.
	FindClient(ctx context.Context, clientID string) (*Client, error)
}

// GrantStore persists authorization codes.
type GrantStore interface {
	// CreateGrant stores the grant, replacing any existing grant with the
	// same (ClientID, Code). Code uniqueness is the caller's concern.
	CreateGrant(ctx context.Context, grant Grant) error

	// ConsumeGrant atomically removes and returns the grant for
	// (clientID, code), or ErrGrantNotFound. At most one caller observes a
	// given grant. Expired grants ARE returned: expiry is judged by the
	// exchange step, not the store, so a late exchange reports expiry
	// rather than an unknown code.
	ConsumeGrant(ctx context.Context, clientID, code string) (*Grant, error)
}

// TokenStore persists access/refresh token pairs.
type TokenStore interface {
	// IssueTokens removes every existing pair for (token.ClientID,
	// token.UserID) and inserts the new one. Concurrent issuance for the
	// same pair is last-write-wins.
	IssueTokens(ctx context.Context, token Token) error

	// FindByAccess returns the pair holding the access token string, or
	// ErrTokenNotFound. Expiry is the caller's check.
	FindByAccess(ctx context.Context, accessToken string) (*Token, error)

	// FindByRefresh returns the pair holding the refresh token string, or
	// ErrTokenNotFound.
	FindByRefresh(ctx context.Context, refreshToken string) (*Token, error)

	// RevokeToken removes the pair holding the given access or refresh
	// token string. Revoking an unknown token returns ErrTokenNotFound.
	RevokeToken(ctx context.Context, tokenString string) error
}
