package oauth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/idkit/pkg/logger"
	"github.com/dmitrymomot/idkit/pkg/scopes"
)

// tokenEntropy is the number of random bytes behind every generated code
// and token string (encoded to 43 base64url characters).
const tokenEntropy = 32

// Service drives the authorization-code grant flow over pluggable stores.
type Service struct {
	clients ClientStore
	grants  GrantStore
	tokens  TokenStore
	logger  *slog.Logger

	accessTTL time.Duration
	now       func() time.Time
}

// ServiceOption configures a Service during construction.
type ServiceOption func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = log
	}
}

// WithAccessTTL sets the access token validity window.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.accessTTL = ttl
	}
}

// WithClock overrides the wall clock used for expiry stamping and checks.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an OAuth2 service over the given stores.
func NewService(clients ClientStore, grants GrantStore, tokens TokenStore, opts ...ServiceOption) *Service {
	s := &Service{
		clients:   clients,
		grants:    grants,
		tokens:    tokens,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		accessTTL: time.Hour,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AuthorizeRequest carries an approved consent into grant creation. UserID
// is the authenticated resource owner, threaded explicitly by the caller.
type AuthorizeRequest struct {
	ClientID    string
	UserID      uuid.UUID
	RedirectURI string   // empty selects the client's first registered URI
	Scopes      []string // empty selects the client's default scopes
}

// Authorize records user consent as a fresh single-use grant, valid for
// GrantTTL from now.
func (s *Service) Authorize(ctx context.Context, req AuthorizeRequest) (*Grant, error) {
	client, err := s.clients.FindClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	redirectURI := req.RedirectURI
	if redirectURI == "" {
		redirectURI = client.DefaultRedirect()
	} else if !client.AllowsRedirect(redirectURI) {
		return nil, ErrInvalidRedirectURI
	}

	scope := scopes.NormalizeScopes(req.Scopes)
	if len(scope) == 0 {
		scope = client.Scopes
	} else if !client.AllowsScopes(scope) {
		return nil, ErrInvalidScope
	}

	grant := Grant{
		ClientID:    client.ID,
		Code:        randomToken(),
		RedirectURI: redirectURI,
		Scopes:      scope,
		UserID:      req.UserID,
		ExpiresAt:   s.now().Add(GrantTTL),
	}

	if err := s.grants.CreateGrant(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to store grant: %w", err)
	}

	s.logger.InfoContext(ctx, "authorization grant created",
		logger.ClientID(client.ID),
		logger.UserID(req.UserID.String()),
		logger.Component("oauth"),
	)

	return &grant, nil
}

// ExchangeRequest carries the token endpoint parameters of an
// authorization_code exchange.
type ExchangeRequest struct {
	ClientID     string
	ClientSecret string
	Code         string
	RedirectURI  string
}

// Exchange swaps a grant code for a token pair. The grant is consumed
// before any further checks, so a code is burned even by a failed exchange
// and can never be replayed. Expired grants report ErrGrantExpired, unknown
// codes ErrGrantNotFound.
func (s *Service) Exchange(ctx context.Context, req ExchangeRequest) (*TokenResponse, error) {
	client, err := s.authenticateClient(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	grant, err := s.grants.ConsumeGrant(ctx, client.ID, req.Code)
	if err != nil {
		return nil, err
	}

	if grant.Expired(s.now()) {
		return nil, ErrGrantExpired
	}

	// A token request may omit redirect_uri when the authorization request
	// did too. The grant then holds the client default, so an empty value
	// matching the default is accepted rather than rejected.
	if grant.RedirectURI != req.RedirectURI {
		if req.RedirectURI != "" || grant.RedirectURI != client.DefaultRedirect() {
			return nil, ErrInvalidRedirectURI
		}
	}

	return s.issuePair(ctx, client.ID, grant.UserID, grant.Scopes)
}

// RefreshRequest carries the token endpoint parameters of a refresh_token
// exchange.
type RefreshRequest struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Refresh rotates a token pair: the presented refresh token's pair is
// revoked and a fresh pair with the same scopes is issued in its place.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	client, err := s.authenticateClient(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.FindByRefresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}

	if token.ClientID != client.ID {
		return nil, ErrTokenNotFound
	}

	// issuePair replaces every pair for (client, user), the presented one
	// included; no separate revocation step is needed.
	return s.issuePair(ctx, client.ID, token.UserID, token.Scopes)
}

// Revoke invalidates the pair holding the given access or refresh token
// string. Revoking a token the client does not own reports ErrTokenNotFound
// without touching the row.
func (s *Service) Revoke(ctx context.Context, clientID, clientSecret, tokenString string) error {
	client, err := s.authenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return err
	}

	token, err := s.tokens.FindByAccess(ctx, tokenString)
	if err != nil {
		token, err = s.tokens.FindByRefresh(ctx, tokenString)
		if err != nil {
			return err
		}
	}

	if token.ClientID != client.ID {
		return ErrTokenNotFound
	}

	if err := s.tokens.RevokeToken(ctx, tokenString); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.InfoContext(ctx, "token revoked",
		logger.ClientID(client.ID),
		logger.UserID(token.UserID.String()),
		logger.Component("oauth"),
	)

	return nil
}

// Verify resolves an access token string to its stored pair, applying the
// lazy expiry check the stores themselves skip.
func (s *Service) Verify(ctx context.Context, accessToken string) (*Token, error) {
	token, err := s.tokens.FindByAccess(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if token.Expired(s.now()) {
		return nil, ErrTokenExpired
	}

	return token, nil
}

// authenticateClient resolves the client and, for confidential clients,
// verifies the presented secret in constant time. Public clients pass with
// an empty secret.
func (s *Service) authenticateClient(ctx context.Context, clientID, clientSecret string) (*Client, error) {
	client, err := s.clients.FindClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if client.Confidential {
		if subtle.ConstantTimeCompare([]byte(client.Secret), []byte(clientSecret)) != 1 {
			return nil, ErrInvalidClient
		}
	}

	return client, nil
}

// issuePair generates a fresh access/refresh pair and stores it, revoking
// every prior pair for (clientID, userID) in the same operation.
func (s *Service) issuePair(ctx context.Context, clientID string, userID uuid.UUID, scope []string) (*TokenResponse, error) {
	token := Token{
		AccessToken:  randomToken(),
		RefreshToken: randomToken(),
		TokenType:    TokenTypeBearer,
		Scopes:       scope,
		ExpiresAt:    s.now().Add(s.accessTTL),
		ClientID:     clientID,
		UserID:       userID,
	}

	if err := s.tokens.IssueTokens(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store token pair: %w", err)
	}

	s.logger.InfoContext(ctx, "token pair issued",
		logger.ClientID(clientID),
		logger.UserID(userID.String()),
		logger.Component("oauth"),
	)

	return &TokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Scopes:       scopes.JoinScopes(token.Scopes),
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// randomToken returns a high-entropy opaque string for grant codes and
// access/refresh tokens.
func randomToken() string {
	buf := make([]byte, tokenEntropy)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the process cannot mint credentials at
		// all; there is no meaningful degraded mode.
		panic(fmt.Sprintf("oauth: crypto/rand unavailable: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
