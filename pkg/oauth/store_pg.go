package oauth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/idkit/pkg/pg"
)

// PGStore implements ClientStore, GrantStore and TokenStore on PostgreSQL.
// Schema lives in pkg/oauth/migrations and is applied with pg.Migrate.
type PGStore struct {
	pool *pgxpool.Pool
}

var (
	_ ClientStore = (*PGStore)(nil)
	_ GrantStore  = (*PGStore)(nil)
	_ TokenStore  = (*PGStore)(nil)
)

// NewPGStore creates a Postgres-backed store over an existing pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// FindClient returns the client registration or ErrClientNotFound.
func (s *PGStore) FindClient(ctx context.Context, clientID string) (*Client, error) {
	var client Client
	err := s.pool.QueryRow(ctx,
		`SELECT client_id, client_secret, redirect_uris, scopes, is_confidential, owner_id
		 FROM oauth_clients WHERE client_id = $1`, clientID).
		Scan(&client.ID, &client.Secret, &client.RedirectURIs, &client.Scopes, &client.Confidential, &client.OwnerID)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrClientNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return &client, nil
}

// CreateGrant stores the grant, replacing any row with the same
// (client_id, code).
func (s *PGStore) CreateGrant(ctx context.Context, grant Grant) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO oauth_grants (client_id, code, redirect_uri, scopes, user_id, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (client_id, code) DO UPDATE
		 SET redirect_uri = EXCLUDED.redirect_uri,
		     scopes       = EXCLUDED.scopes,
		     user_id      = EXCLUDED.user_id,
		     expires_at   = EXCLUDED.expires_at`,
		grant.ClientID, grant.Code, grant.RedirectURI, grant.Scopes, grant.UserID, grant.ExpiresAt)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// ConsumeGrant removes and returns the grant in one statement. The
// DELETE ... RETURNING is the serialization point: of two concurrent
// exchanges for the same code, exactly one sees the row. Expired grants
// are returned like any other; the exchange step judges expiry.
func (s *PGStore) ConsumeGrant(ctx context.Context, clientID, code string) (*Grant, error) {
	var grant Grant
	err := s.pool.QueryRow(ctx,
		`DELETE FROM oauth_grants WHERE client_id = $1 AND code = $2
		 RETURNING client_id, code, redirect_uri, scopes, user_id, expires_at`,
		clientID, code).
		Scan(&grant.ClientID, &grant.Code, &grant.RedirectURI, &grant.Scopes, &grant.UserID, &grant.ExpiresAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrGrantNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return &grant, nil
}

// IssueTokens deletes every pair for (client_id, user_id) and inserts the
// new one inside a single transaction.
func (s *PGStore) IssueTokens(ctx context.Context, token Token) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM oauth_tokens WHERE client_id = $1 AND user_id = $2`,
			token.ClientID, token.UserID); err != nil {
			return err
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO oauth_tokens
			  (access_token, refresh_token, token_type, scopes, expires_at, client_id, user_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			token.AccessToken, token.RefreshToken, token.TokenType,
			token.Scopes, token.ExpiresAt, token.ClientID, token.UserID)
		return err
	})
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// FindByAccess returns the pair holding the access token string.
func (s *PGStore) FindByAccess(ctx context.Context, accessToken string) (*Token, error) {
	return s.findToken(ctx, "access_token", accessToken)
}

// FindByRefresh returns the pair holding the refresh token string.
func (s *PGStore) FindByRefresh(ctx context.Context, refreshToken string) (*Token, error) {
	return s.findToken(ctx, "refresh_token", refreshToken)
}

func (s *PGStore) findToken(ctx context.Context, column, value string) (*Token, error) {
	var token Token
	err := s.pool.QueryRow(ctx,
		`SELECT access_token, refresh_token, token_type, scopes, expires_at, client_id, user_id
		 FROM oauth_tokens WHERE `+column+` = $1`, value).
		Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType,
			&token.Scopes, &token.ExpiresAt, &token.ClientID, &token.UserID)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrTokenNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return &token, nil
}

// RevokeToken removes the pair holding the given access or refresh token
// string.
func (s *PGStore) RevokeToken(ctx context.Context, tokenString string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM oauth_tokens WHERE access_token = $1 OR refresh_token = $1`, tokenString)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}
