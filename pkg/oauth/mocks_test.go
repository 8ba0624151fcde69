package oauth_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/idkit/pkg/oauth"
)

// memClientStore is an in-memory ClientStore fixture.
type memClientStore struct {
	clients map[string]oauth.Client
}

func newMemClientStore(clients ...oauth.Client) *memClientStore {
	s := &memClientStore{clients: make(map[string]oauth.Client)}
	for _, c := range clients {
		s.clients[c.ID] = c
	}
	return s
}

func (s *memClientStore) FindClient(ctx context.Context, clientID string) (*oauth.Client, error) {
	c, ok := s.clients[clientID]
	if !ok {
		return nil, oauth.ErrClientNotFound
	}
	return &c, nil
}

// memGrantStore mirrors the store contract: upsert on create, atomic
// remove-and-return on consume, expired grants still returned.
type memGrantStore struct {
	mu     sync.Mutex
	grants map[[2]string]oauth.Grant
}

func newMemGrantStore() *memGrantStore {
	return &memGrantStore{grants: make(map[[2]string]oauth.Grant)}
}

func (s *memGrantStore) CreateGrant(ctx context.Context, grant oauth.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[[2]string{grant.ClientID, grant.Code}] = grant
	return nil
}

func (s *memGrantStore) ConsumeGrant(ctx context.Context, clientID, code string) (*oauth.Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{clientID, code}
	grant, ok := s.grants[key]
	if !ok {
		return nil, oauth.ErrGrantNotFound
	}
	delete(s.grants, key)
	return &grant, nil
}

func (s *memGrantStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.grants)
}

// memTokenStore mirrors the revoke-and-replace contract: issuing removes
// every pair for the same (client, user) before inserting.
type memTokenStore struct {
	mu     sync.Mutex
	tokens []oauth.Token
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{}
}

func (s *memTokenStore) IssueTokens(ctx context.Context, token oauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tokens[:0]
	for _, t := range s.tokens {
		if t.ClientID != token.ClientID || t.UserID != token.UserID {
			kept = append(kept, t)
		}
	}
	s.tokens = append(kept, token)
	return nil
}

func (s *memTokenStore) FindByAccess(ctx context.Context, accessToken string) (*oauth.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.AccessToken == accessToken {
			token := t
			return &token, nil
		}
	}
	return nil, oauth.ErrTokenNotFound
}

func (s *memTokenStore) FindByRefresh(ctx context.Context, refreshToken string) (*oauth.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.RefreshToken == refreshToken {
			token := t
			return &token, nil
		}
	}
	return nil, oauth.ErrTokenNotFound
}

func (s *memTokenStore) RevokeToken(ctx context.Context, tokenString string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tokens {
		if t.AccessToken == tokenString || t.RefreshToken == tokenString {
			s.tokens = append(s.tokens[:i], s.tokens[i+1:]...)
			return nil
		}
	}
	return oauth.ErrTokenNotFound
}

func (s *memTokenStore) liveFor(clientID string, userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tokens {
		if t.ClientID == clientID && t.UserID == userID {
			n++
		}
	}
	return n
}
