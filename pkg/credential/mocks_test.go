package credential_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/idkit/pkg/credential"
	"github.com/dmitrymomot/idkit/pkg/email"
)

// MockUserDirectory is a mock implementation of credential.UserDirectory.
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindByID(ctx context.Context, id uuid.UUID) (*credential.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.User), args.Error(1)
}

func (m *MockUserDirectory) FindByEmail(ctx context.Context, addr string) (*credential.User, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.User), args.Error(1)
}

func (m *MockUserDirectory) FindByUsername(ctx context.Context, username string) (*credential.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.User), args.Error(1)
}

func (m *MockUserDirectory) GetPasswordHash(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockUserDirectory) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockUserDirectory) SetConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) error {
	args := m.Called(ctx, id, confirmed)
	return args.Error(0)
}

func (m *MockUserDirectory) SetEmail(ctx context.Context, id uuid.UUID, addr string) error {
	args := m.Called(ctx, id, addr)
	return args.Error(0)
}

// channelMailer records sent emails for assertions without blocking the
// caller, matching the service's fire-and-forget contract.
type channelMailer struct {
	sent chan email.SendEmailParams
}

func newChannelMailer() *channelMailer {
	return &channelMailer{sent: make(chan email.SendEmailParams, 8)}
}

func (m *channelMailer) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	m.sent <- params
	return nil
}
