package credential_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/idkit/pkg/credential"
	"github.com/dmitrymomot/idkit/pkg/password"
	"github.com/dmitrymomot/idkit/pkg/token"
)

const testSecret = "test-secret-key"

func newService(t *testing.T, users credential.UserDirectory, opts ...credential.Option) *credential.Service {
	t.Helper()
	opts = append([]credential.Option{credential.WithBcryptCost(bcrypt.MinCost)}, opts...)
	return credential.New(users, token.New(testSecret), opts...)
}

func TestVerifyConfirmation(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("confirms unconfirmed user", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		users.On("FindByID", mock.Anything, userID).
			Return(&credential.User{ID: userID, Email: "u@example.com"}, nil)
		users.On("SetConfirmed", mock.Anything, userID, true).Return(nil)

		svc := newService(t, users)
		tok, err := svc.IssueConfirmation(context.Background(), userID)
		require.NoError(t, err)

		require.NoError(t, svc.VerifyConfirmation(context.Background(), userID, tok))
		users.AssertExpectations(t)
	})

	t.Run("already confirmed is a no-op success", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		users.On("FindByID", mock.Anything, userID).
			Return(&credential.User{ID: userID, Confirmed: true}, nil)

		svc := newService(t, users)
		tok, err := svc.IssueConfirmation(context.Background(), userID)
		require.NoError(t, err)

		// No single-use marker exists: the same token verifies repeatedly
		// until it expires.
		require.NoError(t, svc.VerifyConfirmation(context.Background(), userID, tok))
		require.NoError(t, svc.VerifyConfirmation(context.Background(), userID, tok))
		users.AssertNotCalled(t, "SetConfirmed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects token minted for another user", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		svc := newService(t, users)

		tok, err := svc.IssueConfirmation(context.Background(), uuid.New())
		require.NoError(t, err)

		err = svc.VerifyConfirmation(context.Background(), userID, tok)
		require.ErrorIs(t, err, credential.ErrUnauthorized)
		users.AssertNotCalled(t, "SetConfirmed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		t.Parallel()

		issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		clock := issuedAt
		codec := token.New(testSecret, token.WithClock(func() time.Time { return clock }))

		users := new(MockUserDirectory)
		svc := credential.New(users, codec)

		tok, err := svc.IssueConfirmation(context.Background(), userID)
		require.NoError(t, err)

		clock = issuedAt.Add(time.Hour + time.Second)
		err = svc.VerifyConfirmation(context.Background(), userID, tok)
		require.ErrorIs(t, err, token.ErrTokenExpired)
	})

	t.Run("rejects reset token used as confirmation", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		svc := newService(t, users)

		tok, err := svc.IssueReset(context.Background(), userID)
		require.NoError(t, err)

		err = svc.VerifyConfirmation(context.Background(), userID, tok)
		require.ErrorIs(t, err, token.ErrMalformedPayload)
	})
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("replaces password hash", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		users.On("FindByID", mock.Anything, userID).
			Return(&credential.User{ID: userID}, nil)
		users.On("SetPasswordHash", mock.Anything, userID, mock.MatchedBy(func(hash string) bool {
			return password.Verify("new-password-123", hash)
		})).Return(nil)

		svc := newService(t, users)
		tok, err := svc.IssueReset(context.Background(), userID)
		require.NoError(t, err)

		require.NoError(t, svc.ResetPassword(context.Background(), tok, "new-password-123"))
		users.AssertExpectations(t)
	})

	t.Run("token stays valid until expiry", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		users.On("FindByID", mock.Anything, userID).
			Return(&credential.User{ID: userID}, nil)
		users.On("SetPasswordHash", mock.Anything, userID, mock.Anything).Return(nil)

		svc := newService(t, users)
		tok, err := svc.IssueReset(context.Background(), userID)
		require.NoError(t, err)

		// Deliberate: no persisted single-use marker, so a second redemption
		// within the TTL succeeds as well.
		require.NoError(t, svc.ResetPassword(context.Background(), tok, "first-password"))
		require.NoError(t, svc.ResetPassword(context.Background(), tok, "second-password"))
	})

	t.Run("unknown user fails", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		users.On("FindByID", mock.Anything, userID).
			Return(nil, credential.ErrUserNotFound)

		svc := newService(t, users)
		tok, err := svc.IssueReset(context.Background(), userID)
		require.NoError(t, err)

		err = svc.ResetPassword(context.Background(), tok, "new-password-123")
		require.ErrorIs(t, err, credential.ErrUserNotFound)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, new(MockUserDirectory))
		err := svc.ResetPassword(context.Background(), "garbage", "new-password-123")
		require.ErrorIs(t, err, token.ErrInvalidToken)
	})
}

func TestRequestReset(t *testing.T) {
	t.Parallel()

	t.Run("mails the token to the account address", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		users := new(MockUserDirectory)
		users.On("FindByEmail", mock.Anything, "u@example.com").
			Return(&credential.User{ID: userID, Email: "u@example.com"}, nil)

		mailer := newChannelMailer()
		svc := newService(t, users, credential.WithMailer(mailer))

		req, err := svc.RequestReset(context.Background(), "U@Example.COM")
		require.NoError(t, err)
		require.Equal(t, "u@example.com", req.Email)
		require.NotEmpty(t, req.Token)
		require.True(t, req.ExpiresAt.After(time.Now()))

		select {
		case sent := <-mailer.sent:
			assert.Equal(t, "u@example.com", sent.SendTo)
			assert.Contains(t, sent.BodyHTML, req.Token)
		case <-time.After(2 * time.Second):
			t.Fatal("expected reset email to be dispatched")
		}
	})

	t.Run("unknown address", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		users.On("FindByEmail", mock.Anything, "nobody@example.com").
			Return(nil, credential.ErrUserNotFound)

		svc := newService(t, users)
		_, err := svc.RequestReset(context.Background(), "nobody@example.com")
		require.ErrorIs(t, err, credential.ErrUserNotFound)
	})
}

func TestChangeEmail(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("moves account to new address", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		users.On("FindByEmail", mock.Anything, "new@example.com").
			Return(nil, credential.ErrUserNotFound)
		users.On("SetEmail", mock.Anything, userID, "new@example.com").Return(nil)

		svc := newService(t, users)
		tok, err := svc.IssueEmailChange(context.Background(), userID, "new@example.com")
		require.NoError(t, err)

		require.NoError(t, svc.ChangeEmail(context.Background(), userID, tok))
		users.AssertExpectations(t)
	})

	t.Run("address claimed after issuance fails", func(t *testing.T) {
		t.Parallel()

		otherID := uuid.New()
		users := new(MockUserDirectory)
		// Available when the token is minted, claimed by another account by
		// the time it is redeemed.
		users.On("FindByEmail", mock.Anything, "a@x.com").
			Return(nil, credential.ErrUserNotFound).Once()
		users.On("FindByEmail", mock.Anything, "a@x.com").
			Return(&credential.User{ID: otherID, Email: "a@x.com"}, nil).Once()

		svc := newService(t, users)
		tok, err := svc.IssueEmailChange(context.Background(), userID, "a@x.com")
		require.NoError(t, err)

		err = svc.ChangeEmail(context.Background(), userID, tok)
		require.ErrorIs(t, err, credential.ErrEmailTaken)
		users.AssertNotCalled(t, "SetEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("redeeming twice is a no-op once the address is ours", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		users.On("FindByEmail", mock.Anything, "new@example.com").
			Return(nil, credential.ErrUserNotFound).Once()
		users.On("FindByEmail", mock.Anything, "new@example.com").
			Return(&credential.User{ID: userID, Email: "new@example.com"}, nil).Once()

		svc := newService(t, users)
		tok, err := svc.IssueEmailChange(context.Background(), userID, "new@example.com")
		require.NoError(t, err)

		require.NoError(t, svc.ChangeEmail(context.Background(), userID, tok))
		users.AssertNotCalled(t, "SetEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects token minted for another user", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		users.On("FindByEmail", mock.Anything, "new@example.com").
			Return(nil, credential.ErrUserNotFound)

		svc := newService(t, users)
		tok, err := svc.IssueEmailChange(context.Background(), uuid.New(), "new@example.com")
		require.NoError(t, err)

		err = svc.ChangeEmail(context.Background(), userID, tok)
		require.ErrorIs(t, err, credential.ErrUnauthorized)
	})

	t.Run("issuance fails when address already taken", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		users.On("FindByEmail", mock.Anything, "taken@example.com").
			Return(&credential.User{ID: uuid.New(), Email: "taken@example.com"}, nil)

		svc := newService(t, users)
		_, err := svc.IssueEmailChange(context.Background(), userID, "taken@example.com")
		require.ErrorIs(t, err, credential.ErrEmailTaken)
	})
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("verifies old password before replacing", func(t *testing.T) {
		t.Parallel()

		oldHash, err := password.HashWithCost("old-password", bcrypt.MinCost)
		require.NoError(t, err)

		users := new(MockUserDirectory)
		users.On("GetPasswordHash", mock.Anything, userID).Return(oldHash, nil)
		users.On("SetPasswordHash", mock.Anything, userID, mock.MatchedBy(func(hash string) bool {
			return password.Verify("new-password", hash)
		})).Return(nil)

		svc := newService(t, users)
		require.NoError(t, svc.ChangePassword(context.Background(), userID, "old-password", "new-password"))
		users.AssertExpectations(t)
	})

	t.Run("wrong old password", func(t *testing.T) {
		t.Parallel()

		oldHash, err := password.HashWithCost("old-password", bcrypt.MinCost)
		require.NoError(t, err)

		users := new(MockUserDirectory)
		users.On("GetPasswordHash", mock.Anything, userID).Return(oldHash, nil)

		svc := newService(t, users)
		err = svc.ChangePassword(context.Background(), userID, "not-the-password", "new-password")
		require.ErrorIs(t, err, credential.ErrInvalidCredentials)
		users.AssertNotCalled(t, "SetPasswordHash", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestResendConfirmation(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("mints and mails a fresh token", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		users.On("FindByID", mock.Anything, userID).
			Return(&credential.User{ID: userID, Email: "u@example.com"}, nil)
		users.On("SetConfirmed", mock.Anything, userID, true).Return(nil)

		mailer := newChannelMailer()
		svc := newService(t, users, credential.WithMailer(mailer))

		req, err := svc.ResendConfirmation(context.Background(), userID)
		require.NoError(t, err)

		// The freshly minted token must verify for the same user.
		require.NoError(t, svc.VerifyConfirmation(context.Background(), userID, req.Token))

		select {
		case sent := <-mailer.sent:
			assert.Equal(t, "u@example.com", sent.SendTo)
		case <-time.After(2 * time.Second):
			t.Fatal("expected confirmation email to be dispatched")
		}
	})

	t.Run("already confirmed", func(t *testing.T) {
		t.Parallel()

		users := new(MockUserDirectory)
		users.On("FindByID", mock.Anything, userID).
			Return(&credential.User{ID: userID, Confirmed: true}, nil)

		svc := newService(t, users)
		_, err := svc.ResendConfirmation(context.Background(), userID)
		require.ErrorIs(t, err, credential.ErrAlreadyConfirmed)
	})
}
