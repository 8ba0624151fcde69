package credential

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/idkit/pkg/password"
	"github.com/dmitrymomot/idkit/pkg/token"
)

// IssueReset mints a password reset token for the user. The token carries
// the user id as its sole claim; redemption does not require the caller to
// know who the token belongs to.
func (s *Service) IssueReset(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.codec.Encode(map[string]any{claimReset: userID.String()}, s.resetTTL)
}

// RequestReset looks up the account by email, mints a reset token, and
// mails it. Returns ErrUserNotFound for unknown addresses; handlers should
// present a uniform success response regardless, to avoid account
// enumeration.
func (s *Service) RequestReset(ctx context.Context, addr string) (*TokenRequest, error) {
	addr = normalizeEmail(addr)

	user, err := s.users.FindByEmail(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	tok, err := s.IssueReset(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	s.sendMail(user.Email, "Reset Your Password", "password-reset",
		fmt.Sprintf("<p>Use this token to reset your password: %s</p>", tok))

	return &TokenRequest{
		Email:     user.Email,
		Token:     tok,
		ExpiresAt: time.Now().Add(s.resetTTL),
	}, nil
}

// ResetPassword redeems a reset token and replaces the account's password
// hash. The token is the sole source of identity: the user id comes from
// the decoded payload, never from the caller. A redeemed token is not
// invalidated and stays usable until its expiry; callers wanting stricter
// semantics must rotate the signing secret or shorten the TTL.
func (s *Service) ResetPassword(ctx context.Context, tok, newPassword string) error {
	payload, err := s.codec.Decode(tok, claimReset)
	if err != nil {
		return err
	}

	uid, _ := payload[claimReset].(string)
	userID, err := uuid.Parse(uid)
	if err != nil {
		return token.ErrMalformedPayload
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	hash, err := password.HashWithCost(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.SetPasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
