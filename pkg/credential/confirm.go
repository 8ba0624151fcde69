package credential

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IssueConfirmation mints an account confirmation token for the user.
// No side effects; the token is valid for the configured confirmation TTL.
func (s *Service) IssueConfirmation(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.codec.Encode(map[string]any{claimConfirm: userID.String()}, s.confirmTTL)
}

// VerifyConfirmation redeems a confirmation token on behalf of the claiming
// user. The token must carry the same user id, so a token mailed to user A
// cannot be redeemed while acting as user B. Confirming an already-confirmed
// account is a no-op success; tokens stay redeemable until expiry.
func (s *Service) VerifyConfirmation(ctx context.Context, claimingUserID uuid.UUID, tok string) error {
	payload, err := s.codec.Decode(tok, claimConfirm)
	if err != nil {
		return err
	}

	if uid, _ := payload[claimConfirm].(string); uid != claimingUserID.String() {
		return ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, claimingUserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if user.Confirmed {
		return nil
	}

	if err := s.users.SetConfirmed(ctx, user.ID, true); err != nil {
		return fmt.Errorf("failed to confirm user: %w", err)
	}

	return nil
}

// ResendConfirmation mints a fresh confirmation token for an unconfirmed
// account and mails it. Returns ErrAlreadyConfirmed when there is nothing
// left to confirm.
func (s *Service) ResendConfirmation(ctx context.Context, userID uuid.UUID) (*TokenRequest, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.Confirmed {
		return nil, ErrAlreadyConfirmed
	}

	tok, err := s.IssueConfirmation(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate confirmation token: %w", err)
	}

	s.sendMail(user.Email, "Confirm Your Account", "account-confirmation",
		fmt.Sprintf("<p>Use this token to confirm your account: %s</p>", tok))

	return &TokenRequest{
		Email:     user.Email,
		Token:     tok,
		ExpiresAt: time.Now().Add(s.confirmTTL),
	}, nil
}
