package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IssueEmailChange mints a token that, when redeemed, moves the account to
// newEmail. The new address is checked for availability at issuance, and
// checked again at redemption: availability can be lost in between.
func (s *Service) IssueEmailChange(ctx context.Context, userID uuid.UUID, newEmail string) (string, error) {
	newEmail = normalizeEmail(newEmail)

	if _, err := s.users.FindByEmail(ctx, newEmail); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return "", fmt.Errorf("failed to check email availability: %w", err)
	}

	return s.codec.Encode(map[string]any{
		claimEmailChange: userID.String(),
		claimNewEmail:    newEmail,
	}, s.emailChangeTTL)
}

// RequestEmailChange mints an email change token and mails it to the new
// address, proving the requester controls the destination mailbox.
func (s *Service) RequestEmailChange(ctx context.Context, userID uuid.UUID, newEmail string) (*TokenRequest, error) {
	newEmail = normalizeEmail(newEmail)

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	tok, err := s.IssueEmailChange(ctx, userID, newEmail)
	if err != nil {
		return nil, err
	}

	s.sendMail(newEmail, "Confirm Your New Email", "email-change",
		fmt.Sprintf("<p>Use this token to confirm your new email address: %s</p>", tok))

	return &TokenRequest{
		Email:     newEmail,
		Token:     tok,
		ExpiresAt: time.Now().Add(s.emailChangeTTL),
	}, nil
}

// ChangeEmail redeems an email change token on behalf of the claiming user.
// The new address is re-checked for uniqueness at apply time: if another
// account claimed it after issuance, the change fails with ErrEmailTaken
// instead of clobbering the other account's address.
func (s *Service) ChangeEmail(ctx context.Context, claimingUserID uuid.UUID, tok string) error {
	payload, err := s.codec.Decode(tok, claimEmailChange, claimNewEmail)
	if err != nil {
		return err
	}

	if uid, _ := payload[claimEmailChange].(string); uid != claimingUserID.String() {
		return ErrUnauthorized
	}

	newEmail, _ := payload[claimNewEmail].(string)
	newEmail = normalizeEmail(newEmail)

	owner, err := s.users.FindByEmail(ctx, newEmail)
	switch {
	case err == nil && owner.ID != claimingUserID:
		return ErrEmailTaken
	case err == nil:
		// Redeeming the same token twice: the address is already ours.
		return nil
	case !errors.Is(err, ErrUserNotFound):
		return fmt.Errorf("failed to check email availability: %w", err)
	}

	if err := s.users.SetEmail(ctx, claimingUserID, newEmail); err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}

	return nil
}
