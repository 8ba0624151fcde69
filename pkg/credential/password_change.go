package credential

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/idkit/pkg/password"
)

// ChangePassword replaces a logged-in user's password after verifying the
// current one. This is the token-free sibling of ResetPassword: identity is
// established by the session, proof by the old password.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	hash, err := s.users.GetPasswordHash(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get password hash: %w", err)
	}

	if !password.Verify(oldPassword, hash) {
		return ErrInvalidCredentials
	}

	newHash, err := password.HashWithCost(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.SetPasswordHash(ctx, userID, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
