package credential

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Token payload keys. Each credential operation writes its own key, so a
// token minted for one intent fails the shape check of every other.
const (
	claimConfirm     = "confirm"
	claimReset       = "reset"
	claimEmailChange = "change_email"
	claimNewEmail    = "new_email"
)

// User is the directory's view of an account as consumed by credential
// operations.
type User struct {
	ID        uuid.UUID
	Email     string
	Username  string
	Confirmed bool
	CreatedAt time.Time
}

// UserDirectory is the external user store consumed by credential
// operations. Lookups return ErrUserNotFound when no row matches.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	GetPasswordHash(ctx context.Context, id uuid.UUID) (string, error)
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	SetConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) error
	SetEmail(ctx context.Context, id uuid.UUID, email string) error
}

// TokenRequest is the result of minting a credential token: the opaque
// token string plus delivery metadata for the caller.
type TokenRequest struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}
