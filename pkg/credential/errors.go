package credential

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already taken")
	ErrUnauthorized       = errors.New("token does not belong to this user")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyConfirmed   = errors.New("account already confirmed")
)
