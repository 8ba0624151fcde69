package oauth

import "errors"

var (
	ErrClientNotFound     = errors.New("oauth client not found")
	ErrGrantNotFound      = errors.New("authorization grant not found")
	ErrGrantExpired       = errors.New("authorization grant expired")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenExpired       = errors.New("access token expired")
	ErrInvalidClient      = errors.New("client authentication failed")
	ErrInvalidRedirectURI = errors.New("redirect uri not registered for client")
	ErrInvalidScope       = errors.New("requested scope exceeds client scope")

	// ErrStoreUnavailable marks transient persistence failures. It is the
	// only error kind a caller may retry; everything else requires a fresh
	// user action.
	ErrStoreUnavailable = errors.New("oauth store unavailable")
)
