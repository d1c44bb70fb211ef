package user

import "errors"

// Repository-level errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrStoreUnavailable marks a store that could not be reached (or was
	// never configured). Authentication flows downgrade it to a degraded-mode
	// success instead of failing the request.
	ErrStoreUnavailable = errors.New("user store unavailable")
)

// Service-level errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNoEmailInToken     = errors.New("no email found in provider token")
	ErrInvalidGoogleToken = errors.New("invalid or expired provider token")
	ErrVerifyTokenInvalid = errors.New("verification token is invalid")
)
