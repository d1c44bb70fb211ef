package user

import "context"

// Service is the authentication component: it turns credential
// presentations into sessions and manages the profile behind them.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error)
	SignIn(ctx context.Context, req SignInRequest) (*AuthResult, error)

	// GoogleSignIn accepts an already-verified provider identity and creates,
	// links or loads the matching account.
	GoogleSignIn(ctx context.Context, identity GoogleIdentity) (*AuthResult, error)

	// CurrentUser resolves a session token into a user view, enriching from
	// the store when reachable and degrading to the token's embedded identity
	// otherwise.
	CurrentUser(ctx context.Context, token string) (*SessionUser, error)

	// UpdateProfile applies a partial update; the bool reports whether
	// anything actually changed.
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*SessionUser, bool, error)

	VerifyEmail(ctx context.Context, token string) error
}
