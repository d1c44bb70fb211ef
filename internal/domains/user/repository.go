package user

import (
	"context"

	"atlas-backend/internal/domains/user/model"
)

// Repository is the data access contract for users. Emails passed in are
// assumed already normalized (lowercase, trimmed); implementations enforce
// uniqueness and map store errors to the package sentinels.
type Repository interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *model.User) error

	// LinkGoogle attaches a provider identity to an existing record.
	// Linking an already-linked user is a no-op.
	LinkGoogle(ctx context.Context, email, googleID, picture string) error

	// MarkVerified flips is_verified for the user holding the token.
	MarkVerified(ctx context.Context, token string) error
}
