package post

import (
	"context"

	"github.com/google/uuid"

	"atlas-backend/internal/domains/post/model"
)

// ListFilter is the repository-level listing filter; values are already
// normalized by the service.
type ListFilter struct {
	Search     string
	Status     string
	AuthorID   string
	AuthorName string
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, p *model.Post) error

	// FindByID returns the post regardless of status; visibility rules live
	// in the service.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)

	// List returns one page of posts plus the total match count.
	List(ctx context.Context, f ListFilter) ([]model.Post, int, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
