package post

import (
	"context"

	"atlas-backend/internal/domains/post/model"
)

// CoverCleaner removes a hosted cover image by its public URL. Cleanup is
// best effort; a failed removal never fails the delete.
type CoverCleaner interface {
	Remove(ctx context.Context, url string) error
}

// Service is the post catalog: create, list, fetch and owner-gated delete.
type Service interface {
	// Create persists a sanitized post and returns it with a content preview
	// in place of the full body.
	Create(ctx context.Context, req CreatePostRequest) (*model.Post, error)

	List(ctx context.Context, q ListQuery) (*ListResult, error)

	// GetByID serves the public fetch path: drafts and absent ids are
	// indistinguishable.
	GetByID(ctx context.Context, id string) (*model.Post, error)

	// Delete removes a post if the caller passes the ownership check.
	Delete(ctx context.Context, req DeleteRequest) error
}
