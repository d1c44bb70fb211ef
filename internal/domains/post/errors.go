package post

import "errors"

var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidID    = errors.New("invalid post id")

	ErrTitleRequired   = errors.New("title is required")
	ErrContentRequired = errors.New("content is required")
	ErrAuthorRequired  = errors.New("author id is required")
	ErrInvalidCover    = errors.New("invalid cover image url")
	ErrDuplicateTitle  = errors.New("a post with this title already exists")

	// ErrForbidden: the caller is not the post's owner.
	ErrForbidden = errors.New("not authorized to modify this post")

	ErrStoreUnavailable = errors.New("post store unavailable")
)
