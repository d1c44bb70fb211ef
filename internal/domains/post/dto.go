package post

import (
	"atlas-backend/internal/domains/post/model"
)

// Sanitization limits, matching the public API contract.
const (
	MaxTitleLen      = 200
	MaxAuthorNameLen = 100
	MaxTagLen        = 50
	MaxTags          = 10
	MaxLimit         = 50
	DefaultLimit     = 10

	DefaultAuthorName = "Anonymous"

	// Create responses truncate content to this many characters to keep the
	// payload small; the full content is stored.
	PreviewLen = 200
)

type CreatePostRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	CoverImage string   `json:"coverImage"`
	Tags       []string `json:"tags"`
	AuthorName string   `json:"authorName"`
	AuthorID   string   `json:"authorId"`
	Status     string   `json:"status"`
}

// ListQuery is the parsed GET /posts query string. Unparsable numbers arrive
// as zero and fall back to the listing defaults.
type ListQuery struct {
	Search     string
	Status     string
	AuthorID   string
	AuthorName string
	Limit      int
	Page       int
}

// ListResult is the listing response shape the frontend consumes.
type ListResult struct {
	Posts []model.Post `json:"posts"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Pages int          `json:"pages"`
	Limit int          `json:"limit"`
}

// DeleteRequest carries the caller's claimed identity for authorization.
type DeleteRequest struct {
	ID         string
	AuthorID   string
	AuthorName string
}
