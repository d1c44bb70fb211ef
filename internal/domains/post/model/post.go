package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post JSON field names match what the frontend already consumes (`_id`).
type Post struct {
	ID         uuid.UUID `json:"_id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	CoverImage string    `json:"coverImage" db:"cover_image"`
	Tags       []string  `json:"tags" db:"tags"`
	AuthorName string    `json:"authorName" db:"author_name"`
	AuthorID   string    `json:"authorId" db:"author_id"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
