package upload

import "context"

const (
	// MaxFileSize is the upload size ceiling, checked before any decode or
	// network work.
	MaxFileSize = 5 * 1024 * 1024

	// UploadTimeout bounds the forward to the asset host so the handler
	// always resolves.
	UploadTimeout = 60 // seconds
)

// Result mirrors the asset-host response the frontend expects.
type Result struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Bytes    int    `json:"bytes"`
}

// Service relays a single image to the asset host after the fixed cover
// transform.
type Service interface {
	Upload(ctx context.Context, data []byte, contentType string) (*Result, error)

	// Remove deletes a previously uploaded asset by its public URL. URLs that
	// do not point at the asset host are ignored.
	Remove(ctx context.Context, url string) error
}
