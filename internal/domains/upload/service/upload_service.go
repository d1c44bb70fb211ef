package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"atlas-backend/internal/domains/upload"
	"atlas-backend/internal/infrastructure/storage"
)

const keyPrefix = "atlas-blog-images/"

// ObjectStore is the slice of the asset host the relay needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type uploadService struct {
	store     ObjectStore
	processor *storage.ImageProcessor
}

// NewUploadService builds the relay. store may be nil when the asset host is
// not configured; uploads then fail with ErrNotConfigured.
func NewUploadService(store ObjectStore, processor *storage.ImageProcessor) upload.Service {
	return &uploadService{store: store, processor: processor}
}

func (s *uploadService) Upload(ctx context.Context, data []byte, contentType string) (*upload.Result, error) {
	if s.store == nil {
		return nil, upload.ErrNotConfigured
	}

	// Size and media-type guards run before any decode or network call.
	if len(data) == 0 {
		return nil, upload.ErrNoFile
	}
	if len(data) > upload.MaxFileSize {
		return nil, upload.ErrTooLarge
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, upload.ErrInvalidFile
	}

	img, err := s.processor.Process(data)
	if err != nil {
		if errors.Is(err, storage.ErrNotAnImage) {
			return nil, upload.ErrInvalidFile
		}
		return nil, fmt.Errorf("process image: %w", err)
	}

	publicID := keyPrefix + uuid.NewString()
	key := publicID + "." + img.Format

	uploadCtx, cancel := context.WithTimeout(ctx, upload.UploadTimeout*time.Second)
	defer cancel()

	url, err := s.store.Upload(uploadCtx, key, img.Data, "image/jpeg")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, upload.ErrTimeout
		}
		return nil, fmt.Errorf("forward to asset host: %w", err)
	}

	return &upload.Result{
		URL:      url,
		PublicID: publicID,
		Width:    img.Width,
		Height:   img.Height,
		Format:   img.Format,
		Bytes:    len(img.Data),
	}, nil
}

// Remove deletes an asset by its public URL. Foreign URLs and an unconfigured
// store are silently ignored so callers can invoke it unconditionally.
func (s *uploadService) Remove(ctx context.Context, url string) error {
	if s.store == nil {
		return nil
	}
	idx := strings.Index(url, keyPrefix)
	if idx < 0 {
		return nil
	}
	return s.store.Delete(ctx, url[idx:])
}
