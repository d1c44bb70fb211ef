package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	// Cover images are normalized to an Open Graph friendly box.
	CoverWidth  = 1200
	CoverHeight = 630

	jpegQuality = 85
)

var ErrNotAnImage = errors.New("file is not a decodable image")

// ProcessedImage is the transformed payload plus the metadata returned to the
// client after upload.
type ProcessedImage struct {
	Data   []byte
	Width  int
	Height int
	Format string // always "jpg" after transform
}

// ImageProcessor applies the fixed cover transform: fill-crop to 1200×630 and
// re-encode as JPEG.
type ImageProcessor struct{}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{}
}

// Process decodes data and produces the cover variant. Non-image payloads
// return ErrNotAnImage.
func (p *ImageProcessor) Process(data []byte) (*ProcessedImage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotAnImage
	}

	cover := imaging.Fill(img, CoverWidth, CoverHeight, imaging.Center, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, cover, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}

	return &ProcessedImage{
		Data:   buf.Bytes(),
		Width:  CoverWidth,
		Height: CoverHeight,
		Format: "jpg",
	}, nil
}
