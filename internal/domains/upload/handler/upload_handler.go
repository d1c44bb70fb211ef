package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"atlas-backend/internal/domains/upload"
	"atlas-backend/internal/shared/response"
	"atlas-backend/pkg/logger"
)

// UploadHandler exposes POST /upload. Error payloads use the bare {error}
// shape the upload widget expects.
type UploadHandler struct {
	service upload.Service
}

func NewUploadHandler(service upload.Service) *UploadHandler {
	return &UploadHandler{service: service}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.UploadError(c, http.StatusBadRequest, "No file provided")
		return
	}

	// The size guard runs on the declared size before reading the payload.
	if fileHeader.Size > upload.MaxFileSize {
		response.UploadError(c, http.StatusBadRequest, "File size must be less than 5MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.UploadError(c, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, upload.MaxFileSize+1))
	if err != nil {
		logger.Error("read upload", err)
		response.UploadError(c, http.StatusInternalServerError, "Failed to upload image. Please try again.")
		return
	}

	result, err := h.service.Upload(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrNotConfigured):
			response.UploadError(c, http.StatusServiceUnavailable, "Image upload service unavailable")
		case errors.Is(err, upload.ErrNoFile):
			response.UploadError(c, http.StatusBadRequest, "No file provided")
		case errors.Is(err, upload.ErrTooLarge):
			response.UploadError(c, http.StatusBadRequest, "File size must be less than 5MB")
		case errors.Is(err, upload.ErrInvalidFile):
			response.UploadError(c, http.StatusBadRequest, "Only image files are allowed")
		case errors.Is(err, upload.ErrTimeout):
			response.UploadError(c, http.StatusRequestTimeout, "Upload timeout - please try again")
		default:
			logger.Error("upload image", err)
			response.UploadError(c, http.StatusInternalServerError, "Failed to upload image. Please try again.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"url":       result.URL,
		"public_id": result.PublicID,
		"width":     result.Width,
		"height":    result.Height,
		"format":    result.Format,
		"bytes":     result.Bytes,
	})
}
