package upload

import "errors"

var (
	ErrNotConfigured = errors.New("upload storage not configured")
	ErrNoFile        = errors.New("no file provided")
	ErrInvalidFile   = errors.New("file is not an image")
	ErrTooLarge      = errors.New("file exceeds size limit")
	ErrTimeout       = errors.New("upload timed out")
)
