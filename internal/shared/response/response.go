package response

import (
	"github.com/gin-gonic/gin"
)

// The wire shapes mirror the surface the frontend already speaks:
// auth endpoints reply with a top-level {message, ...}, catalog endpoints
// with {success, ...}. Helpers exist so handlers never hand-build envelopes.

// Message replies with a bare message payload (auth surface).
func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
}

// Fail replies with {success:false, message} (catalog surface).
func Fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"success": false, "message": message})
}

// FailWithDetails additionally carries field-level validation errors.
func FailWithDetails(c *gin.Context, statusCode int, message string, details interface{}) {
	c.JSON(statusCode, gin.H{"success": false, "message": message, "errors": details})
}

// UploadError replies with {error} — the shape the upload widget expects.
func UploadError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}
