package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"atlas-backend/internal/domains/user"
	"atlas-backend/internal/shared/middleware"
	"atlas-backend/internal/shared/response"
	"atlas-backend/pkg/jwt"
	"atlas-backend/pkg/logger"
)

const cookieMaxAge = int(jwt.SessionLifetime / 1e9) // seconds

// AuthHandler exposes the authentication component over HTTP.
type AuthHandler struct {
	service    user.Service
	production bool
}

func NewAuthHandler(service user.Service, environment string) *AuthHandler {
	return &AuthHandler{
		service:    service,
		production: environment == "production",
	}
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req user.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusCreated, result)
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req user.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, result)
}

// SignOut handles POST /auth/signout. Always succeeds.
func (h *AuthHandler) SignOut(c *gin.Context) {
	h.clearSessionCookie(c)
	response.Message(c, http.StatusOK, "Signed out")
}

// Me handles GET /auth/me, reading the session cookie.
func (h *AuthHandler) Me(c *gin.Context) {
	token, err := c.Cookie(middleware.SessionCookieName)
	if err != nil {
		response.Message(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	view, err := h.service.CurrentUser(c.Request.Context(), token)
	if err != nil {
		response.Message(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": view})
}

// VerifyEmail handles GET /auth/verify-email?token=.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	err := h.service.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		if errors.Is(err, user.ErrVerifyTokenInvalid) {
			response.Message(c, http.StatusBadRequest, "Verification token is invalid")
			return
		}
		if errors.Is(err, user.ErrStoreUnavailable) {
			response.Message(c, http.StatusServiceUnavailable, "Database connection unavailable")
			return
		}
		logger.Error("verify email", err)
		response.Message(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	response.Message(c, http.StatusOK, "Email verified")
}

// UpdateProfile handles PUT /users/update.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req user.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, changed, err := h.service.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.As(err, &verrs):
			response.FailWithDetails(c, http.StatusBadRequest, "Validation failed", verrs)
		case errors.Is(err, user.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, "User not found. Please check your email address.")
		case errors.Is(err, user.ErrEmailAlreadyExists):
			response.Fail(c, http.StatusConflict, "Email already in use")
		case errors.Is(err, user.ErrStoreUnavailable):
			response.Fail(c, http.StatusServiceUnavailable, "Database connection unavailable")
		default:
			logger.Error("update profile", err)
			response.Fail(c, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": view, "changed": changed})
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": verrs})
	case errors.Is(err, user.ErrEmailAlreadyExists):
		response.Message(c, http.StatusConflict, "User already exists")
	case errors.Is(err, user.ErrInvalidCredentials):
		response.Message(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, user.ErrNoEmailInToken):
		response.Message(c, http.StatusBadRequest, "No email found in Google token")
	case errors.Is(err, user.ErrInvalidGoogleToken):
		response.Message(c, http.StatusUnauthorized, "Invalid or expired provider token")
	default:
		logger.Error("authentication failed", err)
		response.Message(c, http.StatusInternalServerError, "Internal server error")
	}
}

// setSessionCookie materializes a session: same-site strict, http-only,
// secure in production, 7-day lifetime, root path.
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookieName, token, cookieMaxAge, "/", "", h.production, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.production, true)
}
