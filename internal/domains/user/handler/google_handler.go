package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"atlas-backend/internal/config"
	"atlas-backend/internal/domains/user"
	"atlas-backend/internal/shared/middleware"
	"atlas-backend/internal/shared/response"
	"atlas-backend/pkg/logger"
)

const (
	googleIssuer     = "https://accounts.google.com"
	stateCookieName  = "atlas_oauth_state"
	stateCookieMaxAg = 300 // seconds
)

// GoogleHandler drives the OAuth redirect dance (GET) and verifies raw ID
// tokens for non-browser callers (POST). The OIDC provider is resolved
// lazily so the server can boot without reaching Google.
type GoogleHandler struct {
	service user.Service
	cfg     config.GoogleConfig
	baseURL string
	prod    bool

	mu       sync.Mutex
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func NewGoogleHandler(service user.Service, cfg config.GoogleConfig, app config.AppConfig) *GoogleHandler {
	return &GoogleHandler{
		service: service,
		cfg:     cfg,
		baseURL: app.BaseURL,
		prod:    app.Environment == "production",
	}
}

func (h *GoogleHandler) init(ctx context.Context) (*oauth2.Config, *oidc.IDTokenVerifier, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.oauth != nil {
		return h.oauth, h.verifier, nil
	}
	if !h.cfg.Configured() {
		return nil, nil, fmt.Errorf("google oauth is not configured")
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve google oidc provider: %w", err)
	}

	redirectURI := h.cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = h.baseURL + "/api/auth/google"
	}

	h.oauth = &oauth2.Config{
		ClientID:     h.cfg.ClientID,
		ClientSecret: h.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint:     google.Endpoint,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	h.verifier = provider.Verifier(&oidc.Config{ClientID: h.cfg.ClientID})
	return h.oauth, h.verifier, nil
}

// Redirect handles GET /auth/google: without a code it sends the browser to
// the consent screen, with a code it completes the exchange and redirects to
// the client callback route with the session cookie set.
func (h *GoogleHandler) Redirect(c *gin.Context) {
	ctx := c.Request.Context()

	oauthCfg, verifier, err := h.init(ctx)
	if err != nil {
		logger.Error("google oauth unavailable", err)
		response.Message(c, http.StatusInternalServerError, "Google OAuth not configured. Please check environment variables.")
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		h.loginRedirect(c, "oauth_error")
		return
	}

	code := c.Query("code")
	if code == "" {
		state, err := randomState()
		if err != nil {
			response.Message(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(stateCookieName, state, stateCookieMaxAg, "/", "", h.prod, true)
		c.Redirect(http.StatusTemporaryRedirect, oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline))
		return
	}

	// Callback leg: the state must match the one we handed out.
	wantState, err := c.Cookie(stateCookieName)
	if err != nil || wantState == "" || c.Query("state") != wantState {
		h.loginRedirect(c, "oauth_error")
		return
	}

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		logger.Error("google code exchange failed", err)
		h.loginRedirect(c, "oauth_failed")
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		h.loginRedirect(c, "oauth_failed")
		return
	}

	identity, err := h.verifyIDToken(ctx, verifier, rawIDToken)
	if err != nil {
		logger.Error("google id token rejected", err)
		h.loginRedirect(c, "oauth_failed")
		return
	}
	if identity.Email == "" {
		h.loginRedirect(c, "no_email")
		return
	}

	result, err := h.service.GoogleSignIn(ctx, *identity)
	if err != nil {
		logger.Error("google sign-in failed", err)
		h.loginRedirect(c, "oauth_failed")
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookieName, result.Token, cookieMaxAge, "/", "", h.prod, true)
	c.Redirect(http.StatusFound, h.baseURL+"/auth/callback")
}

// Token handles POST /auth/google with a pre-obtained ID token and replies
// with JSON instead of a redirect.
func (h *GoogleHandler) Token(c *gin.Context) {
	ctx := c.Request.Context()

	_, verifier, err := h.init(ctx)
	if err != nil {
		logger.Error("google oauth unavailable", err)
		response.Message(c, http.StatusInternalServerError, "Google OAuth not configured. Please check environment variables.")
		return
	}

	var req user.GoogleTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		response.Message(c, http.StatusBadRequest, "ID token is required")
		return
	}

	identity, err := h.verifyIDToken(ctx, verifier, req.IDToken)
	if err != nil {
		response.Message(c, http.StatusUnauthorized, "Invalid or expired provider token")
		return
	}
	if identity.Email == "" {
		response.Message(c, http.StatusBadRequest, "No email found in Google token")
		return
	}

	result, err := h.service.GoogleSignIn(ctx, *identity)
	if err != nil {
		logger.Error("google sign-in failed", err)
		response.Message(c, http.StatusInternalServerError, "Google authentication failed")
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookieName, result.Token, cookieMaxAge, "/", "", h.prod, true)
	c.JSON(http.StatusOK, result)
}

func (h *GoogleHandler) verifyIDToken(ctx context.Context, verifier *oidc.IDTokenVerifier, raw string) (*user.GoogleIdentity, error) {
	idToken, err := verifier.Verify(ctx, raw)
	if err != nil {
		return nil, user.ErrInvalidGoogleToken
	}

	var claims struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode google claims: %w", err)
	}

	return &user.GoogleIdentity{
		GoogleID: claims.Sub,
		Email:    claims.Email,
		Name:     claims.Name,
		Picture:  claims.Picture,
	}, nil
}

func (h *GoogleHandler) loginRedirect(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, h.baseURL+"/login?error="+code)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
