package user

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"atlas-backend/internal/domains/user/model"
)

// emailPattern is a simple shape check, deliberately looser than full RFC
// parsing.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ========================================
// AUTH DTOs
// ========================================

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate reports every violated rule, not just the first.
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name must be at least 2 characters long"),
			validation.Length(2, 50).Error("name must be 2-50 characters"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("please provide a valid email address"),
			validation.Match(emailPattern).Error("please provide a valid email address"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password must be at least 6 characters long"),
			validation.Length(6, 128).Error("password must be 6-128 characters"),
		),
	)
}

// Normalized returns the request with the email lowercased and fields
// trimmed. Normalization happens at write time so lookups stay canonical.
func (r SignUpRequest) Normalized() SignUpRequest {
	return SignUpRequest{
		Name:     strings.TrimSpace(r.Name),
		Email:    strings.ToLower(strings.TrimSpace(r.Email)),
		Password: r.Password,
	}
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Match(emailPattern)),
		validation.Field(&r.Password, validation.Required),
	)
}

// GoogleTokenRequest is the POST /auth/google body for non-browser callers
// that already hold a Google ID token.
type GoogleTokenRequest struct {
	IDToken string `json:"idToken"`
}

// GoogleIdentity is a provider identity assertion after verification.
type GoogleIdentity struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// ========================================
// PROFILE DTOs
// ========================================

// UpdateProfileRequest carries a partial profile update. Pointer fields
// distinguish "absent" from "set to empty".
type UpdateProfileRequest struct {
	CurrentEmail string  `json:"currentEmail"`
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Avatar       *string `json:"avatar"`
	Password     *string `json:"password"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentEmail,
			validation.Required.Error("valid currentEmail is required"),
			validation.Match(emailPattern).Error("invalid current email format"),
		),
		validation.Field(&r.Email,
			validation.When(r.Email != nil,
				validation.Match(emailPattern).Error("invalid email format"),
			),
		),
		validation.Field(&r.Name,
			validation.When(r.Name != nil && strings.TrimSpace(*r.Name) != "",
				validation.Length(1, 100).Error("name must be 100 characters or less"),
			),
		),
		validation.Field(&r.Password,
			validation.When(r.Password != nil && *r.Password != "",
				validation.Length(6, 128).Error("password must be 6-128 characters"),
			),
		),
	)
}

// ========================================
// VIEWS
// ========================================

// SessionUser is the public user view returned by auth endpoints.
type SessionUser struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar"`
}

func SessionUserFrom(u *model.User) SessionUser {
	return SessionUser{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.AvatarURL(),
	}
}

// AuthResult is what a successful authentication produces. Degraded marks a
// synthetic, non-persisted identity issued while the store was unreachable;
// it must never be treated as proof of a durable account.
type AuthResult struct {
	Token    string      `json:"token"`
	User     SessionUser `json:"user"`
	Degraded bool        `json:"degraded,omitempty"`
	Message  string      `json:"message"`
}
