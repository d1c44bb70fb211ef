package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   *string   `json:"-" db:"password_hash"` // nil for OAuth-only accounts
	Provider       string    `json:"provider" db:"provider"`
	GoogleID       *string   `json:"-" db:"google_id"` // nil when absent, unique when present
	ProfilePicture *string   `json:"profilePicture" db:"profile_picture"`
	Avatar         *string   `json:"avatar" db:"avatar"`
	Bio            string    `json:"bio" db:"bio"`
	IsVerified     bool      `json:"isVerified" db:"is_verified"`

	VerificationToken *string `json:"-" db:"verification_token"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// AvatarURL prefers the explicitly set avatar over the provider picture.
func (u *User) AvatarURL() *string {
	if u.Avatar != nil && *u.Avatar != "" {
		return u.Avatar
	}
	if u.ProfilePicture != nil && *u.ProfilePicture != "" {
		return u.ProfilePicture
	}
	return nil
}
