package dto

import (
	"time"

	"github.com/google/uuid"
)

type AdminResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// TokenPairResponse carries the access token's expiry so the editor can
// refresh ahead of it.
type TokenPairResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type LoginResponse struct {
	User         AdminResponse `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    time.Time     `json:"expires_at"`
}
