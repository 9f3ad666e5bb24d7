package login

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Domain models for the login repository

// LoginEntity represents a user login record in the domain model
type LoginEntity struct {
	ID            uuid.UUID
	Email         string
	EmailVerified bool
	Password      []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProfileEntity represents the per-user profile extension loaded alongside
// the login record on session establishment.
type ProfileEntity struct {
	UserID           uuid.UUID
	DisplayName      string
	DisplayNameValid bool
	TwoFactorEnabled bool
	TotpSecret       string
	TotpSecretValid  bool
	CreatedAt        time.Time
}

// LoginRepository defines the interface for login-related storage operations
type LoginRepository interface {
	FindLoginByEmail(ctx context.Context, email string) (LoginEntity, error)
	GetLoginById(ctx context.Context, id uuid.UUID) (LoginEntity, error)
	GetProfileByUserId(ctx context.Context, userID uuid.UUID) (ProfileEntity, error)
}
