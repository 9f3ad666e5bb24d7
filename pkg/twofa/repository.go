package twofa

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EmailOtpEntity is the single outstanding email code for a user and
// purpose. Minting a new code replaces the previous entity, so exactly one
// code is live at a time.
type EmailOtpEntity struct {
	UserID    uuid.UUID
	Purpose   string
	Secret    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TwoFARepository defines the interface for second-factor storage operations
type TwoFARepository interface {
	UpsertEmailOtp(ctx context.Context, entity EmailOtpEntity) error
	GetEmailOtp(ctx context.Context, userID uuid.UUID, purpose string) (EmailOtpEntity, error)
	DeleteEmailOtp(ctx context.Context, userID uuid.UUID, purpose string) error

	GetTotpSecret(ctx context.Context, userID uuid.UUID) (string, error)
	SetTotpSecret(ctx context.Context, userID uuid.UUID, secret string) error
}
