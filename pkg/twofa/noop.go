package twofa

import (
	"context"

	"github.com/google/uuid"
)

// NoopTwoFactorService accepts every code and delivers nothing. Useful when
// wiring environments where the second factor is disabled.
type NoopTwoFactorService struct{}

func NewNoopTwoFactorService() *NoopTwoFactorService {
	return &NoopTwoFactorService{}
}

func (s *NoopTwoFactorService) RequestEmailCode(ctx context.Context, userID uuid.UUID, purpose string) error {
	return nil
}

func (s *NoopTwoFactorService) VerifyEmailCode(ctx context.Context, userID uuid.UUID, code, purpose string) (bool, error) {
	return true, nil
}

func (s *NoopTwoFactorService) VerifyTotpCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	return true, nil
}
