package twofa

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type otpKey struct {
	userID  uuid.UUID
	purpose string
}

// InMemTwoFARepository is an in-memory implementation of TwoFARepository
// for development and testing.
type InMemTwoFARepository struct {
	mu          sync.RWMutex
	emailOtps   map[otpKey]EmailOtpEntity
	totpSecrets map[uuid.UUID]string
}

func NewInMemTwoFARepository() *InMemTwoFARepository {
	return &InMemTwoFARepository{
		emailOtps:   make(map[otpKey]EmailOtpEntity),
		totpSecrets: make(map[uuid.UUID]string),
	}
}

func (r *InMemTwoFARepository) UpsertEmailOtp(ctx context.Context, entity EmailOtpEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emailOtps[otpKey{entity.UserID, entity.Purpose}] = entity
	return nil
}

func (r *InMemTwoFARepository) GetEmailOtp(ctx context.Context, userID uuid.UUID, purpose string) (EmailOtpEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entity, ok := r.emailOtps[otpKey{userID, purpose}]
	if !ok {
		return EmailOtpEntity{}, fmt.Errorf("no email code for user %s purpose %s", userID, purpose)
	}
	return entity, nil
}

func (r *InMemTwoFARepository) DeleteEmailOtp(ctx context.Context, userID uuid.UUID, purpose string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.emailOtps, otpKey{userID, purpose})
	return nil
}

func (r *InMemTwoFARepository) GetTotpSecret(ctx context.Context, userID uuid.UUID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	secret, ok := r.totpSecrets[userID]
	if !ok || secret == "" {
		return "", fmt.Errorf("no totp secret for user %s", userID)
	}
	return secret, nil
}

func (r *InMemTwoFARepository) SetTotpSecret(ctx context.Context, userID uuid.UUID, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totpSecrets[userID] = secret
	return nil
}

// SeedTotpSecret registers an authenticator secret, bypassing enrollment.
// Test helper.
func (r *InMemTwoFARepository) SeedTotpSecret(userID uuid.UUID, secret string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totpSecrets[userID] = secret
}
