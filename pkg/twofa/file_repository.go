package twofa

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// FileTwoFARepository persists second-factor state as JSON on disk. Suitable
// for single-process deployments and local development.
type FileTwoFARepository struct {
	mu       sync.RWMutex
	filePath string
	data     fileTwoFAData
}

type fileTwoFAData struct {
	EmailOtps   []EmailOtpEntity  `json:"email_otps"`
	TotpSecrets map[string]string `json:"totp_secrets"`
}

func NewFileTwoFARepository(filePath string) (*FileTwoFARepository, error) {
	repo := &FileTwoFARepository{
		filePath: filePath,
		data: fileTwoFAData{
			TotpSecrets: make(map[string]string),
		},
	}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *FileTwoFARepository) load() error {
	raw, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", r.filePath, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &r.data); err != nil {
		return fmt.Errorf("failed to parse %s: %w", r.filePath, err)
	}
	if r.data.TotpSecrets == nil {
		r.data.TotpSecrets = make(map[string]string)
	}
	return nil
}

// save writes the state to disk. Caller must hold the write lock.
func (r *FileTwoFARepository) save() error {
	raw, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal twofa data: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.WriteFile(r.filePath, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.filePath, err)
	}
	return nil
}

func (r *FileTwoFARepository) UpsertEmailOtp(ctx context.Context, entity EmailOtpEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	replaced := false
	for i, existing := range r.data.EmailOtps {
		if existing.UserID == entity.UserID && existing.Purpose == entity.Purpose {
			r.data.EmailOtps[i] = entity
			replaced = true
			break
		}
	}
	if !replaced {
		r.data.EmailOtps = append(r.data.EmailOtps, entity)
	}
	return r.save()
}

func (r *FileTwoFARepository) GetEmailOtp(ctx context.Context, userID uuid.UUID, purpose string) (EmailOtpEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, existing := range r.data.EmailOtps {
		if existing.UserID == userID && existing.Purpose == purpose {
			return existing, nil
		}
	}
	return EmailOtpEntity{}, fmt.Errorf("no email code for user %s purpose %s", userID, purpose)
}

func (r *FileTwoFARepository) DeleteEmailOtp(ctx context.Context, userID uuid.UUID, purpose string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.data.EmailOtps {
		if existing.UserID == userID && existing.Purpose == purpose {
			r.data.EmailOtps = append(r.data.EmailOtps[:i], r.data.EmailOtps[i+1:]...)
			return r.save()
		}
	}
	return nil
}

func (r *FileTwoFARepository) GetTotpSecret(ctx context.Context, userID uuid.UUID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	secret, ok := r.data.TotpSecrets[userID.String()]
	if !ok || secret == "" {
		return "", fmt.Errorf("no totp secret for user %s", userID)
	}
	return secret, nil
}

func (r *FileTwoFARepository) SetTotpSecret(ctx context.Context, userID uuid.UUID, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.TotpSecrets[userID.String()] = secret
	return r.save()
}
