package twofa

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-verify/pkg/notice"
	"github.com/tendant/simple-verify/pkg/notification"
	"github.com/tendant/simple-verify/pkg/utils"
)

// PurposeTwoFactor is the purpose tag binding email codes to the
// second-factor verification flow.
const PurposeTwoFactor = "two_factor"

// DefaultEmailCodeTTL is how long a delivered email code stays valid.
const DefaultEmailCodeTTL = EMAIL_CODE_PERIOD * time.Second

// MinPasscodeLength is the expected full length of a verification code.
const MinPasscodeLength = 6

// TwoFactorService is the collaborator contract the verification subsystem
// consumes: mint-and-deliver email codes, and validate codes on either
// channel. Both verify operations return valid=false for wrong and for
// expired codes without distinguishing the two.
type TwoFactorService interface {
	RequestEmailCode(ctx context.Context, userID uuid.UUID, purpose string) error
	VerifyEmailCode(ctx context.Context, userID uuid.UUID, code, purpose string) (bool, error)
	VerifyTotpCode(ctx context.Context, userID uuid.UUID, code string) (bool, error)
}

// EmailResolver resolves the delivery address for a user.
type EmailResolver interface {
	GetEmailByUserId(ctx context.Context, userID uuid.UUID) (string, error)
}

// TwoFaService implements TwoFactorService backed by a repository and the
// notification manager.
type TwoFaService struct {
	repository          TwoFARepository
	notificationManager *notification.NotificationManager
	emailResolver       EmailResolver
	codeTTL             time.Duration
}

// TwoFaServiceOption configures a TwoFaService
type TwoFaServiceOption func(*TwoFaService)

// WithCodeTTL overrides the email code time-to-live.
func WithCodeTTL(ttl time.Duration) TwoFaServiceOption {
	return func(s *TwoFaService) {
		s.codeTTL = ttl
	}
}

func NewTwoFaService(repository TwoFARepository, notificationManager *notification.NotificationManager, emailResolver EmailResolver, opts ...TwoFaServiceOption) *TwoFaService {
	service := &TwoFaService{
		repository:          repository,
		notificationManager: notificationManager,
		emailResolver:       emailResolver,
		codeTTL:             DefaultEmailCodeTTL,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// RequestEmailCode mints a new passcode bound to the user and purpose and
// delivers it by email. The previous outstanding code for that purpose, if
// any, is replaced.
func (s *TwoFaService) RequestEmailCode(ctx context.Context, userID uuid.UUID, purpose string) error {
	secret, err := GenerateOtpSecret(userID.String())
	if err != nil {
		return fmt.Errorf("failed to generate code secret: %w", err)
	}

	passcode, err := GenerateEmailPasscode(secret)
	if err != nil {
		return fmt.Errorf("failed to generate passcode: %w", err)
	}

	now := time.Now().UTC()
	err = s.repository.UpsertEmailOtp(ctx, EmailOtpEntity{
		UserID:    userID,
		Purpose:   purpose,
		Secret:    secret,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.codeTTL),
	})
	if err != nil {
		return fmt.Errorf("failed to store email code: %w", err)
	}

	email, err := s.emailResolver.GetEmailByUserId(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve user email: %w", err)
	}

	err = s.SendPasscodeEmail(ctx, email, passcode, userID)
	if err != nil {
		return fmt.Errorf("failed to send passcode: %w", err)
	}

	slog.Info("Email code sent", "userID", userID, "email", utils.MaskEmail(email), "purpose", purpose, "expiresAt", now.Add(s.codeTTL))
	return nil
}

// VerifyEmailCode validates a delivered email code. Expired and wrong codes
// are both reported as valid=false.
func (s *TwoFaService) VerifyEmailCode(ctx context.Context, userID uuid.UUID, code, purpose string) (bool, error) {
	if len(code) < MinPasscodeLength {
		return false, nil
	}

	entity, err := s.repository.GetEmailOtp(ctx, userID, purpose)
	if err != nil {
		slog.Warn("No outstanding email code for user", "userID", userID, "purpose", purpose)
		return false, nil
	}

	if time.Now().UTC().After(entity.ExpiresAt) {
		slog.Info("Email code expired", "userID", userID, "expiresAt", entity.ExpiresAt)
		return false, nil
	}

	valid, err := ValidateEmailPasscode(entity.Secret, code)
	if err != nil {
		return false, fmt.Errorf("failed to validate email code: %w", err)
	}

	return valid, nil
}

// VerifyTotpCode validates an authenticator-app code for an enrolled user.
func (s *TwoFaService) VerifyTotpCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	if len(code) < MinPasscodeLength {
		return false, nil
	}

	secret, err := s.repository.GetTotpSecret(ctx, userID)
	if err != nil {
		slog.Warn("No totp secret for user", "userID", userID)
		return false, fmt.Errorf("no totp secret for user: %w", err)
	}

	return ValidateTotpPasscode(secret, code), nil
}

// SendPasscodeEmail delivers the passcode through the notification manager.
func (s *TwoFaService) SendPasscodeEmail(ctx context.Context, email, passcode string, userID uuid.UUID) error {
	data := map[string]string{
		"Passcode": passcode,
		"UserId":   userID.String(),
	}
	return s.notificationManager.Send(notice.TwofaCodeNotice, notification.NotificationData{
		To:   email,
		Data: data,
	})
}
