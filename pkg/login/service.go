package login

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MinPasswordLength is enforced locally before any repository access.
const MinPasswordLength = 6

var validate = validator.New()

// LoginResult is the outcome of a successful credential verification.
type LoginResult struct {
	User              User
	Profile           Profile
	RequiresTwoFactor bool
}

// LoginService verifies primary credentials against the login repository.
type LoginService struct {
	repository LoginRepository
}

func NewLoginService(repository LoginRepository) *LoginService {
	return &LoginService{
		repository: repository,
	}
}

// ValidateCredentialsInput checks email syntax and password length without
// touching the repository. A failure here is a local validation error.
func ValidateCredentialsInput(email, password string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// VerifyCredentials validates the email/password pair and, on success,
// returns the user with their profile and whether a second factor is
// required. No session state is created here.
func (s *LoginService) VerifyCredentials(ctx context.Context, email, password string) (LoginResult, error) {
	if err := ValidateCredentialsInput(email, password); err != nil {
		return LoginResult{}, err
	}

	loginEntity, err := s.repository.FindLoginByEmail(ctx, email)
	if err != nil {
		slog.Warn("Login not found", "email", email, "err", err)
		return LoginResult{}, ErrInvalidCredentials
	}

	valid, err := CheckPasswordHash(password, string(loginEntity.Password))
	if err != nil {
		return LoginResult{}, fmt.Errorf("error checking password: %w", err)
	}
	if !valid {
		slog.Warn("Invalid password", "loginID", loginEntity.ID)
		return LoginResult{}, ErrInvalidCredentials
	}

	profileEntity, err := s.repository.GetProfileByUserId(ctx, loginEntity.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to get profile: %w", err)
	}

	profile := profileFromEntity(profileEntity)

	slog.Info("Credentials verified", "loginID", loginEntity.ID, "requiresTwoFactor", profile.TwoFactorEnabled)
	return LoginResult{
		User:              userFromEntity(loginEntity),
		Profile:           profile,
		RequiresTwoFactor: profile.TwoFactorEnabled,
	}, nil
}

// GetEmailByUserId resolves the delivery address for a user. Used by code
// delivery to look up where a passcode should go.
func (s *LoginService) GetEmailByUserId(ctx context.Context, userID uuid.UUID) (string, error) {
	loginEntity, err := s.repository.GetLoginById(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get login: %w", err)
	}
	return loginEntity.Email, nil
}
