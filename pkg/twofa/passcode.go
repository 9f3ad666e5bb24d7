package twofa

import (
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	TOTP_ISSUER = "simple-verify"
	SKEW        = 1
	// EMAIL_CODE_PERIOD matches the email code time-to-live in seconds.
	EMAIL_CODE_PERIOD = 300
)

// GenerateOtpSecret generates a fresh TOTP secret for the given account.
func GenerateOtpSecret(accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      TOTP_ISSUER,
		AccountName: accountName,
	})
	if err != nil {
		slog.Error("Failed to generate otp secret", "accountName", accountName, "issuer", TOTP_ISSUER, "error", err)
		return "", err
	}
	return key.Secret(), nil
}

// GenerateEmailPasscode derives the current email passcode from a secret
// using the long email-code period.
func GenerateEmailPasscode(secret string) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    EMAIL_CODE_PERIOD,
		Skew:      SKEW,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to generate email passcode", "error", err)
		return "", err
	}
	return code, nil
}

// ValidateEmailPasscode checks an email passcode against its secret.
func ValidateEmailPasscode(secret, passcode string) (bool, error) {
	valid, err := totp.ValidateCustom(passcode, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    EMAIL_CODE_PERIOD,
		Skew:      SKEW,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to validate email passcode", "error", err)
		return false, err
	}
	return valid, nil
}

// ValidateTotpPasscode checks an authenticator-app code with the standard
// 30-second period and one window of drift tolerance.
func ValidateTotpPasscode(secret, passcode string) bool {
	return totp.Validate(passcode, secret)
}
