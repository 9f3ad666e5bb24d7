package verification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tendant/simple-verify/pkg/twofa"
)

// VerificationChannel identifies how the second factor reaches the user.
type VerificationChannel string

const (
	// ChannelEmailOtp delivers a time-boxed one-time code by email.
	ChannelEmailOtp VerificationChannel = "email_otp"
	// ChannelTotp validates against an enrolled authenticator app.
	ChannelTotp VerificationChannel = "totp"
)

// Channel is one way of completing the second factor for a specific user.
type Channel interface {
	Type() VerificationChannel
	// RequestIfApplicable triggers code delivery on channels that deliver
	// codes. Channels with nothing to deliver treat it as a no-op.
	RequestIfApplicable(ctx context.Context) error
	Verify(ctx context.Context, code string) (bool, error)
}

type emailOtpChannel struct {
	service twofa.TwoFactorService
	userID  uuid.UUID
}

// NewEmailOtpChannel returns the email one-time-code channel for a user.
func NewEmailOtpChannel(service twofa.TwoFactorService, userID uuid.UUID) Channel {
	return &emailOtpChannel{service: service, userID: userID}
}

func (c *emailOtpChannel) Type() VerificationChannel {
	return ChannelEmailOtp
}

func (c *emailOtpChannel) RequestIfApplicable(ctx context.Context) error {
	if err := c.service.RequestEmailCode(ctx, c.userID, twofa.PurposeTwoFactor); err != nil {
		return fmt.Errorf("failed to request email code: %w", err)
	}
	return nil
}

func (c *emailOtpChannel) Verify(ctx context.Context, code string) (bool, error) {
	return c.service.VerifyEmailCode(ctx, c.userID, code, twofa.PurposeTwoFactor)
}

type totpChannel struct {
	service twofa.TwoFactorService
	userID  uuid.UUID
}

// NewTotpChannel returns the authenticator-app channel for a user.
func NewTotpChannel(service twofa.TwoFactorService, userID uuid.UUID) Channel {
	return &totpChannel{service: service, userID: userID}
}

func (c *totpChannel) Type() VerificationChannel {
	return ChannelTotp
}

// RequestIfApplicable is a no-op: authenticator codes are generated on the
// user's device, nothing is delivered.
func (c *totpChannel) RequestIfApplicable(ctx context.Context) error {
	return nil
}

func (c *totpChannel) Verify(ctx context.Context, code string) (bool, error) {
	return c.service.VerifyTotpCode(ctx, c.userID, code)
}
