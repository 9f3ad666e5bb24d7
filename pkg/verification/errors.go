package verification

import (
	"github.com/tendant/simple-verify/pkg/errors"
)

var (
	// ErrCodeTooShort rejects submissions before any collaborator call.
	ErrCodeTooShort = errors.New(errors.ErrCodeValueTooShort, "verification code must be 6 characters")

	// ErrInvalidOrExpiredCode covers wrong and expired codes alike. The two
	// cases are never distinguished to the caller.
	ErrInvalidOrExpiredCode = errors.New(errors.ErrCodeInvalidOrExpiredCode, "invalid or expired verification code")

	// ErrChannelUnavailable is returned when selecting the authenticator
	// channel for a profile with no enrolled secret, or when an operation
	// does not apply to the active channel.
	ErrChannelUnavailable = errors.New(errors.ErrCodeChannelUnavailable, "verification channel is not available")

	// ErrDeliveryFailure means the code could not be delivered. The session
	// state is unchanged and a retry is subject to the resend cooldown.
	ErrDeliveryFailure = errors.New(errors.ErrCodeDeliveryFailure, "failed to deliver verification code")

	// ErrResendCooldown is returned when a resend is requested before the
	// cooldown window has elapsed.
	ErrResendCooldown = errors.New(errors.ErrCodeResendCooldown, "please wait before requesting another code")

	// ErrNoPendingVerification is returned for second-factor operations when
	// no challenge is outstanding.
	ErrNoPendingVerification = errors.New(errors.ErrCodeConflict, "no verification in progress")
)
