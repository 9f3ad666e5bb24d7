package verification

import (
	"time"

	"github.com/google/uuid"
)

// PendingChallenge is the outstanding second-factor challenge for a session.
// Timestamps drive the countdown and the resend cooldown; the ID guards
// against stale verify results landing after the challenge is gone.
type PendingChallenge struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Channel   VerificationChannel
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Remaining returns the time left before the challenge's code window closes,
// never negative. Reaching zero is informational: submission stays open and
// expiry is enforced where the code is validated.
func (c PendingChallenge) Remaining(now time.Time) time.Duration {
	remaining := c.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
