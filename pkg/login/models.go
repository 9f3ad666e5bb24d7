package login

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity exposed to the rest of the application. The
// credential hash stays inside the repository layer.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
}

// Profile carries the per-user attributes the verification subsystem
// consumes. It is read-only for the verification flow; enrollment and
// settings flows own mutation.
type Profile struct {
	UserID           uuid.UUID `json:"user_id"`
	DisplayName      string    `json:"display_name,omitempty"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	TotpSecret       string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

// TotpEnrolled reports whether the profile has a TOTP secret provisioned.
func (p Profile) TotpEnrolled() bool {
	return p.TotpSecret != ""
}

func userFromEntity(e LoginEntity) User {
	return User{
		ID:            e.ID,
		Email:         e.Email,
		EmailVerified: e.EmailVerified,
	}
}

func profileFromEntity(e ProfileEntity) Profile {
	p := Profile{
		UserID:           e.UserID,
		TwoFactorEnabled: e.TwoFactorEnabled,
		CreatedAt:        e.CreatedAt,
	}
	if e.DisplayNameValid {
		p.DisplayName = e.DisplayName
	}
	if e.TotpSecretValid {
		p.TotpSecret = e.TotpSecret
	}
	return p
}
