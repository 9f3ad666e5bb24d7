package login

import (
	"github.com/tendant/simple-verify/pkg/errors"
)

// Errors returned by the credential verifier. Validation failures are local
// and never reach the repository; invalid credentials never disclose whether
// the email or the password was wrong.
var (
	ErrInvalidEmail       = errors.New(errors.ErrCodeInvalidFormat, "please enter a valid email address")
	ErrPasswordTooShort   = errors.New(errors.ErrCodeValueTooShort, "password must be at least 6 characters")
	ErrInvalidCredentials = errors.New(errors.ErrCodeInvalidCredentials, "invalid email or password")
)
