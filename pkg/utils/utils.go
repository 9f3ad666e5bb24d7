package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
)

// GenerateRandomString returns a URL-safe random string of the given byte length.
func GenerateRandomString(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// MaskEmail masks the local part of an email address for display,
// e.g. "johndoe@example.com" becomes "jo***@example.com".
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return email
	}
	local := email[:at]
	if len(local) <= 2 {
		return local[:1] + "***" + email[at:]
	}
	return local[:2] + "***" + email[at:]
}
