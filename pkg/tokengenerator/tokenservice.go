package tokengenerator

import (
	"net/http"
	"time"
)

const ACCESS_TOKEN_NAME = "access_token"

// DefaultAccessTokenExpiry is the access token lifetime after the second
// factor succeeds.
const DefaultAccessTokenExpiry = 15 * time.Minute

// TokenService issues access tokens once a session is fully verified and
// manages the token cookie.
type TokenService struct {
	TokenGenerator    TokenGenerator
	CookieSetter      CookieSetter
	AccessTokenExpiry time.Duration
}

// TokenServiceOption configures a TokenService
type TokenServiceOption func(*TokenService)

// WithAccessTokenExpiry sets the access token expiry duration
func WithAccessTokenExpiry(expiry time.Duration) TokenServiceOption {
	return func(ts *TokenService) {
		ts.AccessTokenExpiry = expiry
	}
}

// WithCookieSetter overrides the cookie setter
func WithCookieSetter(cookieSetter CookieSetter) TokenServiceOption {
	return func(ts *TokenService) {
		ts.CookieSetter = cookieSetter
	}
}

// NewTokenService creates a new TokenService
func NewTokenService(tokenGenerator TokenGenerator, options ...TokenServiceOption) *TokenService {
	ts := &TokenService{
		TokenGenerator:    tokenGenerator,
		CookieSetter:      NewCookieSetter(true, true),
		AccessTokenExpiry: DefaultAccessTokenExpiry,
	}

	for _, option := range options {
		option(ts)
	}

	return ts
}

// IssueAccessToken generates an access token for the given subject.
func (ts *TokenService) IssueAccessToken(subject string, extraClaims map[string]interface{}) (string, time.Time, error) {
	return ts.TokenGenerator.GenerateToken(subject, ts.AccessTokenExpiry, extraClaims)
}

// IssueAndSetAccessToken generates an access token and sets it as a cookie.
func (ts *TokenService) IssueAndSetAccessToken(w http.ResponseWriter, subject string, extraClaims map[string]interface{}) (string, error) {
	token, expiry, err := ts.IssueAccessToken(subject, extraClaims)
	if err != nil {
		return "", err
	}
	if err := ts.CookieSetter.SetCookie(w, ACCESS_TOKEN_NAME, token, expiry); err != nil {
		return "", err
	}
	return token, nil
}

// ClearAccessToken removes the access token cookie.
func (ts *TokenService) ClearAccessToken(w http.ResponseWriter) error {
	return ts.CookieSetter.ClearCookie(w, ACCESS_TOKEN_NAME)
}
