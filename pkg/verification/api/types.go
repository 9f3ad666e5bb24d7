package api

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyRequest is the body of POST /2fa/verify.
type VerifyRequest struct {
	Code string `json:"code"`
}

// ChannelRequest is the body of POST /2fa/channel.
type ChannelRequest struct {
	Channel string `json:"channel"`
}

// UserInfo is the public shape of the signed-in user.
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// LoginResponse reports the outcome of a credential check.
type LoginResponse struct {
	State         string    `json:"state"`
	Channel       string    `json:"channel,omitempty"`
	TotpAvailable bool      `json:"totp_available,omitempty"`
	User          *UserInfo `json:"user,omitempty"`
}

// StatusResponse reports the verification session's current position,
// including the countdown on the outstanding code window.
type StatusResponse struct {
	State           string `json:"state"`
	Channel         string `json:"channel,omitempty"`
	RemainingSecs   int    `json:"remaining_secs"`
	Remaining       string `json:"remaining"`
	ResendAvailable bool   `json:"resend_available"`
	TotpAvailable   bool   `json:"totp_available"`
}

// SuccessResponse acknowledges an operation with no payload.
type SuccessResponse struct {
	Result string `json:"result"`
}

// ErrorResponse is the error body shared by all endpoints.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
