package verification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-verify/pkg/login"
	"github.com/tendant/simple-verify/pkg/session"
	"github.com/tendant/simple-verify/pkg/twofa"
)

// State is the verification session's position in the flow.
type State string

const (
	// StateAwaitingCredentials is the entry state. No user is attached.
	StateAwaitingCredentials State = "awaiting_credentials"
	// StatePendingSecondFactor means credentials passed and a challenge is
	// outstanding.
	StatePendingSecondFactor State = "pending_second_factor"
	// StateVerified is the success terminal state.
	StateVerified State = "verified"
	// StateAbandoned is the alternate terminal state. The session was given
	// up before the second factor completed.
	StateAbandoned State = "abandoned"
)

const (
	// DefaultChallengeTTL is how long a delivered code stays valid.
	DefaultChallengeTTL = 300 * time.Second
	// DefaultResendCooldown is the minimum gap between code deliveries.
	DefaultResendCooldown = 60 * time.Second
	// CodeLength is the full length a code must have before it is submitted.
	CodeLength = 6
)

// Controller drives one verification session from credentials through the
// optional second factor. All transitions are serialized by an internal
// mutex; the lock is released during collaborator verify calls so the
// session can be abandoned while a verification is in flight.
type Controller struct {
	loginService *login.LoginService
	twoFactor    twofa.TwoFactorService
	sessions     *session.Store
	clock        Clock

	challengeTTL    time.Duration
	resendCooldown  time.Duration
	tickInterval    time.Duration
	onVerifySuccess func(login.User)
	onTick          func(remaining time.Duration)

	mu             sync.Mutex
	state          State
	user           login.User
	profile        login.Profile
	challenge      *PendingChallenge
	verifyInFlight bool
	successFired   bool
	stopTick       chan struct{}
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithClock substitutes the time source.
func WithClock(clock Clock) ControllerOption {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithChallengeTTL overrides the code validity window.
func WithChallengeTTL(ttl time.Duration) ControllerOption {
	return func(c *Controller) {
		c.challengeTTL = ttl
	}
}

// WithResendCooldown overrides the resend cooldown.
func WithResendCooldown(cooldown time.Duration) ControllerOption {
	return func(c *Controller) {
		c.resendCooldown = cooldown
	}
}

// OnVerifySuccess registers a callback fired exactly once when the session
// reaches Verified.
func OnVerifySuccess(fn func(login.User)) ControllerOption {
	return func(c *Controller) {
		c.onVerifySuccess = fn
	}
}

// OnTick registers an observer for the countdown. Informational only; the
// remaining time is always derived from the challenge expiry, not from tick
// counting.
func OnTick(fn func(remaining time.Duration)) ControllerOption {
	return func(c *Controller) {
		c.onTick = fn
	}
}

func NewController(loginService *login.LoginService, twoFactor twofa.TwoFactorService, sessions *session.Store, opts ...ControllerOption) *Controller {
	c := &Controller{
		loginService:   loginService,
		twoFactor:      twoFactor,
		sessions:       sessions,
		clock:          SystemClock(),
		challengeTTL:   DefaultChallengeTTL,
		resendCooldown: DefaultResendCooldown,
		tickInterval:   time.Second,
		state:          StateAwaitingCredentials,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the session's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ActiveChannel returns the channel of the outstanding challenge, or the
// empty value when none is outstanding.
func (c *Controller) ActiveChannel() VerificationChannel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.challenge == nil {
		return ""
	}
	return c.challenge.Channel
}

// Challenge returns a copy of the outstanding challenge.
func (c *Controller) Challenge() (PendingChallenge, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.challenge == nil {
		return PendingChallenge{}, false
	}
	return *c.challenge, true
}

// User returns the credential-verified user attached to the session.
func (c *Controller) User() (login.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAwaitingCredentials || c.state == StateAbandoned {
		return login.User{}, false
	}
	return c.user, true
}

// TotpAvailable reports whether the attached profile can use the
// authenticator channel.
func (c *Controller) TotpAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateAwaitingCredentials && c.profile.TotpEnrolled()
}

// ResendAvailable reports whether a resend would be accepted right now.
func (c *Controller) ResendAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePendingSecondFactor || c.challenge == nil {
		return false
	}
	if c.challenge.Channel != ChannelEmailOtp {
		return false
	}
	return c.clock.Now().Sub(c.challenge.IssuedAt) >= c.resendCooldown
}

// SignIn runs the primary credential check and, when the account requires a
// second factor, opens a challenge on the preferred channel. The session
// goes straight to Verified when no second factor is required.
func (c *Controller) SignIn(ctx context.Context, email, password string) (State, error) {
	if err := login.ValidateCredentialsInput(email, password); err != nil {
		return c.State(), err
	}

	result, err := c.loginService.VerifyCredentials(ctx, email, password)
	if err != nil {
		return c.State(), err
	}

	c.mu.Lock()
	c.resetLocked()
	c.user = result.User
	c.profile = result.Profile

	if !result.RequiresTwoFactor {
		c.state = StateVerified
		c.sessions.SetAuthenticated(result.User, result.Profile)
		fire := c.takeSuccessCallbackLocked()
		c.mu.Unlock()
		if fire != nil {
			fire()
		}
		slog.Info("Session verified without second factor", "userID", result.User.ID)
		return StateVerified, nil
	}

	channel := ChannelEmailOtp
	if result.Profile.TotpEnrolled() {
		channel = ChannelTotp
	}

	now := c.clock.Now()
	c.challenge = &PendingChallenge{
		ID:        uuid.New(),
		UserID:    result.User.ID,
		Channel:   channel,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.challengeTTL),
	}
	c.state = StatePendingSecondFactor
	c.sessions.SetPending(result.User, result.Profile)
	c.startTickerLocked()
	ch := c.channelForLocked(channel)
	c.mu.Unlock()

	// Code delivery happens exactly once at challenge creation, and only on
	// channels that deliver anything.
	if err := ch.RequestIfApplicable(ctx); err != nil {
		slog.Error("Failed to deliver verification code", "userID", result.User.ID, "channel", channel, "err", err)
		return StatePendingSecondFactor, ErrDeliveryFailure
	}

	slog.Info("Second factor challenge opened", "userID", result.User.ID, "channel", channel)
	return StatePendingSecondFactor, nil
}

// Submit verifies a second-factor code. A wrong or expired code is a
// recoverable failure: the state and the challenge timestamps are untouched
// and the user may retry without limit. While one verification is in flight
// further submissions are ignored.
func (c *Controller) Submit(ctx context.Context, code string) (State, error) {
	c.mu.Lock()
	if c.state != StatePendingSecondFactor || c.challenge == nil {
		state := c.state
		c.mu.Unlock()
		return state, ErrNoPendingVerification
	}
	if len(code) < CodeLength {
		c.mu.Unlock()
		return StatePendingSecondFactor, ErrCodeTooShort
	}
	if c.verifyInFlight {
		c.mu.Unlock()
		return StatePendingSecondFactor, nil
	}

	c.verifyInFlight = true
	challengeID := c.challenge.ID
	ch := c.channelForLocked(c.challenge.Channel)
	c.mu.Unlock()

	valid, err := ch.Verify(ctx, code)

	c.mu.Lock()
	c.verifyInFlight = false

	// The session may have been abandoned or replaced while the verify call
	// was out. A stale result must not complete it.
	if c.state != StatePendingSecondFactor || c.challenge == nil || c.challenge.ID != challengeID {
		state := c.state
		c.mu.Unlock()
		return state, ErrNoPendingVerification
	}

	if err != nil {
		userID := c.user.ID
		c.mu.Unlock()
		slog.Warn("Verification check failed", "userID", userID, "err", err)
		return StatePendingSecondFactor, ErrInvalidOrExpiredCode
	}
	if !valid {
		c.mu.Unlock()
		return StatePendingSecondFactor, ErrInvalidOrExpiredCode
	}

	c.state = StateVerified
	c.challenge = nil
	c.stopTickerLocked()
	c.sessions.Promote()
	fire := c.takeSuccessCallbackLocked()
	user := c.user
	c.mu.Unlock()

	if fire != nil {
		fire()
	}
	slog.Info("Second factor verified", "userID", user.ID)
	return StateVerified, nil
}

// Resend requests a fresh email code for the outstanding challenge. It is
// rejected locally, with no collaborator call, while the cooldown since the
// last issuance has not elapsed. Only the email channel delivers codes.
func (c *Controller) Resend(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StatePendingSecondFactor || c.challenge == nil {
		c.mu.Unlock()
		return ErrNoPendingVerification
	}
	if c.challenge.Channel != ChannelEmailOtp {
		c.mu.Unlock()
		return ErrChannelUnavailable
	}
	if c.clock.Now().Sub(c.challenge.IssuedAt) < c.resendCooldown {
		c.mu.Unlock()
		return ErrResendCooldown
	}

	ch := c.channelForLocked(c.challenge.Channel)
	challengeID := c.challenge.ID
	c.mu.Unlock()

	if err := ch.RequestIfApplicable(ctx); err != nil {
		slog.Error("Failed to resend verification code", "err", err)
		return ErrDeliveryFailure
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePendingSecondFactor || c.challenge == nil || c.challenge.ID != challengeID {
		return ErrNoPendingVerification
	}
	now := c.clock.Now()
	c.challenge.IssuedAt = now
	c.challenge.ExpiresAt = now.Add(c.challengeTTL)
	slog.Info("Verification code resent", "userID", c.user.ID)
	return nil
}

// SelectChannel switches the outstanding challenge to another channel.
// Switching never triggers a code delivery and never invalidates the other
// channel's outstanding code. The authenticator channel is selectable only
// for profiles with an enrolled secret.
func (c *Controller) SelectChannel(channel VerificationChannel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePendingSecondFactor || c.challenge == nil {
		return ErrNoPendingVerification
	}
	switch channel {
	case ChannelEmailOtp:
	case ChannelTotp:
		if !c.profile.TotpEnrolled() {
			return ErrChannelUnavailable
		}
	default:
		return ErrChannelUnavailable
	}
	if c.challenge.Channel == channel {
		return nil
	}
	c.challenge.Channel = channel
	slog.Info("Verification channel switched", "userID", c.user.ID, "channel", channel)
	return nil
}

// Abandon gives up an in-progress verification. The challenge is destroyed
// and the session can never reach Verified afterwards; any code already
// delivered is left to expire on its own.
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateVerified || c.state == StateAbandoned {
		return
	}
	c.stopTickerLocked()
	c.challenge = nil
	c.state = StateAbandoned
	c.sessions.Clear()
	slog.Info("Verification abandoned", "userID", c.user.ID)
}

// Reset returns the session to the entry state so a new sign-in can begin.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.sessions.Clear()
}

// Remaining returns the time left on the outstanding challenge, never
// negative. Zero once the window has closed or when nothing is outstanding.
func (c *Controller) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.challenge == nil {
		return 0
	}
	return c.challenge.Remaining(c.clock.Now())
}

// FormatRemaining renders the countdown as m:ss, e.g. "5:00" or "0:09".
func (c *Controller) FormatRemaining() string {
	return FormatCountdown(c.Remaining())
}

// FormatCountdown renders a duration as m:ss with seconds zero-padded.
func FormatCountdown(d time.Duration) string {
	seconds := int(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// resetLocked clears all per-attempt state. Caller must hold the lock.
func (c *Controller) resetLocked() {
	c.stopTickerLocked()
	c.state = StateAwaitingCredentials
	c.user = login.User{}
	c.profile = login.Profile{}
	c.challenge = nil
	c.verifyInFlight = false
	c.successFired = false
}

func (c *Controller) channelForLocked(channel VerificationChannel) Channel {
	if channel == ChannelTotp {
		return NewTotpChannel(c.twoFactor, c.user.ID)
	}
	return NewEmailOtpChannel(c.twoFactor, c.user.ID)
}

// takeSuccessCallbackLocked arms the success callback for firing, at most
// once per attempt. Caller must hold the lock; the returned func, if any,
// must be invoked after releasing it.
func (c *Controller) takeSuccessCallbackLocked() func() {
	if c.onVerifySuccess == nil || c.successFired {
		return nil
	}
	c.successFired = true
	user := c.user
	fn := c.onVerifySuccess
	return func() { fn(user) }
}

// startTickerLocked launches the countdown observer goroutine. Caller must
// hold the lock. The goroutine only reports; every state decision derives
// remaining time from the challenge expiry directly.
func (c *Controller) startTickerLocked() {
	c.stopTickerLocked()
	stop := make(chan struct{})
	c.stopTick = stop
	if c.onTick == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(c.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.onTick(c.Remaining())
			}
		}
	}()
}

// stopTickerLocked stops the countdown goroutine if one is running. Caller
// must hold the lock.
func (c *Controller) stopTickerLocked() {
	if c.stopTick != nil {
		close(c.stopTick)
		c.stopTick = nil
	}
}
