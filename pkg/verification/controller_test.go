package verification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-verify/pkg/errors"
	"github.com/tendant/simple-verify/pkg/login"
	"github.com/tendant/simple-verify/pkg/session"
)

const (
	testEmail    = "user@example.com"
	testPassword = "pass123456"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeTwoFactor stands in for the passcode collaborator. Verify calls can be
// made to block so in-flight behavior is observable.
type fakeTwoFactor struct {
	mu            sync.Mutex
	emailRequests int
	emailVerifies int
	totpVerifies  int
	emailValid    bool
	totpValid     bool
	requestErr    error
	verifyGate    chan struct{}
}

func (f *fakeTwoFactor) RequestEmailCode(ctx context.Context, userID uuid.UUID, purpose string) error {
	f.mu.Lock()
	f.emailRequests++
	err := f.requestErr
	f.mu.Unlock()
	return err
}

func (f *fakeTwoFactor) VerifyEmailCode(ctx context.Context, userID uuid.UUID, code, purpose string) (bool, error) {
	f.mu.Lock()
	f.emailVerifies++
	gate := f.verifyGate
	valid := f.emailValid
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return valid, nil
}

func (f *fakeTwoFactor) VerifyTotpCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totpVerifies++
	return f.totpValid, nil
}

func (f *fakeTwoFactor) EmailRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emailRequests
}

func (f *fakeTwoFactor) EmailVerifies() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emailVerifies
}

type testFixture struct {
	controller *Controller
	twoFactor  *fakeTwoFactor
	sessions   *session.Store
	clock      *fakeClock
	successes  *int
}

func newFixture(t *testing.T, twoFactorEnabled, totpEnrolled bool) *testFixture {
	t.Helper()

	hash, err := login.HashPassword(testPassword)
	require.NoError(t, err)

	repo := login.NewInMemoryLoginRepository()
	userID := uuid.New()
	repo.SeedLogin(login.LoginEntity{
		ID:            userID,
		Email:         testEmail,
		EmailVerified: true,
		Password:      []byte(hash),
	})
	profile := login.ProfileEntity{
		UserID:           userID,
		TwoFactorEnabled: twoFactorEnabled,
	}
	if totpEnrolled {
		profile.TotpSecret = "JBSWY3DPEHPK3PXP"
		profile.TotpSecretValid = true
	}
	repo.SeedProfile(profile)

	clock := newFakeClock()
	twoFactor := &fakeTwoFactor{emailValid: true, totpValid: true}
	sessions := session.NewStore()
	successes := 0

	controller := NewController(
		login.NewLoginService(repo),
		twoFactor,
		sessions,
		WithClock(clock),
		OnVerifySuccess(func(login.User) { successes++ }),
	)

	return &testFixture{
		controller: controller,
		twoFactor:  twoFactor,
		sessions:   sessions,
		clock:      clock,
		successes:  &successes,
	}
}

func (f *testFixture) signIn(t *testing.T) State {
	t.Helper()
	state, err := f.controller.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	return state
}

func TestSignIn_NoSecondFactor_GoesStraightToVerified(t *testing.T) {
	f := newFixture(t, false, false)

	state := f.signIn(t)

	assert.Equal(t, StateVerified, state)
	assert.True(t, f.sessions.IsAuthenticated())
	assert.Equal(t, 0, f.twoFactor.EmailRequests(), "no code delivery without a second factor")
	assert.Equal(t, 1, *f.successes)
	_, outstanding := f.controller.Challenge()
	assert.False(t, outstanding)
}

func TestSignIn_EmailChannel_RequestsCodeExactlyOnce(t *testing.T) {
	f := newFixture(t, true, false)

	state := f.signIn(t)

	assert.Equal(t, StatePendingSecondFactor, state)
	assert.Equal(t, ChannelEmailOtp, f.controller.ActiveChannel())
	assert.Equal(t, 1, f.twoFactor.EmailRequests())
	assert.False(t, f.sessions.IsAuthenticated())
	assert.Equal(t, session.PendingSecondFactor, f.sessions.Status())
	assert.Equal(t, 0, *f.successes)
}

func TestSignIn_TotpEnrolled_PrefersAuthenticatorWithoutDelivery(t *testing.T) {
	f := newFixture(t, true, true)

	state := f.signIn(t)

	assert.Equal(t, StatePendingSecondFactor, state)
	assert.Equal(t, ChannelTotp, f.controller.ActiveChannel())
	assert.Equal(t, 0, f.twoFactor.EmailRequests())
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	f := newFixture(t, true, false)

	state, err := f.controller.SignIn(context.Background(), testEmail, "wrong-password")

	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidCredentials))
	assert.Equal(t, StateAwaitingCredentials, state)
	assert.Equal(t, 0, f.twoFactor.EmailRequests())
	assert.False(t, f.sessions.IsAuthenticated())
}

func TestSignIn_LocalValidation(t *testing.T) {
	f := newFixture(t, true, false)

	_, err := f.controller.SignIn(context.Background(), "not-an-email", testPassword)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidFormat))

	_, err = f.controller.SignIn(context.Background(), testEmail, "abc")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValueTooShort))

	assert.Equal(t, StateAwaitingCredentials, f.controller.State())
}

func TestSignIn_DeliveryFailureStaysPending(t *testing.T) {
	f := newFixture(t, true, false)
	f.twoFactor.requestErr = assert.AnError

	state, err := f.controller.SignIn(context.Background(), testEmail, testPassword)

	assert.True(t, errors.IsCode(err, errors.ErrCodeDeliveryFailure))
	assert.Equal(t, StatePendingSecondFactor, state)
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture(t, true, false)
	f.signIn(t)

	state, err := f.controller.Submit(context.Background(), "123456")

	require.NoError(t, err)
	assert.Equal(t, StateVerified, state)
	assert.True(t, f.sessions.IsAuthenticated())
	assert.Equal(t, 1, *f.successes)
	_, outstanding := f.controller.Challenge()
	assert.False(t, outstanding)
}

func TestSubmit_WrongCode_IsRecoverableSelfLoop(t *testing.T) {
	f := newFixture(t, true, false)
	f.signIn(t)
	before, _ := f.controller.Challenge()

	f.twoFactor.emailValid = false
	for i := 0; i < 3; i++ {
		state, err := f.controller.Submit(context.Background(), "000000")
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidOrExpiredCode))
		assert.Equal(t, StatePendingSecondFactor, state)
	}

	after, _ := f.controller.Challenge()
	assert.Equal(t, before.IssuedAt, after.IssuedAt, "failed attempts leave timestamps untouched")
	assert.Equal(t, before.ExpiresAt, after.ExpiresAt)

	// Retries are unlimited; a correct code still succeeds.
	f.twoFactor.emailValid = true
	state, err := f.controller.Submit(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, StateVerified, state)
}

func TestSubmit_ShortCodeRejectedLocally(t *testing.T) {
	f := newFixture(t, true, false)
	f.signIn(t)

	state, err := f.controller.Submit(context.Background(), "123")

	assert.True(t, errors.IsCode(err, errors.ErrCodeValueTooShort))
	assert.Equal(t, StatePendingSecondFactor, state)
	assert.Equal(t, 0, f.twoFactor.EmailVerifies(), "short input never reaches the collaborator")
}

func TestSubmit_WithoutChallenge(t *testing.T) {
	f := newFixture(t, true, false)

	_, err := f.controller.Submit(context.Background(), "123456")
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))
}

func TestSubmit_SecondSubmissionWhileInFlightIsIgnored(t *testing.T) {
	f := newFixture(t, true, false)
	f.signIn(t)

	gate := make(chan struct{})
	f.twoFactor.mu.Lock()
	f.twoFactor.verifyGate = gate
	f.twoFactor.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		state, err := f.controller.Submit(context.Background(), "123456")
		assert.NoError(t, err)
		assert.Equal(t, StateVerified, state)
	}()

	// Wait for the first submission to reach the collaborator.
	require.Eventually(t, func() bool {
		return f.twoFactor.EmailVerifies() == 1
	}, time.Second, 5*time.Millisecond)

	state, err := f.controller.Submit(context.Background(), "654321")
	assert.NoError(t, err)
	assert.Equal(t, StatePendingSecondFactor, state)
	assert.Equal(t, 1, f.twoFactor.EmailVerifies(), "duplicate submission makes no collaborator call")

	close(gate)
	<-done
	assert.Equal(t, 1, *f.successes)
}

func TestAbandon_DuringVerify_NeverReachesVerified(t *testing.T) {
	f := newFixture(t, true, false)
	f.signIn(t)

	gate := make(chan struct{})
	f.twoFactor.mu.Lock()
	f.twoFactor.verifyGate = gate
	f.twoFactor.mu.Unlock()

	result := make(chan State, 1)
	go func() {
		state, _ := f.controller.Submit(context.Background(), "123456")
		result <- state
	}()

	require.Eventually(t, func() bool {
		return f.twoFactor.EmailVerifies() == 1
	}, time.Second, 5*time.Millisecond)

	f.controller.Abandon()
	close(gate)

	// The in-flight result would have been valid, but the challenge is gone.
	assert.Equal(t, StateAbandoned, <-result)
	assert.Equal(t, StateAbandoned, f.controller.State())
	assert.False(t, f.sessions.IsAuthenticated())
	assert.Equal(t, 0, *f.successes)
}

func TestResend_CooldownRejectedLocally(t *testing.T) {
	f := newFixture(t, true, false)
	f.signIn(t)
	require.Equal(t, 1, f.twoFactor.EmailRequests())

	f.clock.Advance(30 * time.Second)
	err := f.controller.Resend(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeResendCooldown))
	assert.Equal(t, 1, f.twoFactor.EmailRequests(), "cooldown rejection makes no collaborator call")

	f.clock.Advance(30 * time.Second)
	err = f.controller.Resend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, f.twoFactor.EmailRequests())
	assert.Equal(t, DefaultChallengeTTL, f.controller.Remaining(), "resend restarts the code window")
}

func TestResend_NotAvailableOnAuthenticatorChannel(t *testing.T) {
	f := newFixture(t, true, true)
	f.signIn(t)
	require.Equal(t, ChannelTotp, f.controller.ActiveChannel())

	f.clock.Advance(2 * time.Minute)
	err := f.controller.Resend(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeChannelUnavailable))
	assert.Equal(t, 0, f.twoFactor.EmailRequests())
}

func TestSelectChannel_TotpRequiresEnrollment(t *testing.T) {
	f := newFixture(t, true, false)
	f.signIn(t)

	err := f.controller.SelectChannel(ChannelTotp)
	assert.True(t, errors.IsCode(err, errors.ErrCodeChannelUnavailable))
	assert.Equal(t, ChannelEmailOtp, f.controller.ActiveChannel())
}

func TestSelectChannel_SwitchingNeverTriggersDelivery(t *testing.T) {
	f := newFixture(t, true, true)
	f.signIn(t)
	require.Equal(t, ChannelTotp, f.controller.ActiveChannel())
	require.Equal(t, 0, f.twoFactor.EmailRequests())

	require.NoError(t, f.controller.SelectChannel(ChannelEmailOtp))
	assert.Equal(t, ChannelEmailOtp, f.controller.ActiveChannel())
	assert.Equal(t, 0, f.twoFactor.EmailRequests(), "switching to email does not deliver a code")

	require.NoError(t, f.controller.SelectChannel(ChannelTotp))
	assert.Equal(t, ChannelTotp, f.controller.ActiveChannel())
}

func TestCountdown_DerivedFromExpiryAndNeverNegative(t *testing.T) {
	f := newFixture(t, true, false)
	f.signIn(t)

	assert.Equal(t, DefaultChallengeTTL, f.controller.Remaining())
	assert.Equal(t, "5:00", f.controller.FormatRemaining())

	f.clock.Advance(291 * time.Second)
	assert.Equal(t, "0:09", f.controller.FormatRemaining())

	f.clock.Advance(time.Minute)
	assert.Equal(t, time.Duration(0), f.controller.Remaining())
	assert.Equal(t, "0:00", f.controller.FormatRemaining())

	// Reaching zero neither transitions state nor blocks submission. Expiry
	// is enforced where the code is validated.
	assert.Equal(t, StatePendingSecondFactor, f.controller.State())
	_, err := f.controller.Submit(context.Background(), "123456")
	assert.NoError(t, err)
	assert.Equal(t, 1, f.twoFactor.EmailVerifies())
}

func TestAbandon_DestroysChallengeAndClearsSession(t *testing.T) {
	f := newFixture(t, true, false)
	f.signIn(t)

	f.controller.Abandon()

	assert.Equal(t, StateAbandoned, f.controller.State())
	assert.Equal(t, session.Anonymous, f.sessions.Status())
	assert.Equal(t, time.Duration(0), f.controller.Remaining())

	_, err := f.controller.Submit(context.Background(), "123456")
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))
}

func TestReset_ReturnsToEntryState(t *testing.T) {
	f := newFixture(t, true, false)
	f.signIn(t)

	f.controller.Reset()

	assert.Equal(t, StateAwaitingCredentials, f.controller.State())
	_, attached := f.controller.User()
	assert.False(t, attached)

	// A fresh sign-in works after a reset and fires its own delivery.
	state := f.signIn(t)
	assert.Equal(t, StatePendingSecondFactor, state)
	assert.Equal(t, 2, f.twoFactor.EmailRequests())
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "5:00", FormatCountdown(300*time.Second))
	assert.Equal(t, "4:59", FormatCountdown(299*time.Second))
	assert.Equal(t, "1:05", FormatCountdown(65*time.Second))
	assert.Equal(t, "0:09", FormatCountdown(9*time.Second))
	assert.Equal(t, "0:00", FormatCountdown(0))
	assert.Equal(t, "0:00", FormatCountdown(-3*time.Second))
}
