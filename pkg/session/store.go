package session

import (
	"sync"

	"github.com/tendant/simple-verify/pkg/login"
)

// Status describes how far a stored session has progressed through
// authentication.
type Status string

const (
	// Anonymous means no credential check has succeeded.
	Anonymous Status = "anonymous"
	// PendingSecondFactor means credentials are verified but a second
	// factor is still outstanding.
	PendingSecondFactor Status = "pending_second_factor"
	// Authenticated means the session is fully verified.
	Authenticated Status = "authenticated"
)

// Store holds the logically current user and profile for one session. A
// session sitting in PendingSecondFactor is not authenticated: IsAuthenticated
// stays false until the second factor succeeds and the session is promoted.
type Store struct {
	mu      sync.RWMutex
	user    login.User
	profile login.Profile
	status  Status
}

func NewStore() *Store {
	return &Store{status: Anonymous}
}

// SetPending records a credential-verified user awaiting a second factor.
func (s *Store) SetPending(user login.User, profile login.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.profile = profile
	s.status = PendingSecondFactor
}

// SetAuthenticated records a fully verified user. Used when no second factor
// is required.
func (s *Store) SetAuthenticated(user login.User, profile login.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.profile = profile
	s.status = Authenticated
}

// Promote upgrades a pending session to authenticated. Promoting a session
// that is not pending is a no-op and reports false.
func (s *Store) Promote() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != PendingSecondFactor {
		return false
	}
	s.status = Authenticated
	return true
}

// Clear resets the session to anonymous, dropping the stored user.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = login.User{}
	s.profile = login.Profile{}
	s.status = Anonymous
}

// Current returns the stored user, profile and status.
func (s *Store) Current() (login.User, login.Profile, Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.profile, s.status
}

// Status returns the session's current status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// IsAuthenticated reports whether the session has fully completed
// authentication, including any required second factor.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == Authenticated
}
