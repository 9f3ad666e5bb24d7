package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/tendant/simple-verify/pkg/session"
	"github.com/tendant/simple-verify/pkg/utils"
	"github.com/tendant/simple-verify/pkg/verification"
)

// VERIFY_SESSION_COOKIE carries the opaque per-browser verification session id.
const VERIFY_SESSION_COOKIE = "verify_session"

// ControllerFactory builds a fresh verification controller bound to a
// session store.
type ControllerFactory func(store *session.Store) *verification.Controller

type registryEntry struct {
	controller *verification.Controller
	store      *session.Store
}

// Registry hands out one verification controller per browser session,
// keyed by an opaque cookie.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	factory ControllerFactory
}

func NewRegistry(factory ControllerFactory) *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		factory: factory,
	}
}

// ControllerFor returns the controller for the request's session, creating
// a new session and setting its cookie when none exists.
func (reg *Registry) ControllerFor(w http.ResponseWriter, r *http.Request) (*verification.Controller, *session.Store, error) {
	if cookie, err := r.Cookie(VERIFY_SESSION_COOKIE); err == nil && cookie.Value != "" {
		reg.mu.Lock()
		entry, ok := reg.entries[cookie.Value]
		reg.mu.Unlock()
		if ok {
			return entry.controller, entry.store, nil
		}
	}

	sid := utils.GenerateRandomString(32)
	if sid == "" {
		return nil, nil, fmt.Errorf("failed to generate session id")
	}

	store := session.NewStore()
	entry := &registryEntry{
		controller: reg.factory(store),
		store:      store,
	}

	reg.mu.Lock()
	reg.entries[sid] = entry
	reg.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     VERIFY_SESSION_COOKIE,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	return entry.controller, entry.store, nil
}

// Drop removes the request's session entry, if any.
func (reg *Registry) Drop(r *http.Request) {
	cookie, err := r.Cookie(VERIFY_SESSION_COOKIE)
	if err != nil || cookie.Value == "" {
		return
	}
	reg.mu.Lock()
	delete(reg.entries, cookie.Value)
	reg.mu.Unlock()
}
