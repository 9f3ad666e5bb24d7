package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tendant/simple-verify/pkg/login"
)

func testUser() (login.User, login.Profile) {
	id := uuid.New()
	return login.User{ID: id, Email: "user@example.com", EmailVerified: true},
		login.Profile{UserID: id, TwoFactorEnabled: true}
}

func TestStore_StartsAnonymous(t *testing.T) {
	store := NewStore()
	assert.Equal(t, Anonymous, store.Status())
	assert.False(t, store.IsAuthenticated())
}

func TestStore_PendingIsNotAuthenticated(t *testing.T) {
	store := NewStore()
	user, profile := testUser()

	store.SetPending(user, profile)

	assert.Equal(t, PendingSecondFactor, store.Status())
	assert.False(t, store.IsAuthenticated())

	got, _, status := store.Current()
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, PendingSecondFactor, status)
}

func TestStore_PromotePending(t *testing.T) {
	store := NewStore()
	user, profile := testUser()
	store.SetPending(user, profile)

	assert.True(t, store.Promote())
	assert.True(t, store.IsAuthenticated())
}

func TestStore_PromoteRequiresPending(t *testing.T) {
	store := NewStore()
	assert.False(t, store.Promote())
	assert.False(t, store.IsAuthenticated())

	user, profile := testUser()
	store.SetAuthenticated(user, profile)
	assert.False(t, store.Promote(), "already authenticated")
	assert.True(t, store.IsAuthenticated())
}

func TestStore_SetAuthenticatedDirect(t *testing.T) {
	store := NewStore()
	user, profile := testUser()

	store.SetAuthenticated(user, profile)

	assert.True(t, store.IsAuthenticated())
}

func TestStore_Clear(t *testing.T) {
	store := NewStore()
	user, profile := testUser()
	store.SetAuthenticated(user, profile)

	store.Clear()

	assert.Equal(t, Anonymous, store.Status())
	assert.False(t, store.IsAuthenticated())
	got, _, _ := store.Current()
	assert.Equal(t, uuid.Nil, got.ID)
}
