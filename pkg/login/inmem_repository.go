package login

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// InMemoryLoginRepository implements LoginRepository using in-memory maps.
// Useful for development, demos and tests; all data is lost on restart.
type InMemoryLoginRepository struct {
	mutex    sync.RWMutex
	logins   map[uuid.UUID]LoginEntity
	byEmail  map[string]uuid.UUID
	profiles map[uuid.UUID]ProfileEntity
}

func NewInMemoryLoginRepository() *InMemoryLoginRepository {
	return &InMemoryLoginRepository{
		logins:   make(map[uuid.UUID]LoginEntity),
		byEmail:  make(map[string]uuid.UUID),
		profiles: make(map[uuid.UUID]ProfileEntity),
	}
}

// SeedLogin adds a login record, keyed by lowercased email.
func (r *InMemoryLoginRepository) SeedLogin(entity LoginEntity) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.logins[entity.ID] = entity
	r.byEmail[strings.ToLower(entity.Email)] = entity.ID
}

// SeedProfile adds a profile record for a previously seeded login.
func (r *InMemoryLoginRepository) SeedProfile(entity ProfileEntity) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.profiles[entity.UserID] = entity
}

func (r *InMemoryLoginRepository) FindLoginByEmail(ctx context.Context, email string) (LoginEntity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return LoginEntity{}, fmt.Errorf("login not found for email")
	}
	return r.logins[id], nil
}

func (r *InMemoryLoginRepository) GetLoginById(ctx context.Context, id uuid.UUID) (LoginEntity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entity, ok := r.logins[id]
	if !ok {
		return LoginEntity{}, fmt.Errorf("login not found: %s", id)
	}
	return entity, nil
}

func (r *InMemoryLoginRepository) GetProfileByUserId(ctx context.Context, userID uuid.UUID) (ProfileEntity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entity, ok := r.profiles[userID]
	if !ok {
		return ProfileEntity{}, fmt.Errorf("profile not found for user: %s", userID)
	}
	return entity, nil
}
