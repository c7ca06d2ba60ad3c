package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository keeps users and sessions in process-local maps, for
// local development and tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]User
	byEmail  map[string]uuid.UUID
	sessions map[string]Session
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:    make(map[uuid.UUID]User),
		byEmail:  make(map[string]uuid.UUID),
		sessions: make(map[string]Session),
	}
}

// UpsertUserByEmail mirrors the Postgres ON CONFLICT (email) semantics: name
// is only written on insert, the identity fields on every call.
func (r *InMemoryRepository) UpsertUserByEmail(_ context.Context, params UpsertUserParams) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(params.Email)
	googleID := params.GoogleID

	if id, ok := r.byEmail[key]; ok {
		user := r.users[id]
		user.GoogleID = &googleID
		user.AvatarURL = params.AvatarURL
		user.UpdatedAt = params.Now
		user.LastLoginAt = params.Now
		r.users[id] = user
		return &user, nil
	}

	user := User{
		ID:          uuid.New(),
		Email:       params.Email,
		GoogleID:    &googleID,
		Name:        params.Name,
		AvatarURL:   params.AvatarURL,
		CreatedAt:   params.Now,
		UpdatedAt:   params.Now,
		LastLoginAt: params.Now,
	}
	r.users[user.ID] = user
	r.byEmail[key] = user.ID
	return &user, nil
}

// FindSession returns the session and its user, or nil, nil when either is
// missing.
func (r *InMemoryRepository) FindSession(_ context.Context, id string) (*Session, *User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, nil, nil
	}
	user, ok := r.users[session.UserID]
	if !ok {
		return nil, nil, nil
	}

	sessionCopy := session
	sessionCopy.User = nil
	userCopy := user
	return &sessionCopy, &userCopy, nil
}

// CreateSession stores a new session.
func (r *InMemoryRepository) CreateSession(_ context.Context, session Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.User = nil
	r.sessions[session.ID] = session
	return nil
}

// TouchSession updates the last-accessed timestamp of an existing session.
func (r *InMemoryRepository) TouchSession(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[id]; ok {
		session.LastAccessedAt = at
		r.sessions[id] = session
	}
	return nil
}

// DeleteSession removes a session; unknown ids are a no-op.
func (r *InMemoryRepository) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// DeleteExpiredSessions removes sessions whose expiry has passed.
func (r *InMemoryRepository) DeleteExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, session := range r.sessions {
		if !session.ExpiresAt.After(before) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}
