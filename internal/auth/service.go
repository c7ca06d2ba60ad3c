package auth

import (
	"context"
	"fmt"
	"time"
)

// DefaultSessionTTL is the absolute lifetime of a session. Rolling refresh
// never extends it.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Service is the user directory and session store behind the login flow.
type Service struct {
	repo       Repository
	sessionTTL time.Duration
	now        func() time.Time
}

// NewService creates the auth Service.
func NewService(repo Repository, sessionTTL time.Duration) *Service {
	if sessionTTL == 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Service{
		repo:       repo,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// UpsertUser inserts or refreshes the local account for validated claims,
// keyed by email. The provider subject becomes the stored google id.
func (s *Service) UpsertUser(ctx context.Context, claims *Claims) (*User, error) {
	user, err := s.repo.UpsertUserByEmail(ctx, UpsertUserParams{
		Email:     claims.Email,
		GoogleID:  claims.Sub,
		Name:      claims.Name,
		AvatarURL: claims.Picture,
		Now:       s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CreateSession opens a new session for the user. The generated id doubles as
// the bearer token handed out in the session cookie.
func (s *Service) CreateSession(ctx context.Context, user *User) (*Session, error) {
	id, err := GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	now := s.now().UTC()
	session := Session{
		ID:             id,
		UserID:         user.ID,
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(s.sessionTTL),
		User:           user,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &session, nil
}

// GetSession resolves a session id to a live session and refreshes its
// last-accessed timestamp. A session past its absolute expiry is deleted on
// this read and reported as absent. An empty id resolves to nil without
// touching storage.
func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}

	session, user, err := s.repo.FindSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil || user == nil {
		return nil, nil
	}

	now := s.now().UTC()
	if !session.ExpiresAt.After(now) {
		_ = s.repo.DeleteSession(ctx, session.ID)
		return nil, nil
	}

	// Rolling refresh. The returned view carries the new timestamp even if
	// the write is lost; the absolute expiry never moves.
	_ = s.repo.TouchSession(ctx, session.ID, now)
	session.LastAccessedAt = now
	session.User = user

	return session, nil
}

// DeleteSession removes a session by id. Deleting an empty or unknown id is
// not an error.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.repo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes every session past its expiry. Lazy deletes
// in GetSession already keep reads correct; this reclaims rows nobody reads.
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, s.now().UTC())
}
