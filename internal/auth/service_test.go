package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type repoStub struct {
	upsertUserByEmail     func(ctx context.Context, params UpsertUserParams) (*User, error)
	findSession           func(ctx context.Context, id string) (*Session, *User, error)
	createSession         func(ctx context.Context, session Session) error
	touchSession          func(ctx context.Context, id string, at time.Time) error
	deleteSession         func(ctx context.Context, id string) error
	deleteExpiredSessions func(ctx context.Context, before time.Time) (int64, error)
}

func (r *repoStub) UpsertUserByEmail(ctx context.Context, params UpsertUserParams) (*User, error) {
	if r.upsertUserByEmail != nil {
		return r.upsertUserByEmail(ctx, params)
	}
	return &User{ID: uuid.New(), Email: params.Email}, nil
}

func (r *repoStub) FindSession(ctx context.Context, id string) (*Session, *User, error) {
	if r.findSession != nil {
		return r.findSession(ctx, id)
	}
	return nil, nil, nil
}

func (r *repoStub) CreateSession(ctx context.Context, session Session) error {
	if r.createSession != nil {
		return r.createSession(ctx, session)
	}
	return nil
}

func (r *repoStub) TouchSession(ctx context.Context, id string, at time.Time) error {
	if r.touchSession != nil {
		return r.touchSession(ctx, id, at)
	}
	return nil
}

func (r *repoStub) DeleteSession(ctx context.Context, id string) error {
	if r.deleteSession != nil {
		return r.deleteSession(ctx, id)
	}
	return nil
}

func (r *repoStub) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	if r.deleteExpiredSessions != nil {
		return r.deleteExpiredSessions(ctx, before)
	}
	return 0, nil
}

func TestServiceUpsertUserPassesClaims(t *testing.T) {
	name := "Ada Lovelace"
	picture := "https://example.com/a.png"
	var got UpsertUserParams

	repo := &repoStub{
		upsertUserByEmail: func(ctx context.Context, params UpsertUserParams) (*User, error) {
			got = params
			return &User{ID: uuid.New(), Email: params.Email}, nil
		},
	}
	svc := NewService(repo, 0)

	claims := &Claims{Sub: "sub-1", Email: "ada@example.com", Name: &name, Picture: &picture}
	user, err := svc.UpsertUser(context.Background(), claims)
	if err != nil {
		t.Fatalf("UpsertUser returned error: %v", err)
	}
	if user == nil || user.Email != "ada@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if got.Email != "ada@example.com" || got.GoogleID != "sub-1" {
		t.Fatalf("unexpected params: %+v", got)
	}
	if got.Name == nil || *got.Name != name {
		t.Fatalf("expected name to be forwarded, got %+v", got.Name)
	}
	if got.AvatarURL == nil || *got.AvatarURL != picture {
		t.Fatalf("expected picture to be forwarded, got %+v", got.AvatarURL)
	}
	if got.Now.IsZero() {
		t.Fatal("expected upsert timestamp to be set")
	}
}

func TestServiceUpsertUserNoRowIsUserNotFound(t *testing.T) {
	repo := &repoStub{
		upsertUserByEmail: func(ctx context.Context, params UpsertUserParams) (*User, error) {
			return nil, nil
		},
	}
	svc := NewService(repo, 0)

	_, err := svc.UpsertUser(context.Background(), &Claims{Sub: "sub", Email: "a@example.com"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestServiceCreateSessionSetsAbsoluteExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var stored Session
	repo := &repoStub{
		createSession: func(ctx context.Context, session Session) error {
			stored = session
			return nil
		},
	}
	svc := NewService(repo, 0)
	svc.now = func() time.Time { return now }

	user := &User{ID: uuid.New(), Email: "ada@example.com"}
	session, err := svc.CreateSession(context.Background(), user)
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected a session id")
	}
	if stored.ID != session.ID || stored.UserID != user.ID {
		t.Fatalf("unexpected stored session: %+v", stored)
	}
	if !stored.ExpiresAt.Equal(now.Add(DefaultSessionTTL)) {
		t.Fatalf("expected expiry %v, got %v", now.Add(DefaultSessionTTL), stored.ExpiresAt)
	}
	if session.User != user {
		t.Fatal("expected the returned session to carry the user")
	}
}

func TestServiceGetSessionEmptyID(t *testing.T) {
	called := false
	repo := &repoStub{
		findSession: func(ctx context.Context, id string) (*Session, *User, error) {
			called = true
			return nil, nil, nil
		},
	}
	svc := NewService(repo, 0)

	session, err := svc.GetSession(context.Background(), "")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if session != nil {
		t.Fatalf("expected nil session, got %+v", session)
	}
	if called {
		t.Fatal("expected storage to be untouched for an empty id")
	}
}

func TestServiceGetSessionExpiredIsDeleted(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var deleted string
	repo := &repoStub{
		findSession: func(ctx context.Context, id string) (*Session, *User, error) {
			return &Session{ID: id, ExpiresAt: now.Add(-time.Second)}, &User{ID: uuid.New()}, nil
		},
		deleteSession: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := NewService(repo, 0)
	svc.now = func() time.Time { return now }

	session, err := svc.GetSession(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if session != nil {
		t.Fatalf("expected expired session to be absent, got %+v", session)
	}
	if deleted != "tok-1" {
		t.Fatalf("expected expired session to be deleted, got %q", deleted)
	}
}

func TestServiceGetSessionExpiryBoundary(t *testing.T) {
	// A session expiring exactly now is already expired.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &repoStub{
		findSession: func(ctx context.Context, id string) (*Session, *User, error) {
			return &Session{ID: id, ExpiresAt: now}, &User{ID: uuid.New()}, nil
		},
	}
	svc := NewService(repo, 0)
	svc.now = func() time.Time { return now }

	session, err := svc.GetSession(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if session != nil {
		t.Fatalf("expected boundary session to be absent, got %+v", session)
	}
}

func TestServiceGetSessionRollingRefresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := now.Add(time.Hour)
	user := &User{ID: uuid.New(), Email: "ada@example.com"}
	var touchedID string
	var touchedAt time.Time

	repo := &repoStub{
		findSession: func(ctx context.Context, id string) (*Session, *User, error) {
			return &Session{
				ID:             id,
				UserID:         user.ID,
				LastAccessedAt: now.Add(-time.Hour),
				ExpiresAt:      expiresAt,
			}, user, nil
		},
		touchSession: func(ctx context.Context, id string, at time.Time) error {
			touchedID = id
			touchedAt = at
			return nil
		},
	}
	svc := NewService(repo, 0)
	svc.now = func() time.Time { return now }

	session, err := svc.GetSession(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if session == nil {
		t.Fatal("expected a live session")
	}
	if touchedID != "tok-1" || !touchedAt.Equal(now) {
		t.Fatalf("expected touch at %v, got id=%q at=%v", now, touchedID, touchedAt)
	}
	if !session.LastAccessedAt.Equal(now) {
		t.Fatalf("expected refreshed last-accessed %v, got %v", now, session.LastAccessedAt)
	}
	if !session.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("expected absolute expiry to stay %v, got %v", expiresAt, session.ExpiresAt)
	}
	if session.User != user {
		t.Fatal("expected the session to carry its user")
	}
}

func TestServiceGetSessionSurvivesTouchFailure(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &repoStub{
		findSession: func(ctx context.Context, id string) (*Session, *User, error) {
			return &Session{ID: id, ExpiresAt: now.Add(time.Hour)}, &User{ID: uuid.New()}, nil
		},
		touchSession: func(ctx context.Context, id string, at time.Time) error {
			return errors.New("write lost")
		},
	}
	svc := NewService(repo, 0)
	svc.now = func() time.Time { return now }

	session, err := svc.GetSession(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if session == nil {
		t.Fatal("expected the session despite the lost touch write")
	}
	if !session.LastAccessedAt.Equal(now) {
		t.Fatalf("expected the returned view to carry the new timestamp, got %v", session.LastAccessedAt)
	}
}

func TestServiceGetSessionDanglingUser(t *testing.T) {
	repo := &repoStub{
		findSession: func(ctx context.Context, id string) (*Session, *User, error) {
			return &Session{ID: id, ExpiresAt: time.Now().Add(time.Hour)}, nil, nil
		},
	}
	svc := NewService(repo, 0)

	session, err := svc.GetSession(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if session != nil {
		t.Fatalf("expected a session without a user to be absent, got %+v", session)
	}
}

func TestServiceDeleteSessionEmptyIDIsNoOp(t *testing.T) {
	called := false
	repo := &repoStub{
		deleteSession: func(ctx context.Context, id string) error {
			called = true
			return nil
		},
	}
	svc := NewService(repo, 0)

	if err := svc.DeleteSession(context.Background(), ""); err != nil {
		t.Fatalf("DeleteSession returned error: %v", err)
	}
	if called {
		t.Fatal("expected storage to be untouched for an empty id")
	}
}

func TestServiceCleanupExpiredSessions(t *testing.T) {
	repo := &repoStub{
		deleteExpiredSessions: func(ctx context.Context, before time.Time) (int64, error) {
			return 4, nil
		},
	}
	svc := NewService(repo, 0)

	count, err := svc.CleanupExpiredSessions(context.Background())
	if err != nil {
		t.Fatalf("CleanupExpiredSessions returned error: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 removed, got %d", count)
	}
}
