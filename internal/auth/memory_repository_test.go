package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestInMemoryUpsertUserInsertsThenUpdates(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	name := "Ada"
	avatar := "a.png"

	created, err := repo.UpsertUserByEmail(ctx, UpsertUserParams{
		Email: "ada@example.com", GoogleID: "sub-1", Name: &name, AvatarURL: &avatar, Now: t0,
	})
	if err != nil {
		t.Fatalf("UpsertUserByEmail returned error: %v", err)
	}
	if created.ID == uuid.Nil || created.Email != "ada@example.com" {
		t.Fatalf("unexpected created user: %+v", created)
	}
	if created.Name == nil || *created.Name != "Ada" {
		t.Fatalf("expected name on insert, got %+v", created.Name)
	}

	newName := "Renamed"
	newAvatar := "b.png"
	t1 := t0.Add(time.Hour)
	updated, err := repo.UpsertUserByEmail(ctx, UpsertUserParams{
		Email: "Ada@Example.com", GoogleID: "sub-2", Name: &newName, AvatarURL: &newAvatar, Now: t1,
	})
	if err != nil {
		t.Fatalf("UpsertUserByEmail returned error: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected the email conflict to resolve to the same row, got %s vs %s", updated.ID, created.ID)
	}
	if updated.GoogleID == nil || *updated.GoogleID != "sub-2" {
		t.Fatalf("expected google id to be refreshed, got %+v", updated.GoogleID)
	}
	if updated.AvatarURL == nil || *updated.AvatarURL != "b.png" {
		t.Fatalf("expected avatar to be refreshed, got %+v", updated.AvatarURL)
	}
	if updated.Name == nil || *updated.Name != "Ada" {
		t.Fatalf("expected name to be write-once, got %+v", updated.Name)
	}
	if !updated.LastLoginAt.Equal(t1) || !updated.CreatedAt.Equal(t0) {
		t.Fatalf("unexpected timestamps: created=%v lastLogin=%v", updated.CreatedAt, updated.LastLoginAt)
	}
}

func TestInMemorySessionLifecycle(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	user, err := repo.UpsertUserByEmail(ctx, UpsertUserParams{Email: "ada@example.com", GoogleID: "sub-1", Now: now})
	if err != nil {
		t.Fatalf("UpsertUserByEmail returned error: %v", err)
	}

	session := Session{ID: "tok-1", UserID: user.ID, CreatedAt: now, LastAccessedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	found, foundUser, err := repo.FindSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("FindSession returned error: %v", err)
	}
	if found == nil || foundUser == nil {
		t.Fatal("expected the session and its user")
	}
	if foundUser.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, foundUser.ID)
	}

	touchedAt := now.Add(time.Minute)
	if err := repo.TouchSession(ctx, "tok-1", touchedAt); err != nil {
		t.Fatalf("TouchSession returned error: %v", err)
	}
	found, _, err = repo.FindSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("FindSession returned error: %v", err)
	}
	if !found.LastAccessedAt.Equal(touchedAt) {
		t.Fatalf("expected last-accessed %v, got %v", touchedAt, found.LastAccessedAt)
	}

	if err := repo.DeleteSession(ctx, "tok-1"); err != nil {
		t.Fatalf("DeleteSession returned error: %v", err)
	}
	found, foundUser, err = repo.FindSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("FindSession returned error: %v", err)
	}
	if found != nil || foundUser != nil {
		t.Fatal("expected the session to be gone")
	}

	if err := repo.DeleteSession(ctx, "tok-1"); err != nil {
		t.Fatalf("expected deleting an unknown id to be a no-op, got %v", err)
	}
}

func TestInMemoryFindSessionUnknownID(t *testing.T) {
	repo := NewInMemoryRepository()

	session, user, err := repo.FindSession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("FindSession returned error: %v", err)
	}
	if session != nil || user != nil {
		t.Fatal("expected nil, nil for an unknown id")
	}
}

func TestInMemoryDeleteExpiredSessions(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	user, err := repo.UpsertUserByEmail(ctx, UpsertUserParams{Email: "ada@example.com", GoogleID: "sub-1", Now: now})
	if err != nil {
		t.Fatalf("UpsertUserByEmail returned error: %v", err)
	}

	sessions := []Session{
		{ID: "expired-1", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)},
		{ID: "boundary", UserID: user.ID, ExpiresAt: now},
		{ID: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour)},
	}
	for _, s := range sessions {
		if err := repo.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession returned error: %v", err)
		}
	}

	removed, err := repo.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions returned error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	live, _, err := repo.FindSession(ctx, "live")
	if err != nil {
		t.Fatalf("FindSession returned error: %v", err)
	}
	if live == nil {
		t.Fatal("expected the live session to survive")
	}
}
