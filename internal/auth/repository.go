package auth

import (
	"context"
	"time"
)

// UpsertUserParams carries the identity fields merged into the user row on a
// successful login. Name is only applied when the row is first inserted.
type UpsertUserParams struct {
	Email     string
	GoogleID  string
	Name      *string
	AvatarURL *string
	Now       time.Time
}

// Repository defines user and session persistence for the auth subsystem.
type Repository interface {
	// UpsertUserByEmail inserts a user or, on email conflict, refreshes
	// google_id, avatar_url, updated_at and last_login_at. It returns the
	// resulting row, or nil if the write inexplicably reported none.
	UpsertUserByEmail(ctx context.Context, params UpsertUserParams) (*User, error)

	// FindSession returns a session and its owning user, or nil, nil when
	// either is missing. A session without a user is treated as missing.
	FindSession(ctx context.Context, id string) (*Session, *User, error)

	CreateSession(ctx context.Context, session Session) error
	TouchSession(ctx context.Context, id string, at time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}
