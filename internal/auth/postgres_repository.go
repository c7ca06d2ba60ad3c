package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// UpsertUserByEmail inserts the user or, on email conflict, refreshes the
// identity fields. Name is deliberately absent from the update set: it is
// only written on first insert.
func (r *PostgresRepository) UpsertUserByEmail(ctx context.Context, params UpsertUserParams) (*User, error) {
	const query = `
		INSERT INTO users (id, email, google_id, name, avatar_url, created_at, updated_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $6)
		ON CONFLICT (email) DO UPDATE SET
			google_id = EXCLUDED.google_id,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = EXCLUDED.updated_at,
			last_login_at = EXCLUDED.last_login_at
		RETURNING id, email, google_id, name, avatar_url, phone, created_at, updated_at, last_login_at
	`

	var row userRow
	err := r.db.GetContext(ctx, &row, query,
		uuid.New(),
		params.Email,
		params.GoogleID,
		params.Name,
		params.AvatarURL,
		params.Now,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toUser(), nil
}

// CreateSession inserts a new session row.
func (r *PostgresRepository) CreateSession(ctx context.Context, session Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, created_at, last_accessed_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.CreatedAt,
		session.LastAccessedAt,
		session.ExpiresAt,
	)
	return err
}

// FindSession looks up a session and its owning user by session id. A session
// whose user row is gone yields no result at all.
func (r *PostgresRepository) FindSession(ctx context.Context, id string) (*Session, *User, error) {
	const query = `
		SELECT
			s.id, s.user_id, s.created_at, s.last_accessed_at, s.expires_at,
			u.email, u.google_id, u.name, u.avatar_url, u.phone,
			u.created_at AS user_created_at, u.updated_at AS user_updated_at, u.last_login_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.id = $1
	`

	var row sessionUserRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	return row.toSession(), row.toUser(), nil
}

// TouchSession records a rolling refresh of the last-accessed timestamp.
func (r *PostgresRepository) TouchSession(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE sessions SET last_accessed_at = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, at)
	return err
}

// DeleteSession removes a session. Unknown ids delete zero rows and succeed.
func (r *PostgresRepository) DeleteSession(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// DeleteExpiredSessions removes every session whose expiry has passed.
func (r *PostgresRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= $1`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// userRow is the database row representation of User.
type userRow struct {
	ID          uuid.UUID `db:"id"`
	Email       string    `db:"email"`
	GoogleID    *string   `db:"google_id"`
	Name        *string   `db:"name"`
	AvatarURL   *string   `db:"avatar_url"`
	Phone       *string   `db:"phone"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	LastLoginAt time.Time `db:"last_login_at"`
}

func (r *userRow) toUser() *User {
	return &User{
		ID:          r.ID,
		Email:       r.Email,
		GoogleID:    r.GoogleID,
		Name:        r.Name,
		AvatarURL:   r.AvatarURL,
		Phone:       r.Phone,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		LastLoginAt: r.LastLoginAt,
	}
}

// sessionUserRow is the row for the session + user join query.
type sessionUserRow struct {
	ID             string    `db:"id"`
	UserID         uuid.UUID `db:"user_id"`
	CreatedAt      time.Time `db:"created_at"`
	LastAccessedAt time.Time `db:"last_accessed_at"`
	ExpiresAt      time.Time `db:"expires_at"`

	Email         string    `db:"email"`
	GoogleID      *string   `db:"google_id"`
	Name          *string   `db:"name"`
	AvatarURL     *string   `db:"avatar_url"`
	Phone         *string   `db:"phone"`
	UserCreatedAt time.Time `db:"user_created_at"`
	UserUpdatedAt time.Time `db:"user_updated_at"`
	LastLoginAt   time.Time `db:"last_login_at"`
}

func (r *sessionUserRow) toSession() *Session {
	return &Session{
		ID:             r.ID,
		UserID:         r.UserID,
		CreatedAt:      r.CreatedAt,
		LastAccessedAt: r.LastAccessedAt,
		ExpiresAt:      r.ExpiresAt,
	}
}

func (r *sessionUserRow) toUser() *User {
	return &User{
		ID:          r.UserID,
		Email:       r.Email,
		GoogleID:    r.GoogleID,
		Name:        r.Name,
		AvatarURL:   r.AvatarURL,
		Phone:       r.Phone,
		CreatedAt:   r.UserCreatedAt,
		UpdatedAt:   r.UserUpdatedAt,
		LastLoginAt: r.LastLoginAt,
	}
}
