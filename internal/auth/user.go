package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a back-office account. Email is the natural key: every successful
// login upserts against it.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	GoogleID    *string   `json:"-"`
	Name        *string   `json:"name"`
	AvatarURL   *string   `json:"avatarUrl"`
	Phone       *string   `json:"phone"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

// Session backs the long-lived session cookie. The ID is the opaque bearer
// token stored in the cookie, so it is never handed to anyone but its owner.
type Session struct {
	ID             string
	UserID         uuid.UUID
	CreatedAt      time.Time
	LastAccessedAt time.Time
	ExpiresAt      time.Time
	User           *User
}

// Claims contains the identity facts Google asserts about the end user.
// EmailVerified is a pointer so an explicit false can be told apart from an
// absent claim; only an explicit false rejects the login.
type Claims struct {
	Sub           string  `json:"sub"`
	Email         string  `json:"email"`
	EmailVerified *bool   `json:"email_verified"`
	Name          *string `json:"name"`
	Picture       *string `json:"picture"`
}
