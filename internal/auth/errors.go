package auth

import "errors"

// Login-flow errors. Finish returns exactly one of these per failed attempt;
// the HTTP layer is the only place that maps them to status codes. The error
// strings double as the wire-level error codes.
var (
	ErrInvalidQuery    = errors.New("invalid_query")
	ErrMissingCookie   = errors.New("missing_cookie")
	ErrBadCookie       = errors.New("bad_cookie")
	ErrStateMismatch   = errors.New("state_mismatch")
	ErrExchangeFailed  = errors.New("oauth_exchange_failed")
	ErrMissingClaims   = errors.New("missing_claims")
	ErrInvalidClaims   = errors.New("invalid_claims")
	ErrEmailUnverified = errors.New("email_unverified")
	ErrInvalidOrigin   = errors.New("invalid_origin")

	// ErrUserNotFound signals that an upsert reported no row. That is a
	// storage-layer contract violation, not a normal outcome.
	ErrUserNotFound = errors.New("user_not_found")
)
