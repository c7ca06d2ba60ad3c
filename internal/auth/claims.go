package auth

import (
	"net/mail"
	"net/url"
	"strings"
)

// CallbackQuery is the validated portion of the provider redirect's query
// string.
type CallbackQuery struct {
	Code  string
	State string
}

// ValidateCallbackQuery requires non-empty code and state parameters. A
// provider error redirect arrives without a code and is rejected here too.
func ValidateCallbackQuery(values url.Values) (CallbackQuery, error) {
	code := values.Get("code")
	state := values.Get("state")
	if code == "" || state == "" {
		return CallbackQuery{}, ErrInvalidQuery
	}
	return CallbackQuery{Code: code, State: state}, nil
}

// ValidateClaims enforces the shape of the decoded ID-token claims and the
// email-verified invariant: a missing email_verified claim passes, an
// explicit false does not.
func ValidateClaims(claims *Claims) (*Claims, error) {
	if claims == nil {
		return nil, ErrMissingClaims
	}
	if strings.TrimSpace(claims.Sub) == "" {
		return nil, ErrInvalidClaims
	}
	if claims.Email == "" {
		return nil, ErrInvalidClaims
	}
	if _, err := mail.ParseAddress(claims.Email); err != nil {
		return nil, ErrInvalidClaims
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return nil, ErrEmailUnverified
	}
	return claims, nil
}
