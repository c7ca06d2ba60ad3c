package auth

import (
	"context"
	"fmt"
	"net/url"
)

// Authenticator is the identity-provider surface the login flow depends on.
type Authenticator interface {
	AuthURL(state, nonce string) string
	CallbackURL(requestURL *url.URL) (*url.URL, error)
	Exchange(ctx context.Context, callbackURL *url.URL, expectedState, expectedNonce string) (*Claims, error)
}

// UserDirectory upserts local accounts from validated claims.
type UserDirectory interface {
	UpsertUser(ctx context.Context, claims *Claims) (*User, error)
}

// Flow drives the two-phase Google login protocol. The only state carried
// between the phases is the transient cookie.
type Flow struct {
	google Authenticator
	users  UserDirectory
}

// NewFlow wires the login flow.
func NewFlow(google Authenticator, users UserDirectory) *Flow {
	return &Flow{google: google, users: users}
}

// StartResult carries what the HTTP layer needs to begin a login attempt: the
// transient cookie payload, its encoded value, and the provider redirect.
type StartResult struct {
	Cookie      TransientState
	CookieValue string
	RedirectURL string
}

// Start opens a login attempt for the given app origin. Pure value
// construction: no network call, no storage write.
func (f *Flow) Start(appOrigin string) (StartResult, error) {
	state, err := GenerateToken()
	if err != nil {
		return StartResult{}, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := GenerateToken()
	if err != nil {
		return StartResult{}, fmt.Errorf("generate nonce: %w", err)
	}

	cookie := TransientState{State: state, Nonce: nonce, AppOrigin: appOrigin}
	return StartResult{
		Cookie:      cookie,
		CookieValue: EncodeTransientState(cookie),
		RedirectURL: f.google.AuthURL(state, nonce),
	}, nil
}

// FinishResult is the success outcome of the callback phase.
type FinishResult struct {
	User      *User
	AppOrigin string
}

// Finish drives the callback phase as a short-circuiting pipeline: query
// validation, cookie parse, state match, code exchange, claims validation,
// user upsert. The first failing step determines the returned error and no
// later step runs. Nothing here is retried; a failed attempt is re-driven
// only by starting a fresh login.
func (f *Flow) Finish(ctx context.Context, requestURL *url.URL, rawCookie string) (FinishResult, error) {
	query, err := ValidateCallbackQuery(requestURL.Query())
	if err != nil {
		return FinishResult{}, err
	}

	cookie, err := DecodeTransientState(rawCookie)
	if err != nil {
		return FinishResult{}, err
	}

	if err := VerifyStateMatch(cookie.State, query.State); err != nil {
		return FinishResult{}, err
	}

	callbackURL, err := f.google.CallbackURL(requestURL)
	if err != nil {
		return FinishResult{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	claims, err := f.google.Exchange(ctx, callbackURL, query.State, cookie.Nonce)
	if err != nil {
		return FinishResult{}, err
	}

	validated, err := ValidateClaims(claims)
	if err != nil {
		return FinishResult{}, err
	}

	user, err := f.users.UpsertUser(ctx, validated)
	if err != nil {
		return FinishResult{}, err
	}

	return FinishResult{User: user, AppOrigin: cookie.AppOrigin}, nil
}
