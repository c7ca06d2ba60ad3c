package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleIssuer = "https://accounts.google.com"

// GoogleAuthenticator wraps Google's OIDC endpoints: discovery, the consent
// URL and the authorization-code-for-tokens exchange.
type GoogleAuthenticator struct {
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogleAuthenticator performs provider discovery once. Discovery failure
// is fatal to the whole auth subsystem, so callers treat an error here as a
// startup error.
func NewGoogleAuthenticator(ctx context.Context, clientID, clientSecret, redirectURL string) (*GoogleAuthenticator, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
	}

	return &GoogleAuthenticator{
		config:   config,
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// AuthURL builds the Google consent URL carrying the state and nonce.
func (g *GoogleAuthenticator) AuthURL(state, nonce string) string {
	return g.config.AuthCodeURL(
		state,
		oidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// CallbackURL rebuilds the URL the exchange will verify: the configured
// redirect URI's origin and path plus the query string of the incoming
// request. The inbound host and path are deliberately ignored; only the
// query is trusted.
func (g *GoogleAuthenticator) CallbackURL(requestURL *url.URL) (*url.URL, error) {
	base, err := url.Parse(g.config.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("parse redirect url: %w", err)
	}
	base.RawQuery = requestURL.RawQuery
	return base, nil
}

// Exchange redeems the authorization code carried by callbackURL and returns
// the raw ID-token claims. Every failure mode (network, provider rejection,
// state or nonce mismatch, missing or unverifiable id_token) collapses into
// ErrExchangeFailed; the cause is wrapped for server-side logs only. Claims
// that verify but do not fit the expected shape are the token's problem, not
// the exchange's, and surface as ErrInvalidClaims.
func (g *GoogleAuthenticator) Exchange(ctx context.Context, callbackURL *url.URL, expectedState, expectedNonce string) (*Claims, error) {
	query := callbackURL.Query()
	if query.Get("state") != expectedState {
		return nil, fmt.Errorf("%w: response state mismatch", ErrExchangeFailed)
	}

	code := query.Get("code")
	if code == "" {
		return nil, fmt.Errorf("%w: no authorization code", ErrExchangeFailed)
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %v", ErrExchangeFailed, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("%w: no id_token in response", ErrExchangeFailed)
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: verify id_token: %v", ErrExchangeFailed, err)
	}

	if idToken.Nonce != expectedNonce {
		return nil, fmt.Errorf("%w: nonce mismatch", ErrExchangeFailed)
	}

	var raw json.RawMessage
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("%w: read claims: %v", ErrExchangeFailed, err)
	}

	return decodeClaims(raw)
}

// decodeClaims parses the verified ID-token claims document. A claim of the
// wrong type (email_verified as a string, say) is a malformed assertion about
// the user, so it maps to ErrInvalidClaims rather than an exchange failure.
func decodeClaims(raw json.RawMessage) (*Claims, error) {
	var claims Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
	return &claims, nil
}
