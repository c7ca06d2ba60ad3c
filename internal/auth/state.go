package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
)

// tokenLength is the number of random bytes behind each generated token.
// 32 bytes gives 256 bits of entropy, enough for single-use state, nonce and
// session-id values.
const tokenLength = 32

// GenerateToken creates a cryptographically random, URL-safe opaque string.
// It is used for the OAuth state parameter, the OIDC nonce and session ids.
func GenerateToken() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// TransientState is the payload of the short-lived cookie that bridges the
// authorization redirect and the callback request. It is the only state kept
// between the two phases of a login attempt.
type TransientState struct {
	State     string `json:"state"`
	Nonce     string `json:"nonce"`
	AppOrigin string `json:"appOrigin"`
}

// EncodeTransientState serializes the payload as compact JSON, base64-encoded
// so it survives cookie-value restrictions.
func EncodeTransientState(v TransientState) string {
	data, _ := json.Marshal(v)
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeTransientState parses a raw cookie value. An absent or empty value is
// ErrMissingCookie; anything present but malformed, or missing a state or
// nonce, is ErrBadCookie.
func DecodeTransientState(raw string) (TransientState, error) {
	if raw == "" {
		return TransientState{}, ErrMissingCookie
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return TransientState{}, ErrBadCookie
	}

	var v TransientState
	if err := json.Unmarshal(data, &v); err != nil {
		return TransientState{}, ErrBadCookie
	}
	if v.State == "" || v.Nonce == "" {
		return TransientState{}, ErrBadCookie
	}

	return v, nil
}

// VerifyStateMatch compares the state stored in the transient cookie against
// the state echoed back in the callback query. Exact equality, no
// normalization.
func VerifyStateMatch(cookieState, queryState string) error {
	if cookieState != queryState {
		return ErrStateMismatch
	}
	return nil
}
