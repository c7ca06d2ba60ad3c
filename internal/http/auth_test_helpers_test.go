package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vetdesk/internal/auth"
	"vetdesk/internal/clinic"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type authRepoStub struct {
	upsertUserByEmail     func(ctx context.Context, params auth.UpsertUserParams) (*auth.User, error)
	findSession           func(ctx context.Context, id string) (*auth.Session, *auth.User, error)
	createSession         func(ctx context.Context, session auth.Session) error
	touchSession          func(ctx context.Context, id string, at time.Time) error
	deleteSession         func(ctx context.Context, id string) error
	deleteExpiredSessions func(ctx context.Context, before time.Time) (int64, error)
}

func (r *authRepoStub) UpsertUserByEmail(ctx context.Context, params auth.UpsertUserParams) (*auth.User, error) {
	if r.upsertUserByEmail != nil {
		return r.upsertUserByEmail(ctx, params)
	}
	return &auth.User{ID: uuid.New(), Email: params.Email}, nil
}

func (r *authRepoStub) FindSession(ctx context.Context, id string) (*auth.Session, *auth.User, error) {
	if r.findSession != nil {
		return r.findSession(ctx, id)
	}
	return nil, nil, nil
}

func (r *authRepoStub) CreateSession(ctx context.Context, session auth.Session) error {
	if r.createSession != nil {
		return r.createSession(ctx, session)
	}
	return nil
}

func (r *authRepoStub) TouchSession(ctx context.Context, id string, at time.Time) error {
	if r.touchSession != nil {
		return r.touchSession(ctx, id, at)
	}
	return nil
}

func (r *authRepoStub) DeleteSession(ctx context.Context, id string) error {
	if r.deleteSession != nil {
		return r.deleteSession(ctx, id)
	}
	return nil
}

func (r *authRepoStub) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	if r.deleteExpiredSessions != nil {
		return r.deleteExpiredSessions(ctx, before)
	}
	return 0, nil
}

type fakeGoogleAuthenticator struct {
	lastState   string
	lastNonce   string
	claims      *auth.Claims
	exchangeErr error
}

func (f *fakeGoogleAuthenticator) AuthURL(state, nonce string) string {
	f.lastState = state
	f.lastNonce = nonce
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (f *fakeGoogleAuthenticator) CallbackURL(requestURL *url.URL) (*url.URL, error) {
	base, _ := url.Parse("http://localhost:8080/auth/google/callback")
	base.RawQuery = requestURL.RawQuery
	return base, nil
}

func (f *fakeGoogleAuthenticator) Exchange(ctx context.Context, callbackURL *url.URL, expectedState, expectedNonce string) (*auth.Claims, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.claims, nil
}

func newTestAuthHandler(google *fakeGoogleAuthenticator, repo *authRepoStub, allowed []string) *AuthHandler {
	service := auth.NewService(repo, 0)
	flow := auth.NewFlow(google, service)
	origins := auth.NewOriginPolicy(allowed)
	return NewAuthHandler(flow, service, origins, "development", testLogger())
}

func withUser(r *http.Request, user *auth.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, user))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// seedClinic creates a service backed by the in-memory repository with one
// customer, one pet and one treatment for the given owner.
func seedClinic(ownerID uuid.UUID, phone string, nextDue *time.Time) (*clinic.Service, clinic.Customer, clinic.Pet, clinic.Treatment) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	customer := clinic.Customer{
		ID:        uuid.New(),
		UserID:    ownerID,
		Name:      "June Carter",
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	repo := clinic.NewInMemoryRepository([]clinic.Customer{customer})
	service := clinic.NewService(repo)

	pet := clinic.Pet{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		Name:       "Rex",
		Species:    "dog",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	pet, _ = repo.CreatePet(context.Background(), ownerID, pet)

	treatment := clinic.Treatment{
		ID:          uuid.New(),
		PetID:       pet.ID,
		PerformedAt: now,
		Description: "rabies vaccination",
		NextDueAt:   nextDue,
		CreatedAt:   now,
	}
	treatment, _ = repo.CreateTreatment(context.Background(), ownerID, treatment)

	return service, customer, pet, treatment
}
