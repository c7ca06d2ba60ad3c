package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"vetdesk/internal/auth"
	"vetdesk/internal/clinic"
	"vetdesk/internal/config"
	"vetdesk/internal/notify"
)

func newTestRouter(allowedOrigins []string) http.Handler {
	cfg := config.Config{
		Environment:       "development",
		AllowedAppOrigins: allowedOrigins,
	}
	service := auth.NewService(&authRepoStub{}, 0)
	flow := auth.NewFlow(&fakeGoogleAuthenticator{}, service)
	origins := auth.NewOriginPolicy(allowedOrigins)
	clinicSvc := clinic.NewService(clinic.NewInMemoryRepository(nil))
	whatsapp := notify.NewWhatsAppClient(nil, "", "")
	return NewRouter(cfg, flow, service, origins, clinicSvc, whatsapp, testLogger())
}

func TestRouterCORSGrantsAllowedOrigin(t *testing.T) {
	router := newTestRouter([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected the origin to be granted, got %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentialed CORS for the allowed origin")
	}
}

func TestRouterCORSWildcardStaysNumeric(t *testing.T) {
	// The wildcard segment of an allow-list pattern matches digits only. The
	// CORS layer must apply the same rule, not a broader glob.
	router := newTestRouter([]string{"https://tenant*.app.local"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://tenant7.app.local")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://tenant7.app.local" {
		t.Fatalf("expected the numeric tenant origin to be granted, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://tenant-evil.app.local")
	rec = httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no grant for a non-numeric tenant, got %q", got)
	}
}

func TestRouterCORSPreflightRejectsUnknownOrigin(t *testing.T) {
	router := newTestRouter([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodOptions, "/api/customers", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no preflight grant for an unknown origin, got %q", got)
	}
}
