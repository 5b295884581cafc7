package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/artshoppe/storefront/internal/core/gate"
)

// newBareRouter wires the router with no backends at all, the state the
// service starts in when every store is unreachable.
func newBareRouter(t *testing.T) *echo.Echo {
	t.Helper()
	e, err := NewRouter(Deps{
		Log:        zerolog.Nop(),
		Authorizer: gate.NewAuthorizer(gate.AuthorizerConfig{Log: zerolog.Nop()}),
		CSP:        gate.NewCSPBuilder(gate.ModeProduction, gate.DefaultOrigins()),
		Prometheus: prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRouter_PublicPagesServeWithoutBackends(t *testing.T) {
	e := newBareRouter(t)

	for _, p := range []string{"/", "/gallery", "/shoppe", "/events", "/contact", "/cart", "/checkout", "/admin/login", "/health"} {
		rec := serve(e, http.MethodGet, p)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", p, rec.Code)
		}
		csp := rec.Header().Get("Content-Security-Policy")
		if !strings.Contains(csp, "'nonce-") || !strings.Contains(csp, "upgrade-insecure-requests") {
			t.Fatalf("%s: unexpected policy %q", p, csp)
		}
	}
}

func TestRouter_ProtectedPathsFailClosed(t *testing.T) {
	e := newBareRouter(t)

	for _, p := range []string{"/admin", "/admin/", "/admin/api/administrators", "/admin/unknown", "/admin/login/../orders"} {
		rec := serve(e, http.MethodGet, p)
		if rec.Code != http.StatusTemporaryRedirect {
			t.Fatalf("%s: expected 307, got %d", p, rec.Code)
		}
		if loc := rec.Header().Get(echo.HeaderLocation); loc != gate.LoginPath {
			t.Fatalf("%s: expected redirect to login, got %q", p, loc)
		}
		if rec.Header().Get("X-Frame-Options") != "DENY" {
			t.Fatalf("%s: redirect is missing security headers", p)
		}
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	e := newBareRouter(t)
	serve(e, http.MethodGet, "/gallery")

	rec := serve(e, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "requests_total") {
		t.Fatal("expected HTTP request metrics to be exposed")
	}
}
