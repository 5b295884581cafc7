package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/artshoppe/storefront/internal/api/middleware"
	"github.com/artshoppe/storefront/internal/core/domain"
)

func TestPageHandler_RendersEveryPage(t *testing.T) {
	e := newTestEcho(t)
	h := NewPageHandler(nil)

	for _, name := range []string{"home", "gallery", "shoppe", "events", "contact", "cart", "checkout"} {
		req := httptest.NewRequest(http.MethodGet, "/"+name, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(middleware.CtxNonce, "n0nce")

		if err := h.Page(name, strings.ToUpper(name[:1])+name[1:])(c); err != nil {
			t.Fatalf("%s: handler error: %v", name, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", name, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `nonce="n0nce"`) {
			t.Fatalf("%s: expected nonce in markup", name)
		}
	}
}

func TestPageHandler_Dashboard(t *testing.T) {
	e := newTestEcho(t)
	users := newStubUsers(&domain.User{ID: "u1", Email: "ana@example.com", DisplayName: "Ana"})
	h := NewPageHandler(users)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, "u1")
	c.Set(middleware.CtxRole, string(domain.RoleSuperAdmin))

	if err := h.Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Ana (super_admin)") {
		t.Fatalf("expected greeting in dashboard, got %s", body)
	}
}
