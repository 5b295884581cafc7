package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/artshoppe/storefront/internal/api/middleware"
	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/ports"
)

type stubAdminService struct {
	listFn   func(ctx context.Context) ([]*domain.AdminRecord, error)
	createFn func(ctx context.Context, in ports.CreateAdminInput) (*domain.AdminRecord, error)
	updateFn func(ctx context.Context, in ports.UpdateAdminInput) (*domain.AdminRecord, error)
}

func (s *stubAdminService) List(ctx context.Context) ([]*domain.AdminRecord, error) {
	return s.listFn(ctx)
}
func (s *stubAdminService) Create(ctx context.Context, in ports.CreateAdminInput) (*domain.AdminRecord, error) {
	return s.createFn(ctx, in)
}
func (s *stubAdminService) Update(ctx context.Context, in ports.UpdateAdminInput) (*domain.AdminRecord, error) {
	return s.updateFn(ctx, in)
}
func (s *stubAdminService) Bootstrap(context.Context, string, string) (bool, error) {
	return false, nil
}

func adminContext(e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, "root-user")
	c.Set(middleware.CtxRole, string(domain.RoleSuperAdmin))
	return rec, c
}

func TestAdminHandler_List(t *testing.T) {
	e := newTestEcho(t)
	h := NewAdminHandler(&stubAdminService{listFn: func(context.Context) ([]*domain.AdminRecord, error) {
		return []*domain.AdminRecord{{ID: "a1", UserID: "u1", Email: "a@example.com", Role: domain.RoleAdmin, IsActive: true}}, nil
	}})

	rec, c := adminContext(e, http.MethodGet, "/admin/api/administrators", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(out) != 1 || out[0]["email"] != "a@example.com" || out[0]["is_active"] != true {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestAdminHandler_List_RequiresGate(t *testing.T) {
	e := newTestEcho(t)
	h := NewAdminHandler(&stubAdminService{})

	req := httptest.NewRequest(http.MethodGet, "/admin/api/administrators", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.List(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAdminHandler_Create(t *testing.T) {
	e := newTestEcho(t)
	h := NewAdminHandler(&stubAdminService{createFn: func(_ context.Context, in ports.CreateAdminInput) (*domain.AdminRecord, error) {
		if in.ActorID != "root-user" || in.Role != domain.RoleAdmin || in.Email != "new@example.com" {
			t.Fatalf("unexpected input: %+v", in)
		}
		return &domain.AdminRecord{ID: "a2", UserID: "u2", Email: in.Email, Role: in.Role, IsActive: true}, nil
	}})

	rec, c := adminContext(e, http.MethodPost, "/admin/api/administrators",
		`{"email":"new@example.com","password":"longenough","role":"admin"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAdminHandler_Create_Validation(t *testing.T) {
	e := newTestEcho(t)
	h := NewAdminHandler(&stubAdminService{createFn: func(context.Context, ports.CreateAdminInput) (*domain.AdminRecord, error) {
		t.Fatal("service must not be called on invalid input")
		return nil, nil
	}})

	for _, body := range []string{
		`{"email":"new@example.com","password":"short","role":"admin"}`,
		`{"email":"not-an-email","password":"longenough","role":"admin"}`,
		`{"email":"new@example.com","password":"longenough","role":"owner"}`,
		`{"email":"new@example.com","role":"admin"}`,
	} {
		_, c := adminContext(e, http.MethodPost, "/admin/api/administrators", body)
		err := h.Create(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %v", body, err)
		}
	}
}

func TestAdminHandler_Create_LinksHostedUser(t *testing.T) {
	e := newTestEcho(t)
	h := NewAdminHandler(&stubAdminService{createFn: func(_ context.Context, in ports.CreateAdminInput) (*domain.AdminRecord, error) {
		if in.UserID != "hosted-42" || in.Password != "" {
			t.Fatalf("expected a link-only input, got %+v", in)
		}
		return &domain.AdminRecord{ID: "a3", UserID: in.UserID, Email: in.Email, Role: in.Role, IsActive: true}, nil
	}})

	rec, c := adminContext(e, http.MethodPost, "/admin/api/administrators",
		`{"user_id":"hosted-42","email":"curator@example.com","role":"admin"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec.Code != http.StatusCreated || out["user_id"] != "hosted-42" {
		t.Fatalf("expected 201 linking hosted-42, got %d %+v", rec.Code, out)
	}
}

func TestAdminHandler_Update(t *testing.T) {
	e := newTestEcho(t)
	h := NewAdminHandler(&stubAdminService{updateFn: func(_ context.Context, in ports.UpdateAdminInput) (*domain.AdminRecord, error) {
		if in.ID != "a1" || in.IsActive == nil || *in.IsActive || in.Role != nil {
			t.Fatalf("unexpected input: %+v", in)
		}
		return &domain.AdminRecord{ID: "a1", Role: domain.RoleAdmin}, nil
	}})

	rec, c := adminContext(e, http.MethodPatch, "/admin/api/administrators/a1", `{"is_active":false}`)
	c.SetParamNames("id")
	c.SetParamValues("a1")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	_, c = adminContext(e, http.MethodPatch, "/admin/api/administrators/a1", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("a1")
	if he, ok := h.Update(c).(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Fatal("expected 400 for an empty update")
	}
}
