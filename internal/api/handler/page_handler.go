package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/artshoppe/storefront/internal/api/middleware"
	"github.com/artshoppe/storefront/internal/core/ports"
)

// PageHandler serves the marketing pages and the back-office shell.
type PageHandler struct {
	users ports.AuthRepository
}

// NewPageHandler returns a PageHandler. users may be nil, in which case the
// dashboard greets the admin by id.
func NewPageHandler(users ports.AuthRepository) *PageHandler {
	return &PageHandler{users: users}
}

// Page returns a handler rendering the named template.
func (h *PageHandler) Page(name, title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, name, h.data(c, title))
	}
}

// Dashboard renders the back-office landing page.
func (h *PageHandler) Dashboard(c echo.Context) error {
	userID, role, err := ctxAdmin(c)
	if err != nil {
		return err
	}

	data := h.data(c, "Back office")
	data.Role = string(role)
	data.UserName = userID
	if h.users != nil {
		if u, err := h.users.FindByID(c.Request().Context(), userID); err == nil {
			data.UserName = u.Email
			if u.DisplayName != "" {
				data.UserName = u.DisplayName
			}
		}
	}
	return c.Render(http.StatusOK, "dashboard", data)
}

func (h *PageHandler) data(c echo.Context, title string) PageData {
	p, _ := c.Get(middleware.CtxPathname).(string)
	if p == "" {
		p = c.Request().URL.Path
	}
	return PageData{Title: title, Nonce: ctxNonce(c), Path: p}
}
