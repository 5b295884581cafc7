package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/artshoppe/storefront/internal/api/middleware"
	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/gate"
)

// ctxAdmin extracts the identity the Gate placed on the context and
// performs a fast-fail check before any service call. A missing role means
// the route was mounted outside the Gate.
func ctxAdmin(c echo.Context) (userID string, role domain.Role, err error) {
	r, _ := c.Get(middleware.CtxRole).(string)
	role = domain.Role(r)
	if !role.Valid() {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing admin session")
	}
	userID, _ = c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "admin session missing user identity")
	}
	return userID, role, nil
}

// ctxNonce returns the per-request CSP nonce set by the Gate.
func ctxNonce(c echo.Context) string {
	if n, ok := c.Get(middleware.CtxNonce).(string); ok {
		return n
	}
	return c.Request().Header.Get(gate.HeaderNonce)
}
