package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/artshoppe/storefront/internal/api/metrics"
	"github.com/artshoppe/storefront/internal/api/middleware"
	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/gate"
	"github.com/artshoppe/storefront/internal/core/ports"
	"github.com/artshoppe/storefront/internal/infrastructure/identity"
)

// AuthHandlerConfig wires the login flow. Codec, Registry and Audit may be nil.
type AuthHandlerConfig struct {
	Auth     ports.Authenticator
	Codec    *gate.SessionCodec
	Registry ports.SessionRegistry
	Audit    ports.AuditSink
	TokenTTL time.Duration
	Secure   bool
	Log      zerolog.Logger
}

type AuthHandler struct {
	cfg AuthHandlerConfig
}

func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 8 * time.Hour
	}
	return &AuthHandler{cfg: cfg}
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginPage renders the sign-in form.
//
// @Summary      Admin sign-in page
// @Tags         auth
// @Produce      html
// @Success      200
// @Router       /admin/login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return h.renderLogin(c, http.StatusOK, "", "")
}

// Login checks the credentials, sets the access token cookie and sends the
// browser to the back office.
//
// @Summary      Admin sign-in
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Produce      html
// @Param        body  body  loginRequest  true  "Login credentials"
// @Success      303
// @Failure      400
// @Failure      401
// @Router       /admin/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return h.renderLogin(c, http.StatusBadRequest, "", "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return h.renderLogin(c, http.StatusBadRequest, req.Email, err.Error())
	}

	token, user, err := h.cfg.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failed").Inc()
			h.record(domain.AuditEvent{Kind: domain.AuditLoginFailed, Reason: req.Email, RemoteIP: c.RealIP()})
			return h.renderLogin(c, http.StatusUnauthorized, req.Email, "invalid email or password")
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		h.cfg.Log.Error().Err(err).Msg("login failed")
		return h.renderLogin(c, http.StatusServiceUnavailable, req.Email, "sign-in is temporarily unavailable")
	}

	metrics.LoginsTotal.WithLabelValues("succeeded").Inc()
	h.record(domain.AuditEvent{Kind: domain.AuditLoginSucceeded, UserID: user.ID, RemoteIP: c.RealIP()})

	c.SetCookie(h.cookie(identity.AccessCookieName, token, int(h.cfg.TokenTTL.Seconds())))
	// A session cached for a previous identity must not outlive the sign-in.
	c.SetCookie(h.cookie(gate.SessionCookieName, "", -1))
	return c.Redirect(http.StatusSeeOther, gate.AdminPrefix)
}

// Logout revokes the current admin session and clears both cookies.
//
// @Summary      Admin sign-out
// @Tags         auth
// @Success      303
// @Router       /admin/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if h.cfg.Registry != nil {
		for _, id := range h.sessionIDs(c) {
			if err := h.cfg.Registry.Revoke(c.Request().Context(), id); err != nil {
				h.cfg.Log.Warn().Err(err).Str("session_id", id).Msg("session revoke failed")
			}
		}
	}

	userID, _ := c.Get(middleware.CtxUserID).(string)
	h.record(domain.AuditEvent{Kind: domain.AuditLogout, UserID: userID, RemoteIP: c.RealIP()})

	c.SetCookie(h.cookie(identity.AccessCookieName, "", -1))
	c.SetCookie(h.cookie(gate.SessionCookieName, "", -1))
	return c.Redirect(http.StatusSeeOther, gate.LoginPath)
}

// sessionIDs lists the sessions to revoke: the one the gate authorized this
// request with, and the one in the request cookie when that differs.
func (h *AuthHandler) sessionIDs(c echo.Context) []string {
	var ids []string
	if id, _ := c.Get(middleware.CtxSessionID).(string); id != "" {
		ids = append(ids, id)
	}
	if h.cfg.Codec == nil {
		return ids
	}
	ck, err := c.Cookie(gate.SessionCookieName)
	if err != nil {
		return ids
	}
	entry, err := h.cfg.Codec.Decode(ck.Value)
	if err != nil || entry.ID == "" || (len(ids) > 0 && ids[0] == entry.ID) {
		return ids
	}
	return append(ids, entry.ID)
}

func (h *AuthHandler) renderLogin(c echo.Context, status int, email, msg string) error {
	return c.Render(status, "login", PageData{
		Title: "Sign in",
		Nonce: ctxNonce(c),
		Path:  gate.LoginPath,
		Email: email,
		Error: msg,
	})
}

func (h *AuthHandler) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) record(e domain.AuditEvent) {
	if h.cfg.Audit != nil {
		h.cfg.Audit.Record(e)
	}
}
