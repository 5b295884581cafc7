package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/artshoppe/storefront/internal/api/metrics"
	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/gate"
	"github.com/artshoppe/storefront/internal/core/ports"
)

// Context keys set by Gate for downstream handlers.
const (
	CtxNonce     = "nonce"
	CtxPathname  = "pathname"
	CtxUserID    = "user_id"
	CtxAdminID   = "admin_id"
	CtxRole      = "role"
	CtxSessionID = "session_id"
)

// GateConfig wires the edge gate. Audit may be nil.
type GateConfig struct {
	Authorizer *gate.Authorizer
	CSP        *gate.CSPBuilder
	Audit      ports.AuditSink
	Log        zerolog.Logger
}

// Gate classifies every request, authorizes protected admin paths and
// attaches the security headers. Denied requests are redirected to the
// login page; they never see a 5xx from a failing collaborator.
func Gate(cfg GateConfig) echo.MiddlewareFunc {
	secure := cfg.CSP.Mode() == gate.ModeProduction

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			pathname := gate.CleanPath(req.URL.Path)
			class := gate.Classify(pathname)

			nonce, err := gate.NewNonce()
			if err != nil {
				cfg.Log.Error().Err(err).Msg("nonce generation failed")
				return echo.NewHTTPError(http.StatusInternalServerError)
			}
			req.Header.Set(gate.HeaderNonce, nonce)
			req.Header.Set(gate.HeaderPathname, pathname)
			c.Set(CtxNonce, nonce)
			c.Set(CtxPathname, pathname)
			gate.ApplySecurityHeaders(c.Response().Header(), cfg.CSP.Build(nonce))

			if class != gate.RouteProtected {
				metrics.GateDecisionsTotal.WithLabelValues(class.String(), "allowed").Inc()
				return next(c)
			}

			start := time.Now()
			out := cfg.Authorizer.Authorize(req.Context(), req)
			observeOutcome(out, time.Since(start))
			metrics.GateDecisionsTotal.WithLabelValues(class.String(), outcomeLabel(out)).Inc()

			if !out.Allowed() {
				deny(c, cfg, out, pathname, secure)
				return c.Redirect(http.StatusTemporaryRedirect, gate.LoginPath)
			}

			if out.Token != "" {
				c.SetCookie(sessionCookie(out.Token, int(cfg.Authorizer.TTL().Seconds()), secure))
				record(cfg.Audit, domain.AuditEvent{
					Kind:     domain.AuditGateRevalidated,
					UserID:   out.Session.UserID,
					Path:     pathname,
					RemoteIP: c.RealIP(),
				})
			}

			c.Set(CtxUserID, out.Session.UserID)
			c.Set(CtxAdminID, out.Session.AdminID)
			c.Set(CtxRole, string(out.Session.Role))
			// The session in force for this request, which after a
			// revalidation is not the one in the request cookie.
			c.Set(CtxSessionID, out.Session.ID)
			return next(c)
		}
	}
}

func deny(c echo.Context, cfg GateConfig, out gate.Outcome, pathname string, secure bool) {
	if _, err := c.Cookie(gate.SessionCookieName); err == nil {
		c.SetCookie(sessionCookie("", -1, secure))
	}

	kind := domain.AuditGateDenied
	ev := cfg.Log.Info()
	if out.Decision == gate.Errored {
		kind = domain.AuditGateError
		ev = cfg.Log.Error().Err(out.Cause)
	}
	ev.Str("path", pathname).
		Str("reason", out.Reason).
		Str("remote_ip", c.RealIP()).
		Msg("admin access denied")

	reason := out.Reason
	if out.Cause != nil {
		reason += ": " + out.Cause.Error()
	}
	record(cfg.Audit, domain.AuditEvent{
		Kind:     kind,
		Path:     pathname,
		RemoteIP: c.RealIP(),
		Reason:   reason,
	})
}

func sessionCookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     gate.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func observeOutcome(out gate.Outcome, d time.Duration) {
	result := "miss"
	switch {
	case out.Decision == gate.Errored:
		result = "errored"
	case out.CacheHit:
		result = "hit"
	}
	if out.Decision != gate.Errored {
		metrics.SessionCacheTotal.WithLabelValues(result).Inc()
	}
	metrics.AuthorizeDuration.WithLabelValues(result).Observe(d.Seconds())
}

func outcomeLabel(out gate.Outcome) string {
	switch out.Decision {
	case gate.Authorized:
		return "allowed"
	case gate.Errored:
		return "errored"
	default:
		return "unauthorized"
	}
}

func record(sink ports.AuditSink, e domain.AuditEvent) {
	if sink != nil {
		sink.Record(e)
	}
}
