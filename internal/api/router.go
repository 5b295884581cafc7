package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/artshoppe/storefront/internal/api/handler"
	"github.com/artshoppe/storefront/internal/api/middleware"
	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/gate"
	"github.com/artshoppe/storefront/internal/core/ports"
)

// Deps carries everything the router wires into handlers. Registry, Audit
// and Users may be nil when the backing store is unavailable.
type Deps struct {
	Log           zerolog.Logger
	Authorizer    *gate.Authorizer
	CSP           *gate.CSPBuilder
	Codec         *gate.SessionCodec
	Registry      ports.SessionRegistry
	Audit         ports.AuditSink
	Authenticator ports.Authenticator
	AdminService  ports.AdminService
	Users         ports.AuthRepository
	Health        handler.Dependencies
	Auth          handler.AuthHandlerConfig
	// Prometheus overrides the default registry for HTTP metrics.
	Prometheus *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	renderer, err := handler.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	e.Renderer = renderer

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	promCfg := echoprometheus.MiddlewareConfig{Namespace: "storefront"}
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Prometheus != nil {
		promCfg.Registerer = d.Prometheus
		gatherer = d.Prometheus
	}
	promMW, err := promCfg.ToMiddleware()
	if err != nil {
		return nil, fmt.Errorf("router: metrics: %w", err)
	}
	e.Use(promMW)
	e.Use(middleware.Gate(middleware.GateConfig{
		Authorizer: d.Authorizer,
		CSP:        d.CSP,
		Audit:      d.Audit,
		Log:        d.Log,
	}))

	// --- Operations ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Health)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Public pages ---
	pages := handler.NewPageHandler(d.Users)
	for _, p := range []struct{ path, name, title string }{
		{"/", "home", "Home"},
		{"/gallery", "gallery", "Gallery"},
		{"/shoppe", "shoppe", "Shoppe"},
		{"/events", "events", "Events"},
		{"/contact", "contact", "Contact"},
		{"/cart", "cart", "Cart"},
		{"/checkout", "checkout", "Checkout"},
	} {
		e.GET(p.path, pages.Page(p.name, p.title))
	}

	// --- Admin sign-in (reachable without a session) ---
	authCfg := d.Auth
	authCfg.Auth = d.Authenticator
	authCfg.Codec = d.Codec
	authCfg.Registry = d.Registry
	authCfg.Audit = d.Audit
	authCfg.Log = d.Log
	authHandler := handler.NewAuthHandler(authCfg)
	e.GET(gate.LoginPath, authHandler.LoginPage)
	e.POST(gate.LoginPath, authHandler.Login)

	// --- Back office (behind the gate) ---
	admin := e.Group(gate.AdminPrefix)
	admin.GET("", pages.Dashboard)
	admin.POST("/logout", authHandler.Logout)

	admins := handler.NewAdminHandler(d.AdminService)
	adminAPI := admin.Group("/api/administrators")
	adminAPI.GET("", admins.List)
	adminAPI.POST("", admins.Create, middleware.RBAC(domain.RoleSuperAdmin))
	adminAPI.PATCH("/:id", admins.Update, middleware.RBAC(domain.RoleSuperAdmin))

	return e, nil
}
