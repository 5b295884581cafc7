// Package app assembles the storefront from configuration and runs it.
package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/artshoppe/storefront/internal/api"
	"github.com/artshoppe/storefront/internal/api/handler"
	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/gate"
	"github.com/artshoppe/storefront/internal/core/ports"
	"github.com/artshoppe/storefront/internal/core/service"
	"github.com/artshoppe/storefront/internal/infrastructure/db/mongo"
	"github.com/artshoppe/storefront/internal/infrastructure/db/postgres"
	"github.com/artshoppe/storefront/internal/infrastructure/db/redis"
	"github.com/artshoppe/storefront/internal/infrastructure/identity"
	"github.com/artshoppe/storefront/internal/infrastructure/queue"
	"github.com/artshoppe/storefront/internal/pkg/config"
	"github.com/artshoppe/storefront/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var errStoreUnavailable = errors.New("user store unavailable")

type App struct {
	cfg    *config.Config
	log    zerolog.Logger
	echo   *echo.Echo
	audit  *queue.Dispatcher
	closer []func(context.Context)
}

// backends holds whichever stores answered at startup.
type backends struct {
	mongo    *mongodriver.Database
	redis    *goredis.Client
	postgres *sql.DB
}

// New connects to the configured stores and wires the HTTP stack. A store
// that cannot be reached is logged and left out; the gate then denies every
// protected request while public pages keep serving. The process logger
// must be initialised first.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.For("app")
	a := &App{cfg: cfg, log: log}
	b := a.connect(ctx)

	var (
		users     ports.AuthRepository = unavailableUsers{}
		usersUp   bool
		admins    ports.AdminRepository
		auditRepo ports.AuditRepository
		registry  ports.SessionRegistry
	)
	if b.mongo != nil {
		users, usersUp = mongo.NewAuthRepository(b.mongo), true
		auditRepo = mongo.NewAuditRepository(b.mongo)
		if cfg.Store.Admins == "mongo" {
			admins = mongo.NewAdminRepository(b.mongo)
		}
	}
	if b.postgres != nil {
		repo, err := postgres.NewAdminRepository(ctx, b.postgres)
		if err != nil {
			log.Warn().Err(err).Msg("postgres admin store unavailable")
		} else {
			admins = repo
		}
	}
	if b.redis != nil {
		registry = redis.NewSessionRegistry(b.redis)
	}

	var sink ports.AuditSink
	if auditRepo != nil {
		auditLog := logger.For("audit")
		a.audit = queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(auditRepo, auditLog), auditLog)
		sink = a.audit
	}

	sessionKey, err := secretOrEphemeral(cfg.Session.Secret, "SESSION_SECRET", log)
	if err != nil {
		return nil, err
	}
	jwtSecret, err := secretOrEphemeral(cfg.Auth.JWTSecret, "AUTH_JWT_SECRET", log)
	if err != nil {
		return nil, err
	}

	codec, err := gate.NewSessionCodec(sessionKey, cfg.Session.ClockSkew, nil)
	if err != nil {
		return nil, fmt.Errorf("session codec: %w", err)
	}

	var authSvc ports.AuthService = service.NewAuthService(users, string(jwtSecret), cfg.Auth.AccessTokenTTL)
	var (
		idp     ports.IdentityProvider
		authn   ports.Authenticator = authSvc
		hosted  *identity.HostedProvider
		canSeed = usersUp
	)
	if cfg.Identity.Provider == "hosted" {
		hosted, err = identity.NewHostedProvider(identity.HostedConfig{
			BaseURL: cfg.Identity.URL,
			APIKey:  cfg.Identity.APIKey,
			Timeout: cfg.Identity.Timeout,
		})
		if err != nil {
			return nil, err
		}
		// Sign-in must mint the token the hosted provider reads back.
		idp, authn, canSeed = hosted, hosted, true
	} else if usersUp {
		idp = identity.NewTokenProvider(authSvc, users)
	}

	var adminSvc ports.AdminService
	if admins != nil {
		adminCfg := service.AdminServiceConfig{
			Admins:   admins,
			Users:    users,
			Registry: registry,
			Audit:    sink,
			Log:      logger.For("admin"),
		}
		if hosted != nil {
			adminCfg.External = hosted
		}
		adminSvc = service.NewAdminService(adminCfg)
		if canSeed {
			a.bootstrap(ctx, adminSvc)
		}
	}

	authorizer := gate.NewAuthorizer(gate.AuthorizerConfig{
		Identity: idp,
		Admins:   admins,
		Codec:    codec,
		Registry: registry,
		TTL:      cfg.Session.TTL,
		Log:      logger.For("gate"),
	})
	csp := gate.NewCSPBuilder(gate.ParseMode(cfg.Env), gate.Origins{
		Storage:   cfg.CSP.StorageOrigin,
		FontStyle: cfg.CSP.FontStyleOrigins,
		Font:      cfg.CSP.FontOrigins,
		Payment:   cfg.CSP.PaymentOrigins,
	})

	e, err := api.NewRouter(api.Deps{
		Log:           logger.For("http"),
		Authorizer:    authorizer,
		CSP:           csp,
		Codec:         codec,
		Registry:      registry,
		Audit:         sink,
		Authenticator: authn,
		AdminService:  adminSvc,
		Users:         users,
		Health: handler.Dependencies{
			Mongo:    b.mongo,
			Redis:    b.redis,
			Postgres: b.postgres,
		},
		Auth: handler.AuthHandlerConfig{
			TokenTTL: cfg.Auth.AccessTokenTTL,
			Secure:   csp.Mode() == gate.ModeProduction,
		},
	})
	if err != nil {
		return nil, err
	}
	a.echo = e
	return a, nil
}

func (a *App) connect(ctx context.Context) backends {
	var b backends

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: a.cfg.Mongo.URI, Database: a.cfg.Mongo.Database})
	if err != nil {
		a.log.Warn().Err(err).Msg("mongodb unavailable, continuing without users and audit trail")
	} else {
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			a.log.Warn().Err(err).Msg("mongodb index creation failed")
		}
		b.mongo = db
		a.closer = append(a.closer, func(ctx context.Context) { _ = client.Disconnect(ctx) })
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: a.cfg.Redis.Addr, DB: a.cfg.Redis.DB, Password: a.cfg.Redis.Password})
	if err != nil {
		a.log.Warn().Err(err).Msg("redis unavailable, sessions cannot be revoked early")
	} else {
		b.redis = rdb
		a.closer = append(a.closer, func(context.Context) { _ = rdb.Close() })
	}

	if a.cfg.Store.Admins == "postgres" {
		pg, err := postgres.Connect(ctx, postgres.Config{DSN: a.cfg.Postgres.DSN})
		if err != nil {
			a.log.Warn().Err(err).Msg("postgres unavailable, admin routes will deny")
		} else {
			b.postgres = pg
			a.closer = append(a.closer, func(context.Context) { _ = pg.Close() })
		}
	}
	return b
}

func (a *App) bootstrap(ctx context.Context, admins ports.AdminService) {
	if a.cfg.Bootstrap.Email == "" {
		return
	}
	created, err := admins.Bootstrap(ctx, a.cfg.Bootstrap.Email, a.cfg.Bootstrap.Password)
	if err != nil {
		a.log.Error().Err(err).Msg("bootstrap super admin failed")
		return
	}
	if created {
		a.log.Info().Str("email", a.cfg.Bootstrap.Email).Msg("bootstrap super admin created")
	}
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// and the audit queue they fed.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if a.audit != nil {
		a.audit.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Str("env", a.cfg.Env).Msg("http server starting")
		errCh <- a.echo.Start(":" + a.cfg.Port)
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := a.echo.Shutdown(shutdownCtx)
		a.stopAudit(shutdownCtx)
		if err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-errCh:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.stopAudit(shutdownCtx)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server exited: %w", err)
	}
}

// stopAudit flushes queued audit events. It runs after the HTTP server has
// stopped so nothing records into a closed queue.
func (a *App) stopAudit(ctx context.Context) {
	if a.audit == nil {
		return
	}
	if err := a.audit.Stop(ctx); err != nil {
		a.log.Warn().Err(err).Msg("audit queue not fully drained")
	}
}

func (a *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(a.closer) - 1; i >= 0; i-- {
		a.closer[i](ctx)
	}
}

// secretOrEphemeral returns the configured secret, or a random one when it
// is empty. Ephemeral secrets invalidate every session on restart.
func secretOrEphemeral(secret, name string, log zerolog.Logger) ([]byte, error) {
	if secret != "" {
		return []byte(secret), nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate %s: %w", name, err)
	}
	log.Warn().Str("setting", name).Msg("secret not configured, using an ephemeral key")
	return key, nil
}

// unavailableUsers stands in for the user store when MongoDB is down so
// login and back-office calls fail with an error instead of a nil pointer.
type unavailableUsers struct{}

func (unavailableUsers) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, errStoreUnavailable
}

func (unavailableUsers) FindByID(context.Context, string) (*domain.User, error) {
	return nil, errStoreUnavailable
}

func (unavailableUsers) Create(context.Context, *domain.User) (*domain.User, error) {
	return nil, errStoreUnavailable
}
