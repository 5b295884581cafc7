package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler handles GET /health: liveness check.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Dependencies names the backends the readiness check pings. A nil entry
// is reported as "disabled" and does not degrade readiness.
type Dependencies struct {
	Mongo    *mongo.Database
	Redis    *redis.Client
	Postgres *sql.DB
}

// HealthDependenciesHandler handles GET /health/ready: readiness check.
type HealthDependenciesHandler struct {
	deps    Dependencies
	timeout time.Duration
}

func NewHealthDependenciesHandler(deps Dependencies) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{deps: deps, timeout: 3 * time.Second}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness pings every configured dependency.
//
// @Summary      Readiness check
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, 3)
	healthy := true
	check := func(name string, configured bool, ping func(context.Context) error) {
		if !configured {
			deps[name] = dependencyStatus{Status: "disabled"}
			return
		}
		if err := ping(ctx); err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			return
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	check("mongodb", h.deps.Mongo != nil, func(ctx context.Context) error {
		return h.deps.Mongo.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	})
	check("redis", h.deps.Redis != nil, func(ctx context.Context) error {
		return h.deps.Redis.Ping(ctx).Err()
	})
	check("postgres", h.deps.Postgres != nil, func(ctx context.Context) error {
		return h.deps.Postgres.PingContext(ctx)
	})

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
