package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/ports"
)

type AdminHandler struct {
	admins ports.AdminService
}

func NewAdminHandler(admins ports.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// createAdminRequest either names a new local account (email and password)
// or links an existing identity-provider user by user_id.
type createAdminRequest struct {
	UserID      string `json:"user_id" validate:"omitempty,max=128"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required_without=UserID,omitempty,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"max=120"`
	Role        string `json:"role" validate:"required,oneof=admin super_admin"`
}

type updateAdminRequest struct {
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=admin super_admin"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type adminResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAdminResponse(r *domain.AdminRecord) adminResponse {
	return adminResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		Email:     r.Email,
		Role:      string(r.Role),
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// List returns every administrator.
//
// @Summary      List administrators
// @Tags         administrators
// @Produce      json
// @Success      200  {array}   adminResponse
// @Failure      401  {object}  map[string]string
// @Router       /admin/api/administrators [get]
func (h *AdminHandler) List(c echo.Context) error {
	if _, _, err := ctxAdmin(c); err != nil {
		return err
	}
	recs, err := h.admins.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]adminResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, toAdminResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Create provisions a new administrator account.
//
// @Summary      Create administrator
// @Tags         administrators
// @Accept       json
// @Produce      json
// @Param        body  body      createAdminRequest  true  "Administrator details"
// @Success      201   {object}  adminResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/api/administrators [post]
func (h *AdminHandler) Create(c echo.Context) error {
	actor, _, err := ctxAdmin(c)
	if err != nil {
		return err
	}

	var req createAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := h.admins.Create(c.Request().Context(), ports.CreateAdminInput{
		UserID:      req.UserID,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        domain.Role(req.Role),
		ActorID:     actor,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAdminResponse(rec))
}

// Update changes an administrator's role or active flag.
//
// @Summary      Update administrator
// @Tags         administrators
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Administrator ID"
// @Param        body  body      updateAdminRequest  true  "Fields to change"
// @Success      200   {object}  adminResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /admin/api/administrators/{id} [patch]
func (h *AdminHandler) Update(c echo.Context) error {
	actor, _, err := ctxAdmin(c)
	if err != nil {
		return err
	}

	var req updateAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Role == nil && req.IsActive == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	in := ports.UpdateAdminInput{ID: c.Param("id"), IsActive: req.IsActive, ActorID: actor}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}

	rec, err := h.admins.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdminResponse(rec))
}
