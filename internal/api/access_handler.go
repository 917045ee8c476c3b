package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/praxiscrm/praxis/internal/access"
	"github.com/praxiscrm/praxis/internal/middleware"
	"github.com/praxiscrm/praxis/internal/models"
	apperrors "github.com/praxiscrm/praxis/pkg/errors"
	"github.com/praxiscrm/praxis/pkg/response"
	"github.com/praxiscrm/praxis/pkg/validator"
)

// AccessHandler exposes the access resolver over HTTP.
type AccessHandler struct {
	svc *access.Service
}

// NewAccessHandler constructs an AccessHandler around the resolver service.
func NewAccessHandler(svc *access.Service) (*AccessHandler, error) {
	if svc == nil {
		return nil, errors.New("access handler: service is required")
	}
	return &AccessHandler{svc: svc}, nil
}

type checkRequest struct {
	ResourceKey string `json:"resource_key" validate:"required,resourcekey"`
	Action      string `json:"action" validate:"required"`
	Explain     bool   `json:"explain"`
}

// POST /api/access/check
func (h *AccessHandler) Check(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid request body"))
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	if req.Explain {
		decision, err := h.svc.HasAccessWithReason(ctx, user, req.ResourceKey, req.Action)
		if err != nil {
			response.Error(c, apperrors.FromError(err))
			return
		}
		response.Success(c, http.StatusOK, decision)
		return
	}

	granted, err := h.svc.HasAccess(ctx, user, req.ResourceKey, req.Action)
	if err != nil {
		response.Error(c, apperrors.FromError(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"granted": granted})
}

// GET /api/access/config/:key
func (h *AccessHandler) Config(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	key := c.Param("key")
	config, err := h.svc.GetAccessConfig(c.Request.Context(), user, key)
	if err != nil {
		response.Error(c, apperrors.FromError(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resource_key": key, "config": config})
}

// GET /api/access/resources
func (h *AccessHandler) Resources(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	resources, err := h.svc.GetAvailableResources(c.Request.Context(), user)
	if err != nil {
		response.Error(c, apperrors.FromError(err))
		return
	}
	response.Success(c, http.StatusOK, resources)
}

// GET /api/access/summary
func (h *AccessHandler) Summary(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	summary, err := h.svc.GetUserPermissionsSummary(c.Request.Context(), user)
	if err != nil {
		response.Error(c, apperrors.FromError(err))
		return
	}
	response.Success(c, http.StatusOK, summary)
}

type grantRequest struct {
	ResourceKey string         `json:"resource_key" validate:"required,resourcekey"`
	AccessType  string         `json:"access_type" validate:"required,oneof=permission feature_flag entitlement"`
	Scope       string         `json:"scope" validate:"required,oneof=user role tenant"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	UserID      string         `json:"user_id"`
	RoleID      string         `json:"role_id"`
	TenantID    string         `json:"tenant_id"`
	Enabled     *bool          `json:"enabled"`
	ConfigData  map[string]any `json:"config_data"`
}

// POST /api/access/grants
func (h *AccessHandler) Grant(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid request body"))
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	input := access.GrantInput{
		ResourceKey: req.ResourceKey,
		AccessType:  models.AccessType(req.AccessType),
		Scope:       access.Scope(req.Scope),
		Name:        req.Name,
		Description: req.Description,
		UserID:      req.UserID,
		RoleID:      req.RoleID,
		TenantID:    req.TenantID,
		Enabled:     enabled,
		ConfigData:  req.ConfigData,
	}
	if err := h.svc.GrantAccess(c.Request.Context(), actor, input); err != nil {
		response.Error(c, apperrors.FromError(err))
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"resource_key": req.ResourceKey, "scope": req.Scope})
}

type revokeRequest struct {
	ResourceKey string `json:"resource_key" validate:"required,resourcekey"`
	Scope       string `json:"scope" validate:"required,oneof=user role tenant"`
	UserID      string `json:"user_id"`
	RoleID      string `json:"role_id"`
	TenantID    string `json:"tenant_id"`
}

// DELETE /api/access/grants
func (h *AccessHandler) Revoke(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid request body"))
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	input := access.RevokeInput{
		ResourceKey: req.ResourceKey,
		Scope:       access.Scope(req.Scope),
		UserID:      req.UserID,
		RoleID:      req.RoleID,
		TenantID:    req.TenantID,
	}
	if err := h.svc.RevokeAccess(c.Request.Context(), actor, input); err != nil {
		response.Error(c, apperrors.FromError(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resource_key": req.ResourceKey, "scope": req.Scope})
}
