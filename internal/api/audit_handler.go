package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/praxiscrm/praxis/internal/services"
	apperrors "github.com/praxiscrm/praxis/pkg/errors"
	"github.com/praxiscrm/praxis/pkg/response"
)

// AuditHandler exposes read access to the audit trail.
type AuditHandler struct {
	svc *services.AuditService
}

// NewAuditHandler constructs an AuditHandler backed by the audit service.
func NewAuditHandler(db *gorm.DB) (*AuditHandler, error) {
	svc, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	return &AuditHandler{svc: svc}, nil
}

// GET /api/audit
func (h *AuditHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	per, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	var filters services.AuditFilters
	filters.UserID = c.Query("user_id")
	filters.TenantID = c.Query("tenant_id")
	filters.Action = c.Query("action")
	filters.Result = c.Query("result")
	filters.Resource = c.Query("resource")

	if s := c.Query("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			filters.Since = &t
		}
	}
	if u := c.Query("until"); u != "" {
		if t, err := time.Parse(time.RFC3339, u); err == nil {
			filters.Until = &t
		}
	}

	logs, total, err := h.svc.List(c.Request.Context(), services.AuditListOptions{Page: page, PageSize: per, Filters: filters})
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, logs, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}
