package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/praxiscrm/praxis/internal/access"
	apperrors "github.com/praxiscrm/praxis/pkg/errors"
	"github.com/praxiscrm/praxis/pkg/response"
)

// RequireAccess guards a route behind an access decision for the given
// resource key and action. The user must already be attached by Identity.
func RequireAccess(svc *access.Service, resourceKey, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		allowed, err := svc.HasAccess(c.Request.Context(), user, resourceKey, action)
		if err != nil {
			response.Error(c, apperrors.Wrap(err, "access check failed"))
			c.Abort()
			return
		}
		if !allowed {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
