package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/praxiscrm/praxis/internal/models"
	"github.com/praxiscrm/praxis/internal/services"
	apperrors "github.com/praxiscrm/praxis/pkg/errors"
	"github.com/praxiscrm/praxis/pkg/response"
)

const (
	// CtxUserIDKey is the gin context key holding the authenticated user ID.
	CtxUserIDKey = "userID"
	// CtxUserKey is the gin context key holding the loaded *models.User.
	CtxUserKey = "user"

	// UserHeader carries the caller identity established by the upstream
	// authentication gateway.
	UserHeader = "X-Praxis-User"
)

// Identity resolves the authenticated user from the gateway-set identity
// header and attaches it to the request context. Requests without a valid
// identity are rejected.
func Identity(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserHeader)
		if userID == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		user, err := users.Get(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				response.Error(c, apperrors.ErrUnauthorized)
			} else {
				response.Error(c, apperrors.ErrInternalServer)
			}
			c.Abort()
			return
		}
		if !user.IsActive {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, user.ID)
		c.Set(CtxUserKey, user)
		c.Next()
	}
}

// CurrentUser retrieves the user attached by Identity, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
