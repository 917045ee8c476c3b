package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/praxiscrm/praxis/internal/access"
	"github.com/praxiscrm/praxis/internal/middleware"
	"github.com/praxiscrm/praxis/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers the access
// control routes.
func NewRouter(db *gorm.DB, svc *access.Service, users *services.UserService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if svc == nil {
		return nil, fmt.Errorf("access service must be provided")
	}
	if users == nil {
		return nil, fmt.Errorf("user service must be provided")
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.GET("/health", healthHandler(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	accessHandler, err := NewAccessHandler(svc)
	if err != nil {
		return nil, err
	}
	auditHandler, err := NewAuditHandler(db)
	if err != nil {
		return nil, err
	}

	api := r.Group("/api")
	api.Use(middleware.Identity(users))

	// Grant administration shares one capability; "access.grant" with the
	// "manage" action maps onto the access.manage_grant codename.
	manageGrants := middleware.RequireAccess(svc, "access.grant", "manage")

	ac := api.Group("/access")
	{
		ac.POST("/check", accessHandler.Check)
		ac.GET("/config/:key", accessHandler.Config)
		ac.GET("/resources", accessHandler.Resources)
		ac.GET("/summary", accessHandler.Summary)
		ac.POST("/grants", manageGrants, accessHandler.Grant)
		ac.DELETE("/grants", manageGrants, accessHandler.Revoke)
	}

	api.GET("/audit", manageGrants, auditHandler.List)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": fmt.Sprintf("route %s not found", c.Request.URL.Path),
			},
		})
	})

	return r, nil
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"status":  "degraded",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"status":     "ok",
			"checked_at": time.Now().UTC(),
		})
	}
}
