package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/praxiscrm/praxis/internal/access"
	"github.com/praxiscrm/praxis/internal/cache"
	"github.com/praxiscrm/praxis/internal/database/testutil"
	"github.com/praxiscrm/praxis/internal/models"
	"github.com/praxiscrm/praxis/internal/permissions"
	"github.com/praxiscrm/praxis/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type middlewareHarness struct {
	db     *gorm.DB
	users  *services.UserService
	access *access.Service
}

func newMiddlewareHarness(t *testing.T) *middlewareHarness {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	users, err := services.NewUserService(db)
	require.NoError(t, err)

	checker, err := permissions.NewChecker(db)
	require.NoError(t, err)
	billing, err := services.NewBillingService(db)
	require.NoError(t, err)

	svc, err := access.NewService(db, cache.NewDatabaseStore(db), checker, billing)
	require.NoError(t, err)

	return &middlewareHarness{db: db, users: users, access: svc}
}

func (h *middlewareHarness) createUser(t *testing.T, username string, active bool) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@praxis.test",
		IsActive: active,
	}
	require.NoError(t, h.db.Create(user).Error)
	return user
}

func performRequest(router *gin.Engine, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if userID != "" {
		req.Header.Set(UserHeader, userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdentityAttachesUser(t *testing.T) {
	h := newMiddlewareHarness(t)
	user := h.createUser(t, "alice", true)

	router := gin.New()
	router.Use(Identity(h.users))
	router.GET("/probe", func(c *gin.Context) {
		current, ok := CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": current.ID})
	})

	w := performRequest(router, user.ID)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), user.ID)
}

func TestIdentityRejectsMissingHeader(t *testing.T) {
	h := newMiddlewareHarness(t)

	router := gin.New()
	router.Use(Identity(h.users))
	router.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusUnauthorized, performRequest(router, "").Code)
	require.Equal(t, http.StatusUnauthorized, performRequest(router, "no-such-user").Code)
}

func TestIdentityRejectsInactiveUser(t *testing.T) {
	h := newMiddlewareHarness(t)
	user := h.createUser(t, "dormant", false)

	router := gin.New()
	router.Use(Identity(h.users))
	router.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusForbidden, performRequest(router, user.ID).Code)
}

func TestRequireAccessAllowsAndDenies(t *testing.T) {
	h := newMiddlewareHarness(t)
	admin := h.createUser(t, "root", true)
	require.NoError(t, h.db.Model(admin).Update("is_superuser", true).Error)
	admin.IsSuperuser = true
	mortal := h.createUser(t, "mortal", true)

	def := models.AccessDefinition{
		Key: "leads.view", Name: "Leads", AccessType: models.AccessTypePermission,
	}
	require.NoError(t, h.db.Create(&def).Error)

	router := gin.New()
	router.Use(Identity(h.users))
	router.GET("/probe",
		RequireAccess(h.access, "leads.view", "view"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	require.Equal(t, http.StatusOK, performRequest(router, admin.ID).Code)
	require.Equal(t, http.StatusForbidden, performRequest(router, mortal.ID).Code)
}

func TestRequireAccessWithoutIdentity(t *testing.T) {
	h := newMiddlewareHarness(t)

	router := gin.New()
	router.GET("/probe",
		RequireAccess(h.access, "leads.view", "view"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	require.Equal(t, http.StatusUnauthorized, performRequest(router, "").Code)
}

func TestRecoveryConvertsPanics(t *testing.T) {
	router := gin.New()
	router.Use(Recovery())
	router.GET("/probe", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
}
