package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/praxiscrm/praxis/internal/app"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()

	cfg, err := app.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "praxis.sqlite")
	cfg.Maintenance.Enabled = false
	return cfg
}

func TestBootstrapRuntimeServesHealth(t *testing.T) {
	cfg := testConfig(t)

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		stack.Shutdown(ctx, zap.NewNop())
	}()

	require.NotNil(t, stack.DB)
	require.NotNil(t, stack.AccessSvc)
	require.NotNil(t, stack.Router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	stack.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBootstrapRuntimeStartsCleaner(t *testing.T) {
	cfg := testConfig(t)
	cfg.Maintenance.Enabled = true

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, stack.Cleaner)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stack.Shutdown(ctx, zap.NewNop())
}

func TestConvertDatabaseConfig(t *testing.T) {
	cfg := &app.Config{}
	cfg.Database.Driver = "PostgreSQL"
	cfg.Database.Postgres = app.DBAuthConfig{
		Host: " db.internal ", Port: 5432, Database: "praxis", Username: "svc", Password: "pw",
	}

	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, 5432, dbCfg.Port)
	require.Equal(t, "praxis", dbCfg.Name)

	cfg = &app.Config{}
	dbCfg = convertDatabaseConfig(cfg)
	require.Equal(t, "sqlite", dbCfg.Driver)
}

func TestLoadApplicationConfigMissingPath(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
