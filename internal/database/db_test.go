package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/praxiscrm/praxis/internal/models"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestAutoMigrateAndSeed(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	require.NoError(t, AutoMigrateAndSeed(db))

	var plan models.Plan
	require.NoError(t, db.First(&plan, "code = ?", "pro").Error)
	require.True(t, plan.ModuleEnabled("billing"))

	var role models.Role
	require.NoError(t, db.First(&role, "id = ?", "role-admin").Error)
	require.True(t, role.IsSystemRole)

	var def models.AccessDefinition
	require.NoError(t, db.First(&def, "key = ?", "leads.entitlement").Error)
	require.Equal(t, models.AccessTypeEntitlement, def.AccessType)

	// Seeding must be idempotent.
	require.NoError(t, AutoMigrateAndSeed(db))

	var count int64
	require.NoError(t, db.Model(&models.Plan{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "praxis", Name: "praxis"})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "sslmode=disable")

	_, err = buildPostgresDSN(Config{})
	require.Error(t, err)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "praxis", Password: "secret", Name: "praxis"})
	require.NoError(t, err)
	require.Contains(t, dsn, "praxis:secret@tcp(127.0.0.1:3306)/praxis")
	require.Contains(t, dsn, "parseTime=True")

	_, err = buildMySQLDSN(Config{})
	require.Error(t, err)
}
