package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/praxiscrm/praxis/internal/access"
	"github.com/praxiscrm/praxis/internal/database/testutil"
	"github.com/praxiscrm/praxis/internal/models"
)

func TestAuditServiceRecordAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := "tenant-1"

	svc.Record(ctx, access.AuditEntry{
		UserID:   "user-1",
		TenantID: &tenantID,
		Action:   "access.grant",
		Resource: "leads.view",
		Result:   "success",
		Metadata: map[string]any{"scope": "user"},
	})
	svc.Record(ctx, access.AuditEntry{
		UserID:   "user-2",
		Action:   "access.revoke",
		Resource: "deals.manage",
		Result:   "success",
	})

	logs, total, err := svc.List(ctx, AuditListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, logs, 2)

	filtered, total, err := svc.List(ctx, AuditListOptions{
		Filters: AuditFilters{Action: "access.grant"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "leads.view", filtered[0].Resource)
	require.NotNil(t, filtered[0].UserID)
	require.Equal(t, "user-1", *filtered[0].UserID)
	require.Contains(t, string(filtered[0].Metadata), `"scope":"user"`)
}

func TestAuditServiceRecordSurvivesBadMetadata(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	// Channels cannot be marshalled; the entry must still be persisted.
	svc.Record(context.Background(), access.AuditEntry{
		UserID:   "user-1",
		Action:   "access.grant",
		Resource: "leads.view",
		Result:   "success",
		Metadata: map[string]any{"bad": make(chan int)},
	})

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAuditServiceCleanupOlderThan(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	ctx := context.Background()
	svc.Record(ctx, access.AuditEntry{UserID: "u", Action: "access.grant", Result: "success"})

	old := models.AuditLog{Action: "access.revoke", Result: "success"}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("id = ?", old.ID).
		Update("created_at", time.Now().AddDate(0, 0, -90)).Error)

	removed, err := svc.CleanupOlderThan(ctx, 30)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, err = svc.CleanupOlderThan(ctx, 0)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
