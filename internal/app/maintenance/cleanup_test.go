package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/praxiscrm/praxis/internal/cache"
	"github.com/praxiscrm/praxis/internal/database/testutil"
	"github.com/praxiscrm/praxis/internal/models"
	"github.com/praxiscrm/praxis/internal/services"
)

func TestCleanerRunOncePurgesCacheAndAudit(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := cache.NewDatabaseStore(db)
	audit, err := services.NewAuditService(db)
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "access_u1_leads.view_view", []byte("1"), 50*time.Millisecond))
	require.NoError(t, store.Set(ctx, "access_u1_deals.manage_manage", []byte("0"), time.Hour))

	old := models.AuditLog{Action: "access.grant", Result: "success"}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("id = ?", old.ID).
		Update("created_at", time.Now().AddDate(0, 0, -120)).Error)
	fresh := models.AuditLog{Action: "access.revoke", Result: "success"}
	require.NoError(t, db.Create(&fresh).Error)

	cleaner := NewCleaner(store, audit,
		WithAuditRetentionDays(30),
		WithNow(func() time.Time { return time.Now().Add(time.Second) }),
	)
	require.NoError(t, cleaner.RunOnce(ctx))

	var cacheRows int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Count(&cacheRows).Error)
	require.EqualValues(t, 1, cacheRows)

	var auditRows int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&auditRows).Error)
	require.EqualValues(t, 1, auditRows)
}

func TestCleanerRunOnceWithNilDependencies(t *testing.T) {
	cleaner := NewCleaner(nil, nil)
	require.NoError(t, cleaner.RunOnce(context.Background()))
}

func TestCleanerStartAndStop(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := cache.NewDatabaseStore(db)
	audit, err := services.NewAuditService(db)
	require.NoError(t, err)

	cleaner := NewCleaner(store, audit,
		WithCacheSchedule("@every 1h"),
		WithAuditSchedule("@every 24h"),
	)
	require.NoError(t, cleaner.Start())

	done := cleaner.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}

func TestCleanerRejectsBadSchedule(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := cache.NewDatabaseStore(db)

	cleaner := NewCleaner(store, nil, WithCacheSchedule("not-a-spec"))
	require.Error(t, cleaner.Start())
}
