package access

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/praxiscrm/praxis/internal/cache"
	"github.com/praxiscrm/praxis/internal/database/testutil"
	"github.com/praxiscrm/praxis/internal/models"
)

// memoryStore is a minimal thread-safe cache.Store used by resolver tests.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte

	gets    int
	sets    int
	deletes int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.entries[key] = value
	return nil
}

func (m *memoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *memoryStore) DeletePattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	prefix := pattern
	if n := len(pattern); n > 0 && pattern[n-1] == '*' {
		prefix = pattern[:n-1]
	}
	for key := range m.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(m.entries, key)
		}
	}
	return nil
}

// countingStore wraps a Store and counts definition lookups, the first query
// every resolution performs against the entitlement store.
type countingStore struct {
	Store
	definitionLookups int
}

func (c *countingStore) FindDefinitionByKey(ctx context.Context, key string) (*models.AccessDefinition, error) {
	c.definitionLookups++
	return c.Store.FindDefinitionByKey(ctx, key)
}

type stubPermissionChecker struct {
	grants map[string]bool
	err    error
}

func (s *stubPermissionChecker) Check(_ context.Context, _ string, codename string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.grants[codename], nil
}

type stubPlanAccessor struct {
	modules map[string]bool
	err     error
}

func (s *stubPlanAccessor) ModuleEnabled(_ context.Context, _ string, module string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.modules[module], nil
}

type fixture struct {
	db     *gorm.DB
	svc    *Service
	cache  *memoryStore
	perms  *stubPermissionChecker
	plans  *stubPlanAccessor
	tenant *models.Tenant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	tenant := &models.Tenant{Name: "Acme", Domain: "acme.example.com"}
	require.NoError(t, db.Create(tenant).Error)

	memory := newMemoryStore()
	perms := &stubPermissionChecker{grants: map[string]bool{}}
	plans := &stubPlanAccessor{modules: map[string]bool{}}

	svc, err := NewService(db, memory, perms, plans, WithLogger(zap.NewNop()))
	require.NoError(t, err)

	return &fixture{db: db, svc: svc, cache: memory, perms: perms, plans: plans, tenant: tenant}
}

func (f *fixture) createDefinition(t *testing.T, key string, accessType models.AccessType) *models.AccessDefinition {
	t.Helper()
	def := &models.AccessDefinition{Key: key, Name: key, AccessType: accessType}
	require.NoError(t, f.db.Create(def).Error)
	return def
}

func (f *fixture) createUser(t *testing.T, username string, tenantID *string, roleID *string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@acme.example.com",
		TenantID: tenantID,
		RoleID:   roleID,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *fixture) createRole(t *testing.T, name string, parentID *string) *models.Role {
	t.Helper()
	role := &models.Role{Name: name, TenantID: strPtr(f.tenant.ID), ParentID: parentID}
	require.NoError(t, f.db.Create(role).Error)
	return role
}

func strPtr(s string) *string { return &s }

// requireParity asserts HasAccess and HasAccessWithReason agree, returning
// the shared outcome. The cache is cleared first so both paths evaluate.
func requireParity(t *testing.T, f *fixture, user *models.User, key, action string) bool {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.cache.DeletePattern(ctx, "access_*"))

	granted, err := f.svc.HasAccess(ctx, user, key, action)
	require.NoError(t, err)

	decision, err := f.svc.HasAccessWithReason(ctx, user, key, action)
	require.NoError(t, err)
	require.Equal(t, granted, decision.Granted,
		"HasAccess and HasAccessWithReason disagree for key=%s action=%s", key, action)
	require.NotEmpty(t, decision.Trace)

	return granted
}

// failingCache simulates an unavailable cache backend.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errFailingCache
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errFailingCache
}

func (failingCache) Delete(context.Context, ...string) error {
	return errFailingCache
}

func (failingCache) DeletePattern(context.Context, string) error {
	return errFailingCache
}

var errFailingCache = cacheUnavailableError{}

type cacheUnavailableError struct{}

func (cacheUnavailableError) Error() string { return "cache unavailable" }

var _ cache.Store = (*memoryStore)(nil)
var _ cache.Store = failingCache{}
