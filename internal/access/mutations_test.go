package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/praxiscrm/praxis/internal/models"
)

type recordingAudit struct {
	entries []AuditEntry
}

func (r *recordingAudit) Record(_ context.Context, entry AuditEntry) {
	r.entries = append(r.entries, entry)
}

func TestGrantAccessCreatesDefinitionAndGrant(t *testing.T) {
	f := newFixture(t)
	audit := &recordingAudit{}
	WithAudit(audit)(f.svc)

	user := f.createUser(t, "grantee", strPtr(f.tenant.ID), nil)
	ctx := context.Background()

	require.NoError(t, f.svc.GrantAccess(ctx, user, GrantInput{
		ResourceKey: "quotes.view",
		AccessType:  models.AccessTypePermission,
		Scope:       ScopeUser,
		Enabled:     true,
	}))

	var def models.AccessDefinition
	require.NoError(t, f.db.First(&def, "key = ?", "quotes.view").Error)
	require.Equal(t, models.AccessTypePermission, def.AccessType)

	var grant models.UserGrant
	require.NoError(t, f.db.First(&grant, "user_id = ? AND definition_id = ?", user.ID, def.ID).Error)
	require.True(t, grant.IsEnabled)

	require.Len(t, audit.entries, 1)
	require.Equal(t, "access.grant", audit.entries[0].Action)

	granted := requireParity(t, f, user, "quotes.view", "view")
	require.True(t, granted)
}

func TestGrantAccessReusesExistingDefinition(t *testing.T) {
	f := newFixture(t)
	def := f.createDefinition(t, "contacts.view", models.AccessTypePermission)
	user := f.createUser(t, "reuser", strPtr(f.tenant.ID), nil)

	require.NoError(t, f.svc.GrantAccess(context.Background(), user, GrantInput{
		ResourceKey: "contacts.view",
		AccessType:  models.AccessTypePermission,
		Scope:       ScopeUser,
		Enabled:     true,
	}))

	var count int64
	require.NoError(t, f.db.Model(&models.AccessDefinition{}).
		Where("key = ?", "contacts.view").Count(&count).Error)
	require.EqualValues(t, 1, count)

	var grant models.UserGrant
	require.NoError(t, f.db.First(&grant, "user_id = ? AND definition_id = ?", user.ID, def.ID).Error)
}

func TestGrantThenRevokeRestoresPriorDecision(t *testing.T) {
	f := newFixture(t)
	f.createDefinition(t, "deals.manage", models.AccessTypePermission)
	user := f.createUser(t, "roundtrip", strPtr(f.tenant.ID), nil)
	ctx := context.Background()

	before := requireParity(t, f, user, "deals.manage", "manage")
	require.False(t, before)

	require.NoError(t, f.svc.GrantAccess(ctx, user, GrantInput{
		ResourceKey: "deals.manage",
		AccessType:  models.AccessTypePermission,
		Scope:       ScopeUser,
		Enabled:     true,
	}))
	require.True(t, requireParity(t, f, user, "deals.manage", "manage"))

	require.NoError(t, f.svc.RevokeAccess(ctx, user, RevokeInput{
		ResourceKey: "deals.manage",
		Scope:       ScopeUser,
	}))
	require.Equal(t, before, requireParity(t, f, user, "deals.manage", "manage"))
}

func TestGrantInvalidatesActingUserCache(t *testing.T) {
	f := newFixture(t)
	f.createDefinition(t, "contacts.view", models.AccessTypePermission)
	user := f.createUser(t, "invalidated", strPtr(f.tenant.ID), nil)
	ctx := context.Background()

	denied, err := f.svc.HasAccess(ctx, user, "contacts.view", "view")
	require.NoError(t, err)
	require.False(t, denied)

	require.NoError(t, f.svc.GrantAccess(ctx, user, GrantInput{
		ResourceKey: "contacts.view",
		AccessType:  models.AccessTypePermission,
		Scope:       ScopeUser,
		Enabled:     true,
	}))

	// The cached deny for the acting user was dropped by the mutation.
	granted, err := f.svc.HasAccess(ctx, user, "contacts.view", "view")
	require.NoError(t, err)
	require.True(t, granted)
}

func TestTenantScopeMutationLeavesOtherUsersStale(t *testing.T) {
	f := newFixture(t)
	def := f.createDefinition(t, "contacts.view", models.AccessTypePermission)
	actor := f.createUser(t, "actor", strPtr(f.tenant.ID), nil)
	bystander := f.createUser(t, "bystander", strPtr(f.tenant.ID), nil)
	ctx := context.Background()

	denied, err := f.svc.HasAccess(ctx, bystander, "contacts.view", "view")
	require.NoError(t, err)
	require.False(t, denied)

	require.NoError(t, f.svc.GrantAccess(ctx, actor, GrantInput{
		ResourceKey: "contacts.view",
		AccessType:  models.AccessTypePermission,
		Scope:       ScopeTenant,
		TenantID:    f.tenant.ID,
		Enabled:     true,
	}))
	_ = def

	// Invalidation is scoped to the acting user: the bystander's cached
	// deny survives until the TTL expires. This matches the accepted
	// staleness window and is asserted here so a change is deliberate.
	stale, err := f.svc.HasAccess(ctx, bystander, "contacts.view", "view")
	require.NoError(t, err)
	require.False(t, stale)

	require.NoError(t, f.cache.DeletePattern(ctx, "access_*"))
	freshened, err := f.svc.HasAccess(ctx, bystander, "contacts.view", "view")
	require.NoError(t, err)
	require.True(t, freshened)
}

func TestGrantAccessRejectsUnknownScope(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "badscope", strPtr(f.tenant.ID), nil)

	err := f.svc.GrantAccess(context.Background(), user, GrantInput{
		ResourceKey: "leads.view",
		AccessType:  models.AccessTypePermission,
		Scope:       Scope("galaxy"),
		Enabled:     true,
	})
	require.ErrorIs(t, err, ErrUnknownScope)
}

func TestRevokeAccessMissingDefinitionIsNoop(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "noop", strPtr(f.tenant.ID), nil)

	require.NoError(t, f.svc.RevokeAccess(context.Background(), user, RevokeInput{
		ResourceKey: "never.defined",
		Scope:       ScopeUser,
	}))
}

func TestRevokeAccessRoleAndTenantScopes(t *testing.T) {
	f := newFixture(t)
	def := f.createDefinition(t, "deals.manage", models.AccessTypePermission)
	role := f.createRole(t, "Rep", nil)
	user := f.createUser(t, "scoped", strPtr(f.tenant.ID), strPtr(role.ID))
	ctx := context.Background()

	require.NoError(t, f.db.Create(&models.RoleGrant{
		RoleID: role.ID, DefinitionID: def.ID, IsEnabled: true,
	}).Error)
	require.NoError(t, f.db.Create(&models.TenantGrant{
		TenantID: f.tenant.ID, DefinitionID: def.ID, IsEnabled: true,
	}).Error)

	require.NoError(t, f.svc.RevokeAccess(ctx, user, RevokeInput{
		ResourceKey: "deals.manage", Scope: ScopeRole, RoleID: role.ID,
	}))
	require.NoError(t, f.svc.RevokeAccess(ctx, user, RevokeInput{
		ResourceKey: "deals.manage", Scope: ScopeTenant, TenantID: f.tenant.ID,
	}))

	require.False(t, requireParity(t, f, user, "deals.manage", "manage"))
}
