package access

import (
	"context"
	"strings"

	"github.com/praxiscrm/praxis/internal/models"
)

// GetAvailableResources projects the de-duplicated list of base resource
// keys visible to the user: tenant-scope feature flags and entitlements,
// permission grants across the full role chain, and direct user permission
// grants. The first occurrence of a base key wins; later sources do not
// overwrite its name or description.
func (s *Service) GetAvailableResources(ctx context.Context, user *models.User) ([]ResourceInfo, error) {
	if user == nil {
		return nil, ErrNilUser
	}

	resources := make([]ResourceInfo, 0)
	if user.TenantID == nil {
		return resources, nil
	}

	seen := make(map[string]struct{})

	add := func(def *models.AccessDefinition) {
		if def == nil {
			return
		}
		base := baseResourceKey(def.Key)
		if _, dup := seen[base]; dup {
			return
		}
		seen[base] = struct{}{}
		resources = append(resources, ResourceInfo{
			Key:         base,
			Name:        def.Name,
			Description: def.Description,
		})
	}

	tenantGrants, err := s.store.ListEnabledTenantGrants(ctx, *user.TenantID)
	if err != nil {
		return nil, err
	}
	for i := range tenantGrants {
		def := tenantGrants[i].Definition
		if def == nil {
			continue
		}
		if def.AccessType == models.AccessTypeFeatureFlag || def.AccessType == models.AccessTypeEntitlement {
			add(def)
		}
	}

	chain, err := roleChain(ctx, s.store, user.RoleID)
	if err != nil {
		return nil, err
	}
	roleGrants, err := s.store.ListEnabledRoleGrants(ctx, roleIDs(chain))
	if err != nil {
		return nil, err
	}
	for i := range roleGrants {
		def := roleGrants[i].Definition
		if def != nil && def.AccessType == models.AccessTypePermission {
			add(def)
		}
	}

	userGrants, err := s.store.ListEnabledUserGrants(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for i := range userGrants {
		def := userGrants[i].Definition
		if def != nil && def.AccessType == models.AccessTypePermission {
			add(def)
		}
	}

	return resources, nil
}

// baseResourceKey truncates a key at its last dot segment, e.g.
// "leads.entitlement" becomes "leads". Keys without a dot pass through.
func baseResourceKey(key string) string {
	idx := strings.LastIndex(key, ".")
	if idx <= 0 {
		return key
	}
	return key[:idx]
}
