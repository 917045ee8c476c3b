package access

import (
	"context"

	"github.com/praxiscrm/praxis/internal/models"
)

// GetAccessConfig returns the effective configuration for a (user, resource)
// pair by shallow-merging config layers in precedence order: tenant, then
// the role chain root to leaf, then the user's own grant. It is independent
// of the grant/deny outcome; callers check access separately.
func (s *Service) GetAccessConfig(ctx context.Context, user *models.User, resourceKey string) (map[string]any, error) {
	if user == nil {
		return nil, ErrNilUser
	}

	merged := make(map[string]any)

	def, err := s.store.FindDefinitionByKey(ctx, resourceKey)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return merged, nil
	}

	if user.TenantID != nil {
		grant, err := s.store.FindTenantGrant(ctx, *user.TenantID, def.ID)
		if err != nil {
			return nil, err
		}
		if grant != nil && grant.IsEnabled {
			mergeConfig(merged, grant.ConfigData)
		}
	}

	chain, err := roleChainRootFirst(ctx, s.store, user.RoleID)
	if err != nil {
		return nil, err
	}
	for _, role := range chain {
		grant, err := s.store.FindRoleGrant(ctx, role.ID, def.ID)
		if err != nil {
			return nil, err
		}
		if grant != nil && grant.IsEnabled {
			mergeConfig(merged, grant.ConfigData)
		}
	}

	userGrant, err := s.store.FindUserGrant(ctx, user.ID, def.ID)
	if err != nil {
		return nil, err
	}
	if userGrant != nil && userGrant.IsEnabled {
		mergeConfig(merged, userGrant.ConfigData)
	}

	return merged, nil
}

// mergeConfig overlays src onto dst key by key. The merge is shallow: nested
// maps replace rather than combine.
func mergeConfig(dst map[string]any, src map[string]any) {
	for key, value := range src {
		dst[key] = value
	}
}
