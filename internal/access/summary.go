package access

import (
	"context"

	"github.com/praxiscrm/praxis/internal/models"
)

// Summary is a debugging/UI aggregation of everything access-related known
// about a user.
type Summary struct {
	UserID            string         `json:"user_id"`
	IsSuperuser       bool           `json:"is_superuser"`
	TenantID          *string        `json:"tenant_id,omitempty"`
	RoleChain         []string       `json:"role_chain,omitempty"`
	Resources         []ResourceInfo `json:"resources"`
	DirectPermissions []string       `json:"direct_permissions,omitempty"`
}

// codenameLister is the optional extension a DirectPermissionChecker can
// implement to enumerate a user's permission codenames.
type codenameLister interface {
	CodenamesForUser(ctx context.Context, userID string) ([]string, error)
}

// GetUserPermissionsSummary aggregates the superuser flag, the role chain,
// the visible resource catalog and the user's direct permission codenames.
func (s *Service) GetUserPermissionsSummary(ctx context.Context, user *models.User) (*Summary, error) {
	if user == nil {
		return nil, ErrNilUser
	}

	summary := &Summary{
		UserID:      user.ID,
		IsSuperuser: user.IsSuperuser,
		TenantID:    user.TenantID,
	}

	chain, err := roleChain(ctx, s.store, user.RoleID)
	if err != nil {
		return nil, err
	}
	for _, role := range chain {
		summary.RoleChain = append(summary.RoleChain, role.Name)
	}

	resources, err := s.GetAvailableResources(ctx, user)
	if err != nil {
		return nil, err
	}
	summary.Resources = resources

	if lister, ok := s.perms.(codenameLister); ok && lister != nil {
		codenames, err := lister.CodenamesForUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		summary.DirectPermissions = codenames
	}

	return summary, nil
}
