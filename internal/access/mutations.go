package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/praxiscrm/praxis/internal/models"
	"github.com/praxiscrm/praxis/pkg/metrics"

	"go.uber.org/zap"
)

// GrantInput describes a grant mutation. Scope selects which target field is
// used; the actor is the user whose cached decisions are invalidated.
type GrantInput struct {
	ResourceKey string
	AccessType  models.AccessType
	Scope       Scope

	Name        string
	Description string

	// Target identifiers; exactly one is consulted depending on Scope.
	UserID   string
	RoleID   string
	TenantID string

	Enabled    bool
	ConfigData map[string]any
}

// GrantAccess gets-or-creates the definition for the resource key and
// creates one grant row at the requested scope. The acting user's cached
// decisions are invalidated; other users affected by role or tenant scope
// grants stay stale until the cache TTL expires.
func (s *Service) GrantAccess(ctx context.Context, actor *models.User, input GrantInput) error {
	if actor == nil {
		return ErrNilUser
	}
	if !input.Scope.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownScope, input.Scope)
	}
	if strings.TrimSpace(input.ResourceKey) == "" {
		return fmt.Errorf("access: resource key is required")
	}

	def, err := s.store.GetOrCreateDefinition(ctx, input.ResourceKey, input.Name, input.Description, input.AccessType)
	if err != nil {
		return err
	}

	switch input.Scope {
	case ScopeUser:
		userID := input.UserID
		if userID == "" {
			userID = actor.ID
		}
		err = s.store.CreateUserGrant(ctx, &models.UserGrant{
			UserID:       userID,
			DefinitionID: def.ID,
			IsEnabled:    input.Enabled,
			ConfigData:   input.ConfigData,
		})
	case ScopeRole:
		if input.RoleID == "" {
			return fmt.Errorf("access: role id is required for role scope")
		}
		err = s.store.CreateRoleGrant(ctx, &models.RoleGrant{
			RoleID:       input.RoleID,
			DefinitionID: def.ID,
			IsEnabled:    input.Enabled,
			ConfigData:   input.ConfigData,
		})
	case ScopeTenant:
		tenantID := input.TenantID
		if tenantID == "" && actor.TenantID != nil {
			tenantID = *actor.TenantID
		}
		if tenantID == "" {
			return fmt.Errorf("access: tenant id is required for tenant scope")
		}
		err = s.store.CreateTenantGrant(ctx, &models.TenantGrant{
			TenantID:     tenantID,
			DefinitionID: def.ID,
			IsEnabled:    input.Enabled,
			ConfigData:   input.ConfigData,
		})
	}
	if err != nil {
		return err
	}

	metrics.GrantMutations.WithLabelValues("grant", string(input.Scope)).Inc()
	s.invalidateUserDecisions(ctx, actor.ID)
	s.recordAudit(ctx, actor, "access.grant", input.ResourceKey, map[string]any{
		"scope":       string(input.Scope),
		"access_type": string(input.AccessType),
		"enabled":     input.Enabled,
	})

	return nil
}

// RevokeInput identifies the grant row to remove.
type RevokeInput struct {
	ResourceKey string
	Scope       Scope

	UserID   string
	RoleID   string
	TenantID string
}

// RevokeAccess deletes the matching grant row for the given scope. A missing
// definition or grant is a no-op, not an error.
func (s *Service) RevokeAccess(ctx context.Context, actor *models.User, input RevokeInput) error {
	if actor == nil {
		return ErrNilUser
	}
	if !input.Scope.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownScope, input.Scope)
	}

	def, err := s.store.FindDefinitionByKey(ctx, input.ResourceKey)
	if err != nil {
		return err
	}
	if def == nil {
		return nil
	}

	switch input.Scope {
	case ScopeUser:
		userID := input.UserID
		if userID == "" {
			userID = actor.ID
		}
		err = s.store.DeleteUserGrant(ctx, userID, def.ID)
	case ScopeRole:
		if input.RoleID == "" {
			return fmt.Errorf("access: role id is required for role scope")
		}
		err = s.store.DeleteRoleGrant(ctx, input.RoleID, def.ID)
	case ScopeTenant:
		tenantID := input.TenantID
		if tenantID == "" && actor.TenantID != nil {
			tenantID = *actor.TenantID
		}
		if tenantID == "" {
			return fmt.Errorf("access: tenant id is required for tenant scope")
		}
		err = s.store.DeleteTenantGrant(ctx, tenantID, def.ID)
	}
	if err != nil {
		return err
	}

	metrics.GrantMutations.WithLabelValues("revoke", string(input.Scope)).Inc()
	s.invalidateUserDecisions(ctx, actor.ID)
	s.recordAudit(ctx, actor, "access.revoke", input.ResourceKey, map[string]any{
		"scope": string(input.Scope),
	})

	return nil
}

// invalidateUserDecisions drops every cached decision for the user. Failures
// are logged and otherwise ignored: the TTL bounds any staleness.
func (s *Service) invalidateUserDecisions(ctx context.Context, userID string) {
	pattern := fmt.Sprintf("access_%s_*", userID)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.log.Warn("decision cache invalidation failed",
			zap.String("pattern", pattern), zap.Error(err))
	}
}

func (s *Service) recordAudit(ctx context.Context, actor *models.User, action, resource string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		UserID:   actor.ID,
		TenantID: actor.TenantID,
		Action:   action,
		Resource: resource,
		Result:   "success",
		Metadata: metadata,
	})
}
