package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/praxiscrm/praxis/internal/cache"
	"github.com/praxiscrm/praxis/internal/models"
	"github.com/praxiscrm/praxis/pkg/logger"
	"github.com/praxiscrm/praxis/pkg/metrics"
)

const (
	defaultDecisionTTL = 300 * time.Second

	billingPrefix       = "billing."
	billingDashboardKey = "billing.dashboard"
	billingAdminSegment = ".admin."
	billingModule       = "billing"
)

// Service is the unified access control resolver. It is stateless and safe
// for concurrent use; the decision cache is the only shared mutable state.
type Service struct {
	store Store
	cache cache.Store
	perms DirectPermissionChecker
	plans PlanAccessor
	audit AuditRecorder

	ttl time.Duration
	log *zap.Logger
}

// Option customises the Service.
type Option func(*Service)

// WithDecisionTTL overrides the decision cache expiry.
func WithDecisionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger injects a logger, primarily for testing.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithAudit attaches an audit recorder for grant mutations.
func WithAudit(audit AuditRecorder) Option {
	return func(s *Service) {
		s.audit = audit
	}
}

// WithStore replaces the gorm-backed store, primarily for testing.
func WithStore(store Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// NewService constructs the resolver with its collaborators.
func NewService(db *gorm.DB, cacheStore cache.Store, perms DirectPermissionChecker, plans PlanAccessor, opts ...Option) (*Service, error) {
	if cacheStore == nil {
		return nil, errors.New("access service: cache store is required")
	}

	svc := &Service{
		cache: cacheStore,
		perms: perms,
		plans: plans,
		ttl:   defaultDecisionTTL,
		log:   logger.WithModule("access"),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.store == nil {
		store, err := NewStore(db)
		if err != nil {
			return nil, err
		}
		svc.store = store
	}

	return svc, nil
}

// HasAccess reports whether the user can perform action on the resource key.
// Decisions are memoised in the cache under a per-user key; cache failures
// degrade to a fresh computation.
func (s *Service) HasAccess(ctx context.Context, user *models.User, resourceKey, action string) (bool, error) {
	if user == nil {
		return false, ErrNilUser
	}

	key := decisionCacheKey(user.ID, resourceKey, action)

	if value, found, err := s.cache.Get(ctx, key); err != nil {
		metrics.DecisionCacheLookups.WithLabelValues("error").Inc()
		s.log.Warn("decision cache read failed, computing fresh",
			zap.String("key", key), zap.Error(err))
	} else if found {
		metrics.DecisionCacheLookups.WithLabelValues("hit").Inc()
		return decodeDecision(value), nil
	} else {
		metrics.DecisionCacheLookups.WithLabelValues("miss").Inc()
	}

	granted, err := s.evaluate(ctx, user, resourceKey, action, nil)
	if err != nil {
		metrics.AccessDecisions.WithLabelValues(resourceKey, "error").Inc()
		return false, err
	}

	if err := s.cache.Set(ctx, key, encodeDecision(granted), s.ttl); err != nil {
		s.log.Warn("decision cache write failed",
			zap.String("key", key), zap.Error(err))
	}

	metrics.AccessDecisions.WithLabelValues(resourceKey, resultLabel(granted)).Inc()
	return granted, nil
}

// HasAccessWithReason runs the same algorithm as HasAccess but returns the
// evaluation trace. The boolean outcome is identical for every input; only
// the cache is bypassed so the trace always reflects a full evaluation.
func (s *Service) HasAccessWithReason(ctx context.Context, user *models.User, resourceKey, action string) (*Decision, error) {
	if user == nil {
		return nil, ErrNilUser
	}

	tr := &tracer{}
	granted, err := s.evaluate(ctx, user, resourceKey, action, tr)
	if err != nil {
		return nil, err
	}

	return &Decision{
		Granted: granted,
		Reason:  tr.reason,
		Trace:   tr.steps,
	}, nil
}

// evaluate walks the strict resolution order. A nil tracer skips trace
// accumulation; the control flow is shared so both entry points agree.
func (s *Service) evaluate(ctx context.Context, user *models.User, resourceKey, action string, tr *tracer) (bool, error) {
	if user.IsSuperuser {
		return tr.grant("user is superuser"), nil
	}
	tr.step("user %s is not a superuser", user.ID)

	if codename, ok := directCodename(resourceKey, action); ok {
		allowed, err := s.checkDirect(ctx, user.ID, codename)
		if err != nil {
			tr.step("direct permission check for %s failed, skipping", codename)
		} else if allowed {
			return tr.grant(fmt.Sprintf("direct permission %s", codename)), nil
		} else {
			tr.step("no direct permission %s", codename)
		}
	} else {
		tr.step("resource key %q has no namespace, direct check skipped", resourceKey)
	}

	def, err := s.store.FindDefinitionByKey(ctx, resourceKey)
	if err != nil {
		return false, err
	}
	if def == nil {
		tr.deny(fmt.Sprintf("no access definition for %q", resourceKey))
		return false, nil
	}
	tr.step("definition %q is of type %s", resourceKey, def.AccessType)

	switch def.AccessType {
	case models.AccessTypeFeatureFlag, models.AccessTypeEntitlement:
		// Role and user scopes never apply to these types, and neither
		// does the plan fallback.
		return s.resolveTenantOnly(ctx, user, def, tr)
	case models.AccessTypePermission:
		granted, err := s.resolvePermission(ctx, user, def, tr)
		if err != nil {
			return false, err
		}
		if granted {
			return true, nil
		}
	}

	return s.billingFallback(ctx, user, resourceKey, tr)
}

// resolveTenantOnly handles feature flags and entitlements: role and user
// scopes never apply to these types.
func (s *Service) resolveTenantOnly(ctx context.Context, user *models.User, def *models.AccessDefinition, tr *tracer) (bool, error) {
	if user.TenantID == nil {
		tr.deny(fmt.Sprintf("user has no tenant, %s denied", def.AccessType))
		return false, nil
	}

	grant, err := s.store.FindTenantGrant(ctx, *user.TenantID, def.ID)
	if err != nil {
		return false, err
	}
	if grant != nil && grant.IsEnabled {
		tr.grant(fmt.Sprintf("tenant grant enables %s %q", def.AccessType, def.Key))
		return true, nil
	}

	tr.deny(fmt.Sprintf("no enabled tenant grant for %q", def.Key))
	return false, nil
}

// resolvePermission applies the user → role chain → tenant precedence for
// permission-type definitions.
func (s *Service) resolvePermission(ctx context.Context, user *models.User, def *models.AccessDefinition, tr *tracer) (bool, error) {
	userGrant, err := s.store.FindUserGrant(ctx, user.ID, def.ID)
	if err != nil {
		return false, err
	}
	if userGrant != nil && userGrant.IsEnabled {
		tr.grant(fmt.Sprintf("user grant enables %q", def.Key))
		return true, nil
	}
	tr.step("no enabled user grant for %q", def.Key)

	chain, err := roleChain(ctx, s.store, user.RoleID)
	if err != nil {
		return false, err
	}
	for _, role := range chain {
		roleGrant, err := s.store.FindRoleGrant(ctx, role.ID, def.ID)
		if err != nil {
			return false, err
		}
		if roleGrant != nil && roleGrant.IsEnabled {
			tr.grant(fmt.Sprintf("role %s grants %q", role.Name, def.Key))
			return true, nil
		}
	}
	tr.step("no enabled role grant for %q across %d role(s)", def.Key, len(chain))

	if user.TenantID != nil {
		tenantGrant, err := s.store.FindTenantGrant(ctx, *user.TenantID, def.ID)
		if err != nil {
			return false, err
		}
		if tenantGrant != nil && tenantGrant.IsEnabled {
			tr.grant(fmt.Sprintf("tenant grant cascades %q to all members", def.Key))
			return true, nil
		}
		tr.step("no enabled tenant grant for %q", def.Key)
	} else {
		tr.step("user has no tenant, tenant scope skipped")
	}

	return false, nil
}

// billingFallback consults the tenant's plan for the reserved "billing."
// namespace. Keys containing an ".admin." segment never fall through to the
// plan, except the dashboard key itself which is always plan-gated.
func (s *Service) billingFallback(ctx context.Context, user *models.User, resourceKey string, tr *tracer) (bool, error) {
	if !strings.HasPrefix(resourceKey, billingPrefix) {
		tr.deny("no matching grant")
		return false, nil
	}
	if user.TenantID == nil {
		tr.deny("billing fallback requires a tenant")
		return false, nil
	}

	if resourceKey != billingDashboardKey && strings.Contains(resourceKey, billingAdminSegment) {
		tr.deny("billing admin keys are never plan-gated")
		return false, nil
	}

	if s.plans == nil {
		tr.deny("no plan accessor configured")
		return false, nil
	}

	enabled, err := s.plans.ModuleEnabled(ctx, *user.TenantID, billingModule)
	if err != nil {
		s.log.Warn("plan lookup failed, denying billing fallback",
			zap.String("tenant_id", *user.TenantID), zap.Error(err))
		tr.deny("plan lookup failed")
		return false, nil
	}

	if enabled {
		tr.grant("plan enables the billing module")
		return true, nil
	}

	tr.deny("plan does not include the billing module")
	return false, nil
}

func (s *Service) checkDirect(ctx context.Context, userID, codename string) (bool, error) {
	if s.perms == nil {
		return false, nil
	}
	allowed, err := s.perms.Check(ctx, userID, codename)
	if err != nil {
		s.log.Warn("direct permission check failed",
			zap.String("codename", codename), zap.Error(err))
		return false, err
	}
	return allowed, nil
}

// directCodename derives the conventional "<namespace>.<action>_<resource>"
// codename by splitting the resource key on its first dot. Keys without a
// dot skip the direct check entirely.
func directCodename(resourceKey, action string) (string, bool) {
	idx := strings.Index(resourceKey, ".")
	if idx <= 0 || idx == len(resourceKey)-1 {
		return "", false
	}
	return resourceKey[:idx] + "." + action + "_" + resourceKey[idx+1:], true
}

func decisionCacheKey(userID, resourceKey, action string) string {
	return fmt.Sprintf("access_%s_%s_%s", userID, resourceKey, action)
}

func encodeDecision(granted bool) []byte {
	if granted {
		return []byte("1")
	}
	return []byte("0")
}

func decodeDecision(value []byte) bool {
	return string(value) == "1"
}

func resultLabel(granted bool) string {
	if granted {
		return "granted"
	}
	return "denied"
}

// tracer accumulates the human-readable evaluation trace. A nil tracer is
// valid and records nothing, so HasAccess pays no formatting cost.
type tracer struct {
	steps  []string
	reason string
}

func (t *tracer) step(format string, args ...any) {
	if t == nil {
		return
	}
	t.steps = append(t.steps, fmt.Sprintf(format, args...))
}

func (t *tracer) grant(reason string) bool {
	if t == nil {
		return true
	}
	t.steps = append(t.steps, "granted: "+reason)
	t.reason = reason
	return true
}

func (t *tracer) deny(reason string) {
	if t == nil {
		return
	}
	t.steps = append(t.steps, "denied: "+reason)
	t.reason = reason
}
