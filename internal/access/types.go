package access

import (
	"context"
	"errors"
)

// Scope identifies the level at which a grant applies.
type Scope string

const (
	ScopeUser   Scope = "user"
	ScopeRole   Scope = "role"
	ScopeTenant Scope = "tenant"
)

// Valid reports whether the scope is one of the known grant scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeUser, ScopeRole, ScopeTenant:
		return true
	}
	return false
}

var (
	// ErrRoleCycle indicates the role hierarchy contains a parent loop.
	ErrRoleCycle = errors.New("access: role hierarchy cycle detected")
	// ErrUnknownScope indicates a grant mutation named an unsupported scope.
	ErrUnknownScope = errors.New("access: unknown grant scope")
	// ErrNilUser marks a programming error: decisions need a user.
	ErrNilUser = errors.New("access: user is required")
)

// Decision is the outcome of a reasoned access resolution.
type Decision struct {
	Granted bool     `json:"granted"`
	Reason  string   `json:"reason"`
	Trace   []string `json:"trace,omitempty"`
}

// ResourceInfo describes one resource visible to a user.
type ResourceInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DirectPermissionChecker reports whether a user holds a conventional
// application permission codename. The resolver treats it as opaque.
type DirectPermissionChecker interface {
	Check(ctx context.Context, userID, codename string) (bool, error)
}

// PlanAccessor answers plan-level module questions for a tenant, consulted
// only for the reserved "billing." key namespace.
type PlanAccessor interface {
	ModuleEnabled(ctx context.Context, tenantID, module string) (bool, error)
}

// AuditRecorder receives grant mutation events. Implementations must not
// block the mutation path.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry captures a single auditable event.
type AuditEntry struct {
	UserID   string
	TenantID *string
	Action   string
	Resource string
	Result   string
	Metadata map[string]any
}
