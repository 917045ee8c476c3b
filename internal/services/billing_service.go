package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/praxiscrm/praxis/internal/access"
	"github.com/praxiscrm/praxis/internal/models"
)

var (
	// ErrPlanNotFound indicates the requested plan does not exist.
	ErrPlanNotFound = errors.New("billing service: plan not found")
)

// BillingService resolves plan-level entitlements for tenants. It satisfies
// access.PlanAccessor for the plan-based fallback on "billing." resources.
type BillingService struct {
	db *gorm.DB
}

// NewBillingService constructs a BillingService using the provided database handle.
func NewBillingService(db *gorm.DB) (*BillingService, error) {
	if db == nil {
		return nil, errors.New("billing service: db is required")
	}
	return &BillingService{db: db}, nil
}

var _ access.PlanAccessor = (*BillingService)(nil)

// ModuleEnabled reports whether the tenant's plan switches the named module on.
// A tenant without a plan has no modules.
func (s *BillingService) ModuleEnabled(ctx context.Context, tenantID, module string) (bool, error) {
	ctx = ensureContext(ctx)

	tenantID = normaliseID(tenantID)
	if tenantID == "" {
		return false, nil
	}

	plan, err := s.PlanForTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return plan.ModuleEnabled(module), nil
}

// PlanForTenant loads the plan the tenant is subscribed to. Tenants without a
// plan resolve to nil, which ModuleEnabled treats as all-modules-off.
func (s *BillingService) PlanForTenant(ctx context.Context, tenantID string) (*models.Plan, error) {
	ctx = ensureContext(ctx)

	var tenant models.Tenant
	if err := s.db.WithContext(ctx).
		Preload("Plan").
		First(&tenant, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("billing service: load tenant: %w", err)
	}
	return tenant.Plan, nil
}

// AssignPlan subscribes a tenant to the plan identified by its code.
func (s *BillingService) AssignPlan(ctx context.Context, tenantID, planCode string) error {
	ctx = ensureContext(ctx)

	var plan models.Plan
	if err := s.db.WithContext(ctx).First(&plan, "code = ?", planCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("billing service: load plan: %w", err)
	}

	result := s.db.WithContext(ctx).Model(&models.Tenant{}).
		Where("id = ?", tenantID).
		Update("plan_id", plan.ID)
	if result.Error != nil {
		return fmt.Errorf("billing service: assign plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// ListPlans returns every active plan ordered by name.
func (s *BillingService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	ctx = ensureContext(ctx)

	var plans []models.Plan
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("billing service: list plans: %w", err)
	}
	return plans, nil
}
