package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/praxiscrm/praxis/internal/models"
	apperrors "github.com/praxiscrm/praxis/pkg/errors"
)

var (
	// ErrTenantNotFound indicates the requested tenant does not exist.
	ErrTenantNotFound = errors.New("tenant service: tenant not found")
)

// CreateTenantInput captures the attributes required to register a tenant.
type CreateTenantInput struct {
	Name     string
	Domain   string
	PlanCode string
	Settings map[string]any
}

// TenantService manages lifecycle operations for tenants.
type TenantService struct {
	db *gorm.DB
}

// NewTenantService constructs a TenantService instance.
func NewTenantService(db *gorm.DB) (*TenantService, error) {
	if db == nil {
		return nil, errors.New("tenant service: db is required")
	}
	return &TenantService{db: db}, nil
}

// Create registers a new tenant, optionally subscribing it to a plan by code.
func (s *TenantService) Create(ctx context.Context, input CreateTenantInput) (*models.Tenant, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New("tenant service: name is required")
	}
	domain := strings.ToLower(strings.TrimSpace(input.Domain))
	if domain == "" {
		return nil, errors.New("tenant service: domain is required")
	}

	tenant := models.Tenant{
		Name:     name,
		Domain:   domain,
		IsActive: true,
	}

	if input.Settings != nil {
		encoded, err := json.Marshal(input.Settings)
		if err != nil {
			return nil, fmt.Errorf("tenant service: marshal settings: %w", err)
		}
		tenant.Settings = encoded
	}

	if code := strings.TrimSpace(input.PlanCode); code != "" {
		var plan models.Plan
		if err := s.db.WithContext(ctx).First(&plan, "code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPlanNotFound
			}
			return nil, fmt.Errorf("tenant service: load plan: %w", err)
		}
		tenant.PlanID = &plan.ID
	}

	if err := s.db.WithContext(ctx).Create(&tenant).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("tenant domain %q is already registered", domain))
		}
		return nil, fmt.Errorf("tenant service: create tenant: %w", err)
	}

	return &tenant, nil
}

// Get loads a tenant with its plan preloaded.
func (s *TenantService) Get(ctx context.Context, tenantID string) (*models.Tenant, error) {
	ctx = ensureContext(ctx)

	var tenant models.Tenant
	if err := s.db.WithContext(ctx).
		Preload("Plan").
		First(&tenant, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("tenant service: load tenant: %w", err)
	}
	return &tenant, nil
}

// List returns every tenant ordered by name.
func (s *TenantService) List(ctx context.Context) ([]models.Tenant, error) {
	ctx = ensureContext(ctx)

	var tenants []models.Tenant
	if err := s.db.WithContext(ctx).
		Order("name ASC").
		Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("tenant service: list tenants: %w", err)
	}
	return tenants, nil
}
