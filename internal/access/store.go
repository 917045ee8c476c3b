package access

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/praxiscrm/praxis/internal/models"
)

// Store provides the point lookups the resolver needs. Absent rows are
// returned as nil without an error; access resolution treats them as deny.
type Store interface {
	FindDefinitionByKey(ctx context.Context, key string) (*models.AccessDefinition, error)
	FindTenantGrant(ctx context.Context, tenantID, definitionID string) (*models.TenantGrant, error)
	FindRoleGrant(ctx context.Context, roleID, definitionID string) (*models.RoleGrant, error)
	FindUserGrant(ctx context.Context, userID, definitionID string) (*models.UserGrant, error)
	FindRole(ctx context.Context, roleID string) (*models.Role, error)

	ListEnabledTenantGrants(ctx context.Context, tenantID string) ([]models.TenantGrant, error)
	ListEnabledRoleGrants(ctx context.Context, roleIDs []string) ([]models.RoleGrant, error)
	ListEnabledUserGrants(ctx context.Context, userID string) ([]models.UserGrant, error)

	GetOrCreateDefinition(ctx context.Context, key, name, description string, accessType models.AccessType) (*models.AccessDefinition, error)
	CreateTenantGrant(ctx context.Context, grant *models.TenantGrant) error
	CreateRoleGrant(ctx context.Context, grant *models.RoleGrant) error
	CreateUserGrant(ctx context.Context, grant *models.UserGrant) error
	DeleteTenantGrant(ctx context.Context, tenantID, definitionID string) error
	DeleteRoleGrant(ctx context.Context, roleID, definitionID string) error
	DeleteUserGrant(ctx context.Context, userID, definitionID string) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore builds the gorm-backed entitlement store.
func NewStore(db *gorm.DB) (Store, error) {
	if db == nil {
		return nil, errors.New("access store: db is required")
	}
	return &gormStore{db: db}, nil
}

func (s *gormStore) FindDefinitionByKey(ctx context.Context, key string) (*models.AccessDefinition, error) {
	var def models.AccessDefinition
	err := s.db.WithContext(ctx).Order("created_at ASC").First(&def, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("access store: find definition: %w", err)
	}
	return &def, nil
}

func (s *gormStore) FindTenantGrant(ctx context.Context, tenantID, definitionID string) (*models.TenantGrant, error) {
	var grant models.TenantGrant
	err := s.db.WithContext(ctx).
		First(&grant, "tenant_id = ? AND definition_id = ?", tenantID, definitionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("access store: find tenant grant: %w", err)
	}
	return &grant, nil
}

func (s *gormStore) FindRoleGrant(ctx context.Context, roleID, definitionID string) (*models.RoleGrant, error) {
	var grant models.RoleGrant
	err := s.db.WithContext(ctx).
		First(&grant, "role_id = ? AND definition_id = ?", roleID, definitionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("access store: find role grant: %w", err)
	}
	return &grant, nil
}

func (s *gormStore) FindUserGrant(ctx context.Context, userID, definitionID string) (*models.UserGrant, error) {
	var grant models.UserGrant
	err := s.db.WithContext(ctx).
		First(&grant, "user_id = ? AND definition_id = ?", userID, definitionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("access store: find user grant: %w", err)
	}
	return &grant, nil
}

func (s *gormStore) FindRole(ctx context.Context, roleID string) (*models.Role, error) {
	var role models.Role
	err := s.db.WithContext(ctx).First(&role, "id = ?", roleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("access store: find role: %w", err)
	}
	return &role, nil
}

func (s *gormStore) ListEnabledTenantGrants(ctx context.Context, tenantID string) ([]models.TenantGrant, error) {
	var grants []models.TenantGrant
	err := s.db.WithContext(ctx).
		Preload("Definition").
		Where("tenant_id = ? AND is_enabled = ?", tenantID, true).
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("access store: list tenant grants: %w", err)
	}
	return grants, nil
}

func (s *gormStore) ListEnabledRoleGrants(ctx context.Context, roleIDs []string) ([]models.RoleGrant, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	var grants []models.RoleGrant
	err := s.db.WithContext(ctx).
		Preload("Definition").
		Where("role_id IN ? AND is_enabled = ?", roleIDs, true).
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("access store: list role grants: %w", err)
	}
	return grants, nil
}

func (s *gormStore) ListEnabledUserGrants(ctx context.Context, userID string) ([]models.UserGrant, error) {
	var grants []models.UserGrant
	err := s.db.WithContext(ctx).
		Preload("Definition").
		Where("user_id = ? AND is_enabled = ?", userID, true).
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("access store: list user grants: %w", err)
	}
	return grants, nil
}

func (s *gormStore) GetOrCreateDefinition(ctx context.Context, key, name, description string, accessType models.AccessType) (*models.AccessDefinition, error) {
	if !accessType.Valid() {
		return nil, fmt.Errorf("access store: invalid access type %q", accessType)
	}

	existing, err := s.FindDefinitionByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if name == "" {
		name = key
	}
	def := models.AccessDefinition{
		Key:         key,
		Name:        name,
		Description: description,
		AccessType:  accessType,
	}
	if err := s.db.WithContext(ctx).Create(&def).Error; err != nil {
		return nil, fmt.Errorf("access store: create definition: %w", err)
	}
	return &def, nil
}

func (s *gormStore) CreateTenantGrant(ctx context.Context, grant *models.TenantGrant) error {
	if err := s.db.WithContext(ctx).Create(grant).Error; err != nil {
		return fmt.Errorf("access store: create tenant grant: %w", err)
	}
	return nil
}

func (s *gormStore) CreateRoleGrant(ctx context.Context, grant *models.RoleGrant) error {
	if err := s.db.WithContext(ctx).Create(grant).Error; err != nil {
		return fmt.Errorf("access store: create role grant: %w", err)
	}
	return nil
}

func (s *gormStore) CreateUserGrant(ctx context.Context, grant *models.UserGrant) error {
	if err := s.db.WithContext(ctx).Create(grant).Error; err != nil {
		return fmt.Errorf("access store: create user grant: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteTenantGrant(ctx context.Context, tenantID, definitionID string) error {
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND definition_id = ?", tenantID, definitionID).
		Delete(&models.TenantGrant{}).Error
	if err != nil {
		return fmt.Errorf("access store: delete tenant grant: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteRoleGrant(ctx context.Context, roleID, definitionID string) error {
	err := s.db.WithContext(ctx).
		Where("role_id = ? AND definition_id = ?", roleID, definitionID).
		Delete(&models.RoleGrant{}).Error
	if err != nil {
		return fmt.Errorf("access store: delete role grant: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteUserGrant(ctx context.Context, userID, definitionID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND definition_id = ?", userID, definitionID).
		Delete(&models.UserGrant{}).Error
	if err != nil {
		return fmt.Errorf("access store: delete user grant: %w", err)
	}
	return nil
}
