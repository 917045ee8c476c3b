package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/praxiscrm/praxis/internal/models"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user service: user not found")
)

// UserService loads users for request handling and administration.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// Get loads a user with the associations the resolver consults.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	userID = normaliseID(userID)
	if userID == "" {
		return nil, ErrUserNotFound
	}

	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Role").
		Preload("Tenant").
		First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// ListByTenant returns the active users belonging to a tenant.
func (s *UserService) ListByTenant(ctx context.Context, tenantID string) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}
	return users, nil
}
