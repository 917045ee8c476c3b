package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User describes a CRM user with resolved tenant membership and role reference.
// Authentication happens upstream; this model carries identity only.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	IsSuperuser bool `gorm:"default:false" json:"is_superuser"`
	IsActive    bool `gorm:"default:true" json:"is_active"`

	TenantID *string `gorm:"type:uuid;index" json:"tenant_id"`
	Tenant   *Tenant `json:"tenant,omitempty"`

	RoleID *string `gorm:"type:uuid;index" json:"role_id"`
	Role   *Role   `json:"role,omitempty"`

	// Permissions are direct application permissions assigned to this user,
	// checked by codename independently of access grants.
	Permissions []Permission `gorm:"many2many:user_permissions;" json:"permissions,omitempty"`

	LastSeenAt *time.Time `json:"last_seen_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
