package models

// Role belongs to a tenant (nil TenantID means a system-wide role) and may
// inherit from a parent role. Roles form a forest per tenant.
type Role struct {
	BaseModel

	Name        string `gorm:"not null;index:idx_role_tenant_name,priority:2" json:"name"`
	Description string `json:"description"`

	TenantID *string `gorm:"type:uuid;index:idx_role_tenant_name,priority:1" json:"tenant_id"`
	Tenant   *Tenant `json:"tenant,omitempty"`

	ParentID *string `gorm:"type:uuid;index" json:"parent_id"`
	Parent   *Role   `json:"parent,omitempty"`

	IsSystemRole bool `gorm:"default:false" json:"is_system_role"`
	IsAssignable bool `gorm:"default:true" json:"is_assignable"`

	// Permissions are application permissions attached to the role itself,
	// used by the direct codename check.
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`

	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}
