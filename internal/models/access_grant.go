package models

import "gorm.io/datatypes"

// TenantGrant enables a definition for every user of a tenant.
type TenantGrant struct {
	BaseModel

	TenantID     string            `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_grant,priority:1" json:"tenant_id"`
	DefinitionID string            `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_grant,priority:2" json:"definition_id"`
	Definition   *AccessDefinition `gorm:"foreignKey:DefinitionID" json:"definition,omitempty"`

	IsEnabled  bool              `gorm:"default:true" json:"is_enabled"`
	ConfigData datatypes.JSONMap `json:"config_data"`
}

// RoleGrant enables a definition for every user holding the role or one of
// its descendant roles.
type RoleGrant struct {
	BaseModel

	RoleID       string            `gorm:"type:uuid;not null;uniqueIndex:idx_role_grant,priority:1" json:"role_id"`
	DefinitionID string            `gorm:"type:uuid;not null;uniqueIndex:idx_role_grant,priority:2" json:"definition_id"`
	Definition   *AccessDefinition `gorm:"foreignKey:DefinitionID" json:"definition,omitempty"`

	IsEnabled  bool              `gorm:"default:true" json:"is_enabled"`
	ConfigData datatypes.JSONMap `json:"config_data"`
}

// UserGrant enables a definition for one specific user, overriding tenant and
// role grants of the same definition.
type UserGrant struct {
	BaseModel

	UserID       string            `gorm:"type:uuid;not null;uniqueIndex:idx_user_grant,priority:1" json:"user_id"`
	DefinitionID string            `gorm:"type:uuid;not null;uniqueIndex:idx_user_grant,priority:2" json:"definition_id"`
	Definition   *AccessDefinition `gorm:"foreignKey:DefinitionID" json:"definition,omitempty"`

	IsEnabled  bool              `gorm:"default:true" json:"is_enabled"`
	ConfigData datatypes.JSONMap `json:"config_data"`
}
