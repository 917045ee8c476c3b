package models

import "gorm.io/datatypes"

// Tenant is a customer organisation; every non-system user belongs to one.
type Tenant struct {
	BaseModel

	Name   string `gorm:"not null" json:"name"`
	Domain string `gorm:"uniqueIndex" json:"domain"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	PlanID *string `gorm:"type:uuid;index" json:"plan_id"`
	Plan   *Plan   `json:"plan,omitempty"`

	Settings datatypes.JSON `json:"settings"`

	Users []User `gorm:"foreignKey:TenantID" json:"users,omitempty"`
	Roles []Role `gorm:"foreignKey:TenantID" json:"roles,omitempty"`
}
