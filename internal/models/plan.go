package models

import "gorm.io/datatypes"

// Plan represents a billing plan. Modules maps module names (e.g. "billing",
// "marketing") to an enabled flag consulted by the plan-based access fallback.
type Plan struct {
	BaseModel

	Name string `gorm:"not null" json:"name"`
	Code string `gorm:"uniqueIndex;not null" json:"code"`

	Modules datatypes.JSONMap `json:"modules"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Tenants []Tenant `gorm:"foreignKey:PlanID" json:"tenants,omitempty"`
}

// ModuleEnabled reports whether the named module is switched on for this plan.
func (p *Plan) ModuleEnabled(module string) bool {
	if p == nil || p.Modules == nil {
		return false
	}
	enabled, ok := p.Modules[module].(bool)
	return ok && enabled
}
