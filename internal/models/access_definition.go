package models

import "gorm.io/datatypes"

// AccessType is the closed set of definition kinds the resolver understands.
type AccessType string

const (
	AccessTypePermission  AccessType = "permission"
	AccessTypeFeatureFlag AccessType = "feature_flag"
	AccessTypeEntitlement AccessType = "entitlement"
)

// Valid reports whether the value is one of the known access types.
func (t AccessType) Valid() bool {
	switch t {
	case AccessTypePermission, AccessTypeFeatureFlag, AccessTypeEntitlement:
		return true
	}
	return false
}

func (t AccessType) String() string {
	return string(t)
}

// AccessDefinition is the canonical, scope-independent description of a
// checkable resource. Keys are not globally unique: several scope-specific
// rules may share the same key.
type AccessDefinition struct {
	BaseModel

	Key         string     `gorm:"not null;index" json:"key"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description"`
	AccessType  AccessType `gorm:"type:varchar(32);not null;index" json:"access_type"`

	DefaultEnabled bool           `gorm:"default:false" json:"default_enabled"`
	ConfigSchema   datatypes.JSON `json:"config_schema"`
}
