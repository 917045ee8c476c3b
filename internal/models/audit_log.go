package models

import "gorm.io/datatypes"

// AuditLog records administrative actions such as grant and revoke mutations.
type AuditLog struct {
	BaseModel

	UserID   *string `gorm:"type:uuid;index" json:"user_id"`
	TenantID *string `gorm:"type:uuid;index" json:"tenant_id"`

	Action   string `gorm:"not null;index" json:"action"`
	Resource string `gorm:"index" json:"resource"`
	Result   string `json:"result"`

	Metadata datatypes.JSON `json:"metadata"`
}
