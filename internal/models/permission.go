package models

// Permission is a conventional application permission identified by a
// codename such as "leads.view_pipeline". It backs the direct-permission
// check that runs before grant resolution.
type Permission struct {
	BaseModel

	Codename    string `gorm:"uniqueIndex;not null" json:"codename"`
	Module      string `gorm:"not null;index" json:"module"`
	Description string `json:"description"`

	Roles []Role `gorm:"many2many:role_permissions;" json:"roles,omitempty"`
	Users []User `gorm:"many2many:user_permissions;" json:"users,omitempty"`
}
