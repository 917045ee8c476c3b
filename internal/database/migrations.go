package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/praxiscrm/praxis/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Plan{},
		&models.Tenant{},
		&models.Role{},
		&models.Permission{},
		&models.User{},
		&models.AccessDefinition{},
		&models.TenantGrant{},
		&models.RoleGrant{},
		&models.UserGrant{},
		&models.AuditLog{},
		&models.CacheEntry{},
	)
}

// SeedData populates default plans, system roles and core access definitions.
func SeedData(db *gorm.DB) error {
	plans := []models.Plan{
		{
			BaseModel: models.BaseModel{ID: "plan-free"},
			Name:      "Free",
			Code:      "free",
			Modules: datatypes.JSONMap{
				"leads":    true,
				"contacts": true,
			},
		},
		{
			BaseModel: models.BaseModel{ID: "plan-pro"},
			Name:      "Pro",
			Code:      "pro",
			Modules: datatypes.JSONMap{
				"leads":     true,
				"contacts":  true,
				"deals":     true,
				"marketing": true,
				"billing":   true,
			},
		},
	}

	for _, plan := range plans {
		if err := db.Where(models.Plan{Code: plan.Code}).Attrs(plan).FirstOrCreate(&models.Plan{}).Error; err != nil {
			return err
		}
	}

	roles := []models.Role{
		{
			BaseModel:    models.BaseModel{ID: "role-admin"},
			Name:         "Administrator",
			Description:  "Full tenant administration",
			IsSystemRole: true,
		},
		{
			BaseModel:    models.BaseModel{ID: "role-member"},
			Name:         "Member",
			Description:  "Standard member access",
			IsSystemRole: true,
		},
	}

	for _, role := range roles {
		if err := db.Where(models.Role{BaseModel: models.BaseModel{ID: role.ID}}).Attrs(role).FirstOrCreate(&models.Role{}).Error; err != nil {
			return err
		}
	}

	definitions := []models.AccessDefinition{
		{
			BaseModel:   models.BaseModel{ID: "def-leads-entitlement"},
			Key:         "leads.entitlement",
			Name:        "Leads",
			Description: "Lead management module",
			AccessType:  models.AccessTypeEntitlement,
		},
		{
			BaseModel:   models.BaseModel{ID: "def-marketing-campaigns"},
			Key:         "marketing.campaigns",
			Name:        "Marketing Campaigns",
			Description: "Campaign builder feature flag",
			AccessType:  models.AccessTypeFeatureFlag,
		},
		{
			BaseModel:   models.BaseModel{ID: "def-contacts-view"},
			Key:         "contacts.view",
			Name:        "View Contacts",
			Description: "Read access to the contact book",
			AccessType:  models.AccessTypePermission,
		},
		{
			BaseModel:   models.BaseModel{ID: "def-billing-dashboard"},
			Key:         "billing.dashboard",
			Name:        "Billing Dashboard",
			Description: "Plan-gated billing overview",
			AccessType:  models.AccessTypePermission,
		},
		{
			BaseModel:   models.BaseModel{ID: "def-deals-manage"},
			Key:         "deals.manage",
			Name:        "Manage Deals",
			Description: "Create and update deals in the pipeline",
			AccessType:  models.AccessTypePermission,
		},
	}

	for _, def := range definitions {
		if err := db.Where(models.AccessDefinition{BaseModel: models.BaseModel{ID: def.ID}}).
			Attrs(def).FirstOrCreate(&models.AccessDefinition{}).Error; err != nil {
			return err
		}
	}

	return nil
}
