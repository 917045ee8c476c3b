package permissions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/praxiscrm/praxis/internal/models"
)

// Sync persists registered permission definitions to the backing database.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("permission: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	defs := GetAll()
	if len(defs) == 0 {
		return nil
	}

	tx := db.WithContext(ctx)
	for _, def := range defs {
		record := models.Permission{
			BaseModel:   models.BaseModel{ID: def.Codename},
			Codename:    def.Codename,
			Module:      def.Module,
			Description: def.Description,
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"codename", "module", "description"}),
		}).Create(&record).Error; err != nil {
			return fmt.Errorf("permission: sync %s: %w", def.Codename, err)
		}
	}

	return nil
}
