package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/meterly-io/meterly/internal/infrastructure/persistence/models"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

// GormAutoMigrateStrategy lets GORM derive the schema from the model structs.
// Development convenience only; it cannot express the FK cascade rules the
// SQL scripts carry, so test and production go through goose.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.automigrate"),
	}
}

// DefaultModels returns every persisted model in dependency order.
func DefaultModels() []interface{} {
	return []interface{}{
		&models.UserModel{},
		&models.TokenLedgerModel{},
		&models.APIKeyModel{},
		&models.PurchaseEventModel{},
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, migrateModels ...interface{}) error {
	if len(migrateModels) == 0 {
		migrateModels = DefaultModels()
	}

	s.logger.Infow("running gorm auto-migration", "models_count", len(migrateModels))

	if err := db.AutoMigrate(migrateModels...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
