package db

import (
	"gorm.io/gorm"

	"github.com/snomedcore/ingestion-core/internal/domain/ledger"
)

func AutoMigrateAll(db *gorm.DB) error {
	return ledger.AutoMigrate(db)
}
