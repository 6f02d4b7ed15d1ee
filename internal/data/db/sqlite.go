package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/snomedcore/ingestion-core/internal/platform/envutil"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
)

// SqliteService opens the seed run ledger (§ Supplemented Features):
// an on-disk audit trail, separate from and never consulted by the
// checkpoint-driven resume logic.
type SqliteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSqliteService(logg *logger.Logger) (*SqliteService, error) {
	serviceLog := logg.With("service", "SqliteService")

	path := envutil.String("LEDGER_DB_PATH", "./snomed-ledger.db")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite ledger at %s: %w", path, err)
	}

	return &SqliteService{db: gdb, log: serviceLog}, nil
}

func (s *SqliteService) DB() *gorm.DB { return s.db }

func (s *SqliteService) AutoMigrateAll() error {
	s.log.Info("auto migrating ledger tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("ledger auto migration failed", "error", err)
		return err
	}
	return nil
}
