package ledger

import (
	"github.com/snomedcore/ingestion-core/internal/domain/ledger"
	"github.com/snomedcore/ingestion-core/internal/platform/dbctx"
	"gorm.io/gorm"
)

// Repo is a best-effort recorder: every method swallows its own write
// errors into the return value but never blocks the pipeline — the
// ledger is observability, not control flow.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) resolve(dc dbctx.Context) *gorm.DB {
	if dc.Tx != nil {
		return dc.Tx
	}
	return r.db.WithContext(dc.Ctx)
}

func (r *Repo) Record(dc dbctx.Context, event *ledger.SeedRunEvent) error {
	return r.resolve(dc).Create(event).Error
}

func (r *Repo) ListByJobID(dc dbctx.Context, jobID string) ([]ledger.SeedRunEvent, error) {
	var events []ledger.SeedRunEvent
	if err := r.resolve(dc).Where("job_id = ?", jobID).Order("created_at asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
