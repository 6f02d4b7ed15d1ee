// Package ledger holds the append-only audit trail of seed run activity.
// It is a supplementary record for operators; resume decisions never read
// from it — the JSON checkpoint file remains the sole source of truth for
// resumability.
package ledger

import (
	"time"

	"gorm.io/gorm"
)

// SeedRunEvent is one row per phase transition or terminal outcome
// observed by a seeding task.
type SeedRunEvent struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	JobID         string `gorm:"index;size:64" json:"jobId"`
	Rf2Directory  string `gorm:"size:512" json:"rf2Directory"`
	Phase         string `gorm:"size:32" json:"phase"`
	Concepts      int    `json:"concepts"`
	Descriptions  int    `json:"descriptions"`
	Relationships int    `json:"relationships"`
	Message       string `gorm:"size:1024" json:"message,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&SeedRunEvent{})
}
