package snomed

import (
	"fmt"
	"strings"
	"time"
)

// Phase is the totally ordered seeding phase enum. Paused and Failed are
// sink states reachable from any in-progress phase; they do not compare
// ordinally with the rest of the sequence.
type Phase int

const (
	PhaseNotStarted Phase = 0
	PhaseConcepts   Phase = 1
	PhaseDescriptions Phase = 2
	PhaseRelationships Phase = 3
	PhaseVerification Phase = 4
	PhaseCompleted  Phase = 5
	PhasePaused     Phase = 6
	PhaseFailed     Phase = 7
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseConcepts:
		return "Concepts"
	case PhaseDescriptions:
		return "Descriptions"
	case PhaseRelationships:
		return "Relationships"
	case PhaseVerification:
		return "Verification"
	case PhaseCompleted:
		return "Completed"
	case PhasePaused:
		return "Paused"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	switch s {
	case "NotStarted":
		*p = PhaseNotStarted
	case "Concepts":
		*p = PhaseConcepts
	case "Descriptions":
		*p = PhaseDescriptions
	case "Relationships":
		*p = PhaseRelationships
	case "Verification":
		*p = PhaseVerification
	case "Completed":
		*p = PhaseCompleted
	case "Paused":
		*p = PhasePaused
	case "Failed":
		*p = PhaseFailed
	default:
		return fmt.Errorf("snomed: unknown phase %q", s)
	}
	return nil
}

func (p Phase) IsTerminalProgress() bool {
	switch p {
	case PhaseConcepts, PhaseDescriptions, PhaseRelationships, PhaseVerification:
		return false
	default:
		return true
	}
}

// SeedOptions configures a seeding run. Query-parameter defaults on the
// HTTP surface populate this struct before Seed is invoked.
type SeedOptions struct {
	ActiveOnly       bool   `json:"activeOnly"`
	BatchSize        int    `json:"batchSize"`
	DialectRefsetID  string `json:"dialectRefsetId"`
	VerifyAfterSeed  bool   `json:"verifyAfterSeed"`
	ProgressLogInterval int `json:"progressLogInterval"`
	StrictEdgeDedup  bool   `json:"strictEdgeDedup"`
}

// DefaultSeedOptions mirrors the spec's documented defaults.
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{
		ActiveOnly:          true,
		BatchSize:           1000,
		DialectRefsetID:     USDialectRefset,
		VerifyAfterSeed:     false,
		ProgressLogInterval: 10000,
		StrictEdgeDedup:     false,
	}
}

// Checkpoint is the on-disk, resumable state of a seeding run. Field names
// are camelCase in the persisted JSON document.
type Checkpoint struct {
	JobID                 string      `json:"jobId"`
	Phase                 Phase       `json:"phase"`
	Rf2Directory          string      `json:"rf2Directory"`
	LastProcessedLine     int         `json:"lastProcessedLine"`
	LastConceptID         string      `json:"lastConceptId,omitempty"`
	ConceptsSeeded        int         `json:"conceptsSeeded"`
	DescriptionsProcessed int         `json:"descriptionsProcessed"`
	RelationshipsSeeded   int         `json:"relationshipsSeeded"`
	StartedAt             time.Time   `json:"startedAt"`
	LastUpdatedAt         time.Time   `json:"lastUpdatedAt"`
	ElapsedTime           time.Duration `json:"elapsedTime"`
	ErrorMessage          string      `json:"errorMessage,omitempty"`
	PauseRequested        bool        `json:"pauseRequested"`
	Options               SeedOptions `json:"options"`
}

// SeedResult is returned by Seed.
type SeedResult struct {
	OK            bool          `json:"ok"`
	Error         string        `json:"error,omitempty"`
	Concepts      int           `json:"concepts"`
	Descriptions  int           `json:"descriptions"`
	Relationships int           `json:"relationships"`
	Duration      time.Duration `json:"duration"`
}
