// Package checkpoint persists the resumable state of a seeding run to a
// single JSON document and guards all mutation behind one mutex (§4.3).
package checkpoint

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
)

const checkpointFileName = ".snomed-seed-checkpoint.json"

// Path returns the checkpoint file location for a given snapshot
// directory: {parent of snapshotDir}/.snomed-seed-checkpoint.json.
func Path(snapshotDir string) string {
	return filepath.Join(filepath.Dir(snapshotDir), checkpointFileName)
}

// Store is the single-writer, mutex-guarded checkpoint manager. Every
// externally visible method acquires the lock once; none holds it across
// an I/O call to another component.
type Store struct {
	mu     sync.Mutex
	cp     *snomed.Checkpoint
	active bool
	log    *logger.Logger
}

func NewStore(log *logger.Logger) *Store {
	return &Store{log: log.With("component", "CheckpointStore")}
}

// GetOrCreate loads an existing, resumable checkpoint for dir, or creates
// a fresh one. A checkpoint only qualifies for resume when its phase is
// not Completed and its stored directory matches dir.
func (s *Store) GetOrCreate(dir string, options snomed.SeedOptions) (*snomed.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active && s.cp != nil && s.cp.Rf2Directory == dir && s.cp.Phase != snomed.PhaseCompleted {
		return cloneCheckpoint(s.cp), nil
	}

	if existing, err := s.load(dir); err == nil && existing != nil {
		if existing.Phase != snomed.PhaseCompleted && existing.Rf2Directory == dir {
			s.cp = existing
			s.active = true
			return cloneCheckpoint(s.cp), nil
		}
	}

	jobID, err := newJobID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	cp := &snomed.Checkpoint{
		JobID:         jobID,
		Phase:         snomed.PhaseNotStarted,
		Rf2Directory:  dir,
		StartedAt:     now,
		LastUpdatedAt: now,
		Options:       options,
	}
	s.cp = cp
	s.active = true
	s.persistLocked(dir)
	return cloneCheckpoint(s.cp), nil
}

// Update applies mutator to the in-memory checkpoint and persists it. A
// no-op when the store is inactive (no running job owns the checkpoint).
func (s *Store) Update(dir string, mutator func(*snomed.Checkpoint)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.cp == nil {
		return nil
	}
	mutator(s.cp)
	s.cp.LastUpdatedAt = time.Now()
	s.persistLocked(dir)
	return nil
}

// AdvancePhase moves the checkpoint to the next phase and resets the
// per-phase line cursor.
func (s *Store) AdvancePhase(dir string, next snomed.Phase) error {
	return s.Update(dir, func(cp *snomed.Checkpoint) {
		cp.Phase = next
		cp.LastProcessedLine = 0
	})
}

func (s *Store) UpdateConceptsProgress(dir string, lineNumber, conceptsSeeded int) error {
	return s.Update(dir, func(cp *snomed.Checkpoint) {
		cp.LastProcessedLine = lineNumber
		cp.ConceptsSeeded = conceptsSeeded
	})
}

func (s *Store) UpdateDescriptionsProgress(dir string, descriptionsProcessed int) error {
	return s.Update(dir, func(cp *snomed.Checkpoint) {
		cp.DescriptionsProcessed = descriptionsProcessed
	})
}

func (s *Store) UpdateRelationshipsProgress(dir string, lineNumber, relationshipsSeeded int) error {
	return s.Update(dir, func(cp *snomed.Checkpoint) {
		cp.LastProcessedLine = lineNumber
		cp.RelationshipsSeeded = relationshipsSeeded
	})
}

// MarkCompleted deletes the checkpoint file and clears in-memory state.
func (s *Store) MarkCompleted(dir string, elapsed time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = os.Remove(Path(dir))
	s.cp = nil
	s.active = false
	return nil
}

func (s *Store) MarkPaused(dir string, elapsed time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cp == nil {
		return nil
	}
	s.cp.Phase = snomed.PhasePaused
	s.cp.PauseRequested = false
	s.cp.ElapsedTime = elapsed
	s.cp.LastUpdatedAt = time.Now()
	s.persistLocked(dir)
	s.active = false
	return nil
}

func (s *Store) MarkFailed(dir string, cause error, elapsed time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cp == nil {
		return nil
	}
	s.cp.Phase = snomed.PhaseFailed
	if cause != nil {
		s.cp.ErrorMessage = cause.Error()
	}
	s.cp.ElapsedTime = elapsed
	s.cp.LastUpdatedAt = time.Now()
	s.persistLocked(dir)
	s.active = false
	return nil
}

// RequestPause sets pauseRequested in memory only; no disk write.
func (s *Store) RequestPause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.cp == nil {
		return
	}
	s.cp.PauseRequested = true
}

func (s *Store) IsPauseRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.cp == nil {
		return false
	}
	return s.cp.PauseRequested
}

// GetStatus prefers the live in-memory checkpoint when it is active and
// matches dir; otherwise it falls back to the on-disk copy. Returns a nil
// checkpoint when neither exists.
func (s *Store) GetStatus(dir string) (*snomed.Checkpoint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active && s.cp != nil && s.cp.Rf2Directory == dir {
		return cloneCheckpoint(s.cp), s.active, nil
	}
	onDisk, err := s.load(dir)
	if err != nil {
		return nil, false, err
	}
	return onDisk, false, nil
}

// ClearCheckpoint deletes the file and clears in-memory state
// unconditionally, regardless of active/phase.
func (s *Store) ClearCheckpoint(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(Path(dir)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("checkpoint: failed to remove file", "error", err)
	}
	s.cp = nil
	s.active = false
	return nil
}

// load reads the on-disk checkpoint for dir. A corrupt file is logged and
// treated as "no checkpoint", never returned as an error to the caller.
func (s *Store) load(dir string) (*snomed.Checkpoint, error) {
	raw, err := os.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		s.log.Warn("checkpoint: failed to read file", "error", err)
		return nil, nil
	}
	var cp snomed.Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		s.log.Warn("checkpoint: corrupt file, treating as absent", "error", err)
		return nil, nil
	}
	return &cp, nil
}

func (s *Store) persistLocked(dir string) {
	if s.cp == nil {
		return
	}
	raw, err := json.MarshalIndent(s.cp, "", "  ")
	if err != nil {
		s.log.Warn("checkpoint: failed to marshal", "error", err)
		return
	}
	path := Path(dir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		s.log.Warn("checkpoint: failed to write file", "error", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.log.Warn("checkpoint: failed to finalize file", "error", err)
	}
}

func cloneCheckpoint(cp *snomed.Checkpoint) *snomed.Checkpoint {
	if cp == nil {
		return nil
	}
	c := *cp
	return &c
}

func newJobID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
