package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/snomedcore/ingestion-core/internal/checkpoint"
	"github.com/snomedcore/ingestion-core/internal/data/graph"
	ledgerrepo "github.com/snomedcore/ingestion-core/internal/data/repos/ledger"
	"github.com/snomedcore/ingestion-core/internal/domain/ledger"
	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
	"github.com/snomedcore/ingestion-core/internal/platform/dbctx"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
)

var (
	ErrAlreadyRunning        = errors.New("seed: a job is already running")
	ErrNotRunning            = errors.New("seed: no job is running")
	ErrNoCheckpoint          = errors.New("seed: no checkpoint exists")
	ErrInvalidPhaseForResume = errors.New("seed: checkpoint is not in a resumable phase")
)

// MissingSnapshotError is returned when the configured snapshot directory
// does not exist at the time a seed is requested.
type MissingSnapshotError struct{ Dir string }

func (e *MissingSnapshotError) Error() string {
	return fmt.Sprintf("seed: snapshot directory not found: %s", e.Dir)
}

// Controller is the single-writer job controller (§4.5). At most one
// seeding task may be running at a time; StartSeed enforces this with the
// controller's running flag and returns ErrAlreadyRunning, which the HTTP
// layer maps to 409. Each background task runs with its own
// process-scoped context, decoupled from the HTTP request that started it
// (§4.6, §9): the request's cancellation is never propagated to it.
type Controller struct {
	mu              sync.Mutex
	store           *checkpoint.Store
	graph           graph.Repository
	log             *logger.Logger
	importDirectory string
	running         bool
	cancel          context.CancelFunc
	ledger          *ledgerrepo.Repo
}

func NewController(store *checkpoint.Store, repo graph.Repository, log *logger.Logger, importDirectory string) *Controller {
	return &Controller{
		store:           store,
		graph:           repo,
		log:             log.With("component", "SeedController"),
		importDirectory: importDirectory,
	}
}

// WithLedger attaches a best-effort audit-trail recorder. The ledger is
// purely observational: a nil or failing ledger never affects seeding
// control flow (§ supplemented features).
func (c *Controller) WithLedger(repo *ledgerrepo.Repo) *Controller {
	c.ledger = repo
	return c
}

func (c *Controller) recordEvent(jobID, rf2Directory, phase, message string, result *snomed.SeedResult) {
	if c.ledger == nil {
		return
	}
	event := &ledger.SeedRunEvent{
		JobID:        jobID,
		Rf2Directory: rf2Directory,
		Phase:        phase,
		Message:      message,
	}
	if result != nil {
		event.Concepts = result.Concepts
		event.Descriptions = result.Descriptions
		event.Relationships = result.Relationships
	}
	if err := c.ledger.Record(dbctx.Context{Ctx: context.Background()}, event); err != nil {
		c.log.Warn("ledger write failed, continuing without audit trail", "error", err)
	}
}

// SnapshotDirectory is ImportDirectory + "/Snapshot" (§6.5).
func (c *Controller) SnapshotDirectory() string {
	return filepath.Join(c.importDirectory, "Snapshot")
}

func (c *Controller) Status() *snomed.SnomedSeedStatus {
	cp, active, err := c.store.GetStatus(c.SnapshotDirectory())
	if err != nil {
		c.log.Warn("failed to load checkpoint status", "error", err)
	}
	return snomed.DeriveStatus(cp, active)
}

func (c *Controller) FullStatus(ctx context.Context) *snomed.SnomedFullStatusResponse {
	resp := &snomed.SnomedFullStatusResponse{Job: c.Status()}
	if v, err := RunVerification(ctx, c.graph); err != nil {
		c.log.Warn("verification failed during status", "error", err)
	} else {
		resp.Verification = v
	}
	return resp
}

// IsRunning reports whether a background task launched by this controller
// is still alive, or the checkpoint itself reports a running phase.
func (c *Controller) IsRunning() bool {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()
	if running {
		return true
	}
	status := c.Status()
	return status != nil && status.IsRunning
}

// StartSeed launches the pipeline on a detached, process-scoped context.
// It returns as soon as the checkpoint is obtained/created, matching the
// HTTP layer's "202 immediately, run in background" contract (§4.6).
func (c *Controller) StartSeed(options snomed.SeedOptions, forceRestart bool) (*snomed.SnomedSeedStartedResponse, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, ErrAlreadyRunning
	}

	snapshotDir := c.SnapshotDirectory()
	if _, statErr := os.Stat(snapshotDir); statErr != nil {
		c.mu.Unlock()
		return nil, &MissingSnapshotError{Dir: snapshotDir}
	}

	if forceRestart {
		_ = c.store.ClearCheckpoint(snapshotDir)
	}
	cp, err := c.store.GetOrCreate(snapshotDir, options)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.running = true
	c.mu.Unlock()

	c.recordEvent(cp.JobID, snapshotDir, "started", "", nil)

	go c.runDetached(bgCtx, snapshotDir, cp.JobID, options)

	return &snomed.SnomedSeedStartedResponse{Message: "seed started", JobID: cp.JobID}, nil
}

func (c *Controller) runDetached(ctx context.Context, snapshotDir, jobID string, options snomed.SeedOptions) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("seed task panicked", "recover", r)
			_ = c.store.MarkFailed(snapshotDir, fmt.Errorf("panic: %v", r), 0)
			c.recordEvent(jobID, snapshotDir, "failed", fmt.Sprintf("panic: %v", r), nil)
		}
		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()
	}()

	result, err := Seed(ctx, Deps{Store: c.store, Graph: c.graph, Log: c.log}, snapshotDir, options, false)
	if err != nil {
		c.log.Error("seed task failed to start", "error", err)
		c.recordEvent(jobID, snapshotDir, "failed", err.Error(), nil)
		return
	}
	c.log.Info("seed task finished", "ok", result.OK, "error", result.Error,
		"concepts", result.Concepts, "descriptions", result.Descriptions, "relationships", result.Relationships)
	if result.OK {
		c.recordEvent(jobID, snapshotDir, "finished", "", result)
	} else {
		c.recordEvent(jobID, snapshotDir, "failed", result.Error, result)
	}
}

// RequestPause asks the running task to stop at the next safe point.
func (c *Controller) RequestPause() (*snomed.SnomedSeedStartedResponse, error) {
	if !c.IsRunning() {
		return nil, ErrNotRunning
	}
	c.store.RequestPause()
	status := c.Status()
	jobID := ""
	if status != nil {
		jobID = status.JobID
	}
	c.recordEvent(jobID, c.SnapshotDirectory(), "pause_requested", "", nil)
	return &snomed.SnomedSeedStartedResponse{Message: "pause requested", JobID: jobID}, nil
}

// Resume restarts the pipeline using the checkpoint's own stored options;
// /resume takes no query parameters (§6.3).
func (c *Controller) Resume() (*snomed.SnomedSeedStartedResponse, error) {
	snapshotDir := c.SnapshotDirectory()
	cp, _, err := c.store.GetStatus(snapshotDir)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, ErrNoCheckpoint
	}
	if cp.Phase != snomed.PhasePaused && cp.Phase != snomed.PhaseFailed {
		return nil, ErrInvalidPhaseForResume
	}
	return c.StartSeed(cp.Options, false)
}

// Reseed is equivalent to Seed with forceRestart=true.
func (c *Controller) Reseed(options snomed.SeedOptions) (*snomed.SnomedSeedStartedResponse, error) {
	return c.StartSeed(options, true)
}

func (c *Controller) ClearCheckpoint() error {
	return c.store.ClearCheckpoint(c.SnapshotDirectory())
}

func (c *Controller) Verify(ctx context.Context) (*snomed.SnomedSeedVerification, error) {
	return RunVerification(ctx, c.graph)
}
