package seed

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/snomedcore/ingestion-core/internal/checkpoint"
	"github.com/snomedcore/ingestion-core/internal/data/graph"
	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
	"github.com/snomedcore/ingestion-core/internal/rf2"
)

var tracer = otel.Tracer("snomedcore/ingestion-core/seed")

// errPaused is the sentinel a phase's row handler returns to unwind the
// rf2 stream the moment a pause is observed, without surfacing it as a
// real failure to the caller.
var errPaused = errors.New("seed: paused")

// withPhaseSpan runs fn with sctx.Ctx replaced by a child context carrying
// a span named for the phase being entered, restoring sctx.Ctx afterward.
// Each of the three streaming phases and verification gets its own span
// (§ supplemented features).
func withPhaseSpan(sctx *Context, name string, fn func()) {
	spanCtx, span := tracer.Start(sctx.Ctx, name)
	defer span.End()
	outer := sctx.Ctx
	sctx.Ctx = spanCtx
	fn()
	sctx.Ctx = outer
}

// Deps bundles the pipeline's collaborators.
type Deps struct {
	Store *checkpoint.Store
	Graph graph.Repository
	Log   *logger.Logger
}

// Seed runs the pipeline to completion, to a pause point, or to failure,
// per §4.4's overall contract. The returned error is reserved for
// infrastructure faults that precede phase execution (e.g. failing to
// generate a job id; checkpoint write failures are logged and swallowed
// by the store); business outcomes — paused, failed mid-run,
// or completed — are all encoded in the returned SeedResult with OK=true
// or OK=false.
func Seed(ctx context.Context, deps Deps, snapshotDir string, options snomed.SeedOptions, forceRestart bool) (*snomed.SeedResult, error) {
	if forceRestart {
		_ = deps.Store.ClearCheckpoint(snapshotDir)
	}

	cp, err := deps.Store.GetOrCreate(snapshotDir, options)
	if err != nil {
		return nil, err
	}

	files, err := rf2.Locate(snapshotDir)
	if err != nil {
		_ = deps.Store.MarkFailed(snapshotDir, err, 0)
		return &snomed.SeedResult{OK: false, Error: err.Error()}, nil
	}

	start := time.Now()
	originalPhase := cp.Phase
	originalLine := cp.LastProcessedLine
	originalConcepts := cp.ConceptsSeeded
	originalRelationships := cp.RelationshipsSeeded
	resumePhase := resumePhaseFor(cp)

	sctx := &Context{
		Ctx:     ctx,
		Dir:     snapshotDir,
		Files:   files,
		Options: options,
		Store:   deps.Store,
		Graph:   deps.Graph,
		Log:     deps.Log,
	}

	var concepts, descriptions, relationships int

	if resumePhase <= snomed.PhaseConcepts {
		if err := deps.Store.AdvancePhase(snapshotDir, snomed.PhaseConcepts); err != nil {
			return nil, err
		}
		resumeFromLine, seededSoFar := 0, 0
		if originalPhase == snomed.PhaseConcepts {
			resumeFromLine, seededSoFar = originalLine, originalConcepts
		}
		var count int
		var paused bool
		var phaseErr error
		withPhaseSpan(sctx, "seed.phase.concepts", func() {
			count, paused, phaseErr = runConceptsPhase(sctx, resumeFromLine, seededSoFar)
		})
		concepts = count
		if done, result := handlePhaseOutcome(deps, snapshotDir, start, paused, phaseErr, concepts, descriptions, relationships); done {
			return result, nil
		}
	}

	if resumePhase <= snomed.PhaseDescriptions {
		if err := deps.Store.AdvancePhase(snapshotDir, snomed.PhaseDescriptions); err != nil {
			return nil, err
		}
		var count int
		var paused bool
		var phaseErr error
		withPhaseSpan(sctx, "seed.phase.descriptions", func() {
			count, paused, phaseErr = runDescriptionsPhase(sctx)
		})
		descriptions = count
		if done, result := handlePhaseOutcome(deps, snapshotDir, start, paused, phaseErr, concepts, descriptions, relationships); done {
			return result, nil
		}
	}

	if resumePhase <= snomed.PhaseRelationships {
		if err := deps.Store.AdvancePhase(snapshotDir, snomed.PhaseRelationships); err != nil {
			return nil, err
		}
		resumeFromLine, seededSoFar := 0, 0
		if originalPhase == snomed.PhaseRelationships {
			resumeFromLine, seededSoFar = originalLine, originalRelationships
		}
		var count int
		var paused bool
		var phaseErr error
		withPhaseSpan(sctx, "seed.phase.relationships", func() {
			count, paused, phaseErr = runRelationshipsPhase(sctx, resumeFromLine, seededSoFar)
		})
		relationships = count
		if done, result := handlePhaseOutcome(deps, snapshotDir, start, paused, phaseErr, concepts, descriptions, relationships); done {
			return result, nil
		}
	}

	if options.VerifyAfterSeed {
		_ = deps.Store.AdvancePhase(snapshotDir, snomed.PhaseVerification)
		withPhaseSpan(sctx, "seed.phase.verification", func() {
			if _, vErr := RunVerification(sctx.Ctx, deps.Graph); vErr != nil {
				deps.Log.Warn("post-seed verification failed", "error", vErr)
			}
		})
	}

	_ = deps.Store.MarkCompleted(snapshotDir, time.Since(start))
	return &snomed.SeedResult{
		OK:            true,
		Concepts:      concepts,
		Descriptions:  descriptions,
		Relationships: relationships,
		Duration:      time.Since(start),
	}, nil
}

func handlePhaseOutcome(deps Deps, dir string, start time.Time, paused bool, err error, concepts, descriptions, relationships int) (bool, *snomed.SeedResult) {
	if paused || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		_ = deps.Store.MarkPaused(dir, time.Since(start))
		return true, &snomed.SeedResult{
			OK: true, Error: "Paused",
			Concepts: concepts, Descriptions: descriptions, Relationships: relationships,
			Duration: time.Since(start),
		}
	}
	if err != nil {
		_ = deps.Store.MarkFailed(dir, err, time.Since(start))
		return true, &snomed.SeedResult{
			OK: false, Error: err.Error(),
			Concepts: concepts, Descriptions: descriptions, Relationships: relationships,
			Duration: time.Since(start),
		}
	}
	return false, nil
}

// resumePhaseFor derives which phase execution should resume from, per
// §4.4: NotStarted resumes at Concepts; Paused/Failed resume at the
// highest phase whose counter is non-zero (falling back to Concepts);
// anything else (a phase left in place by a crash with no clean
// pause/fail write) resumes at that same stored phase.
func resumePhaseFor(cp *snomed.Checkpoint) snomed.Phase {
	switch cp.Phase {
	case snomed.PhaseNotStarted:
		return snomed.PhaseConcepts
	case snomed.PhasePaused, snomed.PhaseFailed:
		switch {
		case cp.RelationshipsSeeded > 0:
			return snomed.PhaseRelationships
		case cp.DescriptionsProcessed > 0:
			return snomed.PhaseDescriptions
		case cp.ConceptsSeeded > 0:
			return snomed.PhaseConcepts
		default:
			return snomed.PhaseConcepts
		}
	default:
		return cp.Phase
	}
}
