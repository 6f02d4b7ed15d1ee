package seed

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
	"github.com/snomedcore/ingestion-core/internal/rf2"
)

const conceptFlushConcurrency = 16

type conceptBatchItem struct {
	conceptID string
	props     map[string]any
}

// runConceptsPhase streams the concept file, batching idempotent vertex
// upserts per §4.4.1. resumeFromLine/seededSoFar seed the phase from a
// same-phase crash resume; they are 0 whenever the checkpoint's stored
// phase at Seed entry was not already Concepts (§9 — a clean pause
// restarts the phase, relying on upsert idempotency for correctness).
func runConceptsPhase(sctx *Context, resumeFromLine, seededSoFar int) (int, bool, error) {
	seeded := seededSoFar
	var batch []conceptBatchItem
	paused := false
	sinceLog := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := flushConceptBatch(sctx.Ctx, sctx, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	err := rf2.StreamConcepts(sctx.Ctx, sctx.Files.ConceptPath, func(ctx context.Context, lineNumber int, row snomed.ConceptRow) error {
		if lineNumber <= resumeFromLine {
			return nil
		}
		if sctx.pauseRequested() {
			if fErr := flush(); fErr != nil {
				return fErr
			}
			_ = sctx.Store.UpdateConceptsProgress(sctx.Dir, lineNumber-1, seeded)
			paused = true
			return errPaused
		}
		if sctx.Options.ActiveOnly && !row.Active {
			return nil
		}

		batch = append(batch, conceptBatchItem{
			conceptID: row.ID,
			props: map[string]any{
				"conceptId":     row.ID,
				"active":        row.Active,
				"moduleId":      row.ModuleID,
				"effectiveTime": row.EffectiveTime,
			},
		})
		seeded++
		sinceLog++

		if len(batch) >= batchSizeOrDefault(sctx.Options.BatchSize) {
			if fErr := flush(); fErr != nil {
				return fErr
			}
			if uErr := sctx.Store.UpdateConceptsProgress(sctx.Dir, lineNumber, seeded); uErr != nil {
				return uErr
			}
		}
		if sinceLog >= progressIntervalOrDefault(sctx.Options.ProgressLogInterval) {
			sctx.Log.Info("concepts phase progress", "lineNumber", lineNumber, "seeded", seeded)
			sinceLog = 0
		}
		return nil
	})

	if paused {
		return seeded, true, nil
	}
	if err != nil {
		return seeded, false, err
	}
	if fErr := flush(); fErr != nil {
		return seeded, false, fErr
	}
	return seeded, false, nil
}

// flushConceptBatch dispatches idempotent upserts for the batch with a
// fixed concurrency ceiling of 16 in-flight calls. Any upsert failure
// aborts the flush; surviving upserts may have already committed, which
// is safe because upserts are idempotent on re-run.
func flushConceptBatch(ctx context.Context, sctx *Context, batch []conceptBatchItem) error {
	sem := semaphore.NewWeighted(conceptFlushConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, item := range batch {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func(it conceptBatchItem) {
			defer wg.Done()
			defer sem.Release(1)
			_, err := sctx.Graph.UpsertVertexAndReturnIdAsync(ctx, snomed.VertexLabelConcept, "conceptId", it.conceptID, it.props)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("concepts: upsert %s: %w", it.conceptID, err)
				}
				mu.Unlock()
			}
		}(item)
	}
	wg.Wait()
	return firstErr
}

func batchSizeOrDefault(n int) int {
	if n <= 0 {
		return 1000
	}
	return n
}

func progressIntervalOrDefault(n int) int {
	if n <= 0 {
		return 10000
	}
	return n
}
