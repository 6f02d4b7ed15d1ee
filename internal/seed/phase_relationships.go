package seed

import (
	"context"

	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
	"github.com/snomedcore/ingestion-core/internal/rf2"
)

// runRelationshipsPhase streams the relationship file with the same
// line-resume and pause discipline as Phase 1. Edges are awaited
// sequentially (§4.4.3); no dedup is performed on resume, an accepted
// cost of the line-resumable design. When Options.StrictEdgeDedup is set,
// an edge whose (source, destination, label) was already added earlier in
// the same pass over the file is skipped; that set is not kept across a
// pause and resume, so it does not prevent duplicates on resume.
func runRelationshipsPhase(sctx *Context, resumeFromLine, seededSoFar int) (int, bool, error) {
	seeded := seededSoFar
	skipped := 0
	paused := false
	sinceLog := 0
	seenInRun := map[string]struct{}{}

	err := rf2.StreamRelationships(sctx.Ctx, sctx.Files.RelationshipPath, func(ctx context.Context, lineNumber int, row snomed.RelationshipRow) error {
		if lineNumber <= resumeFromLine {
			return nil
		}
		if sctx.pauseRequested() {
			_ = sctx.Store.UpdateRelationshipsProgress(sctx.Dir, lineNumber-1, seeded)
			paused = true
			return errPaused
		}
		if sctx.Options.ActiveOnly && !row.Active {
			return nil
		}
		if row.CharacteristicTypeID != snomed.Inferred {
			return nil
		}

		sourceID, err := sctx.Graph.GetVertexIdByLabelAndPropertyAsync(ctx, snomed.VertexLabelConcept, "conceptId", row.SourceID)
		if err != nil {
			return err
		}
		destID, err := sctx.Graph.GetVertexIdByLabelAndPropertyAsync(ctx, snomed.VertexLabelConcept, "conceptId", row.DestinationID)
		if err != nil {
			return err
		}
		if sourceID == "" || destID == "" {
			skipped++
			return nil
		}

		label := snomed.EdgeLabelDefining
		props := map[string]any{"relationshipTypeId": row.TypeID}
		if row.TypeID == snomed.TypeIDIsA {
			label = snomed.EdgeLabelIsA
			props = nil
		}

		if sctx.Options.StrictEdgeDedup {
			dedupKey := row.SourceID + "|" + row.DestinationID + "|" + label
			if _, seen := seenInRun[dedupKey]; seen {
				return nil
			}
			seenInRun[dedupKey] = struct{}{}
		}

		if _, err := sctx.Graph.AddEdgeAsync(ctx, label, sourceID, destID, props); err != nil {
			return err
		}
		seeded++
		sinceLog++

		if sinceLog >= progressIntervalOrDefault(sctx.Options.ProgressLogInterval) {
			if uErr := sctx.Store.UpdateRelationshipsProgress(sctx.Dir, lineNumber, seeded); uErr != nil {
				return uErr
			}
			sctx.Log.Info("relationships phase progress", "lineNumber", lineNumber, "seeded", seeded, "skipped", skipped)
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
	return seeded, false, nil
}
