package seed

import (
	"context"

	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
	"github.com/snomedcore/ingestion-core/internal/rf2"
)

type descriptionSlots struct {
	fsn           string
	preferredTerm string
}

// runDescriptionsPhase is not line-resumable (§4.4.2): every resume begins
// at the start of both source files, which is safe because Pass C's
// vertex updates are idempotent.
func runDescriptionsPhase(sctx *Context) (int, bool, error) {
	preferredIDs := map[string]struct{}{}

	if sctx.Files.LanguageRefsetPath != "" {
		paused, err := streamPassA(sctx, preferredIDs)
		if paused || err != nil {
			return 0, paused, err
		}
	}

	conceptDescriptions := map[string]*descriptionSlots{}
	processed := 0
	paused, err := streamPassB(sctx, preferredIDs, conceptDescriptions, &processed)
	if paused || err != nil {
		return processed, paused, err
	}

	if pausedC, err := runPassC(sctx, conceptDescriptions); pausedC || err != nil {
		return processed, pausedC, err
	}

	if uErr := sctx.Store.UpdateDescriptionsProgress(sctx.Dir, processed); uErr != nil {
		return processed, false, uErr
	}
	return processed, false, nil
}

func streamPassA(sctx *Context, preferredIDs map[string]struct{}) (bool, error) {
	paused := false
	err := rf2.StreamLanguageRefset(sctx.Ctx, sctx.Files.LanguageRefsetPath, func(ctx context.Context, lineNumber int, row snomed.LanguageRefsetRow) error {
		if sctx.pauseRequested() {
			paused = true
			return errPaused
		}
		if row.Active && row.RefsetID == sctx.Options.DialectRefsetID && row.AcceptabilityID == snomed.Preferred {
			preferredIDs[row.ReferencedComponentID] = struct{}{}
		}
		return nil
	})
	if paused {
		return true, nil
	}
	return false, err
}

func streamPassB(sctx *Context, preferredIDs map[string]struct{}, conceptDescriptions map[string]*descriptionSlots, processed *int) (bool, error) {
	paused := false
	err := rf2.StreamDescriptions(sctx.Ctx, sctx.Files.DescriptionPath, func(ctx context.Context, lineNumber int, row snomed.DescriptionRow) error {
		if sctx.pauseRequested() {
			paused = true
			return errPaused
		}
		if sctx.Options.ActiveOnly && !row.Active {
			return nil
		}

		slots := conceptDescriptions[row.ConceptID]
		switch {
		case row.TypeID == snomed.TypeIDFSN:
			if slots == nil {
				slots = &descriptionSlots{}
				conceptDescriptions[row.ConceptID] = slots
			}
			slots.fsn = row.Term
		case row.TypeID == snomed.TypeIDSynonym:
			if _, ok := preferredIDs[row.ID]; ok {
				if slots == nil {
					slots = &descriptionSlots{}
					conceptDescriptions[row.ConceptID] = slots
				}
				slots.preferredTerm = row.Term
			}
		}
		*processed++
		return nil
	})
	if paused {
		return true, nil
	}
	return false, err
}

func runPassC(sctx *Context, conceptDescriptions map[string]*descriptionSlots) (bool, error) {
	for conceptID, slots := range conceptDescriptions {
		if sctx.pauseRequested() {
			return true, nil
		}
		if slots.fsn == "" && slots.preferredTerm == "" {
			continue
		}
		vertexID, err := sctx.Graph.GetVertexIdByLabelAndPropertyAsync(sctx.Ctx, snomed.VertexLabelConcept, "conceptId", conceptID)
		if err != nil {
			return false, err
		}
		if vertexID == "" {
			continue
		}
		props := map[string]any{}
		if slots.fsn != "" {
			props["fsn"] = slots.fsn
		}
		if slots.preferredTerm != "" {
			props["preferredTerm"] = slots.preferredTerm
		}
		if _, err := sctx.Graph.UpdateVertexPropertiesAsync(sctx.Ctx, vertexID, props); err != nil {
			return false, err
		}
	}
	return false, nil
}
