package seed

import (
	"context"

	"github.com/snomedcore/ingestion-core/internal/data/graph"
	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
)

// RunVerification computes the §4.4.4 checks. Missing presence conditions
// are accumulated into the Errors slice but never fail the caller —
// verification is advisory.
func RunVerification(ctx context.Context, repo graph.Repository) (*snomed.SnomedSeedVerification, error) {
	v := &snomed.SnomedSeedVerification{}

	total, err := repo.CountVerticesByLabelAsync(ctx, snomed.VertexLabelConcept, nil)
	if err != nil {
		return nil, err
	}
	v.TotalConcepts = total

	active, err := repo.CountVerticesByLabelAsync(ctx, snomed.VertexLabelConcept, map[string]any{"active": true})
	if err != nil {
		return nil, err
	}
	v.ActiveConcepts = active

	rootID, err := repo.GetVertexIdByLabelAndPropertyAsync(ctx, snomed.VertexLabelConcept, "conceptId", snomed.RootConcept)
	if err != nil {
		return nil, err
	}
	v.HasRootConcept = rootID != ""
	if !v.HasRootConcept {
		v.Errors = append(v.Errors, "root concept 138875005 not found")
	}

	clinicalID, err := repo.GetVertexIdByLabelAndPropertyAsync(ctx, snomed.VertexLabelConcept, "conceptId", snomed.ClinicalFindingConcept)
	if err != nil {
		return nil, err
	}
	v.HasClinicalFinding = clinicalID != ""
	if !v.HasClinicalFinding {
		v.Errors = append(v.Errors, "clinical finding concept 404684003 not found")
	}

	// Total/active relationship counts are reported as 0: the consumed
	// graph interface does not yet expose per-label edge counts.
	v.TotalRelationships = 0
	v.ActiveRelationships = 0

	return v, nil
}
