package rf2

import (
	"context"

	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
)

// ConceptHandler is invoked once per well-formed concept row, with the
// row's 1-based position among the non-empty lines after the header
// (dropped malformed lines still take a number).
type ConceptHandler func(ctx context.Context, lineNumber int, row snomed.ConceptRow) error

// StreamConcepts streams sct2_Concept_Snapshot*.txt. Rows with fewer than 5
// columns, or whose active column doesn't parse as "0"/"1", are silently
// dropped per the RF2 parser contract.
func StreamConcepts(ctx context.Context, path string, handle ConceptHandler) error {
	return streamLines(ctx, path, func(ctx context.Context, lineNumber int, fields []string) error {
		row, ok := parseConceptRow(fields)
		if !ok {
			return nil
		}
		return handle(ctx, lineNumber, row)
	})
}

func parseConceptRow(fields []string) (snomed.ConceptRow, bool) {
	if len(fields) < 5 {
		return snomed.ConceptRow{}, false
	}
	active, ok := parseActive(fields[2])
	if !ok {
		return snomed.ConceptRow{}, false
	}
	return snomed.ConceptRow{
		ID:                 fields[0],
		EffectiveTime:      fields[1],
		Active:             active,
		ModuleID:           fields[3],
		DefinitionStatusID: fields[4],
	}, true
}
