package rf2

import (
	"context"

	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
)

type LanguageRefsetHandler func(ctx context.Context, lineNumber int, row snomed.LanguageRefsetRow) error

// StreamLanguageRefset streams der2_cRefset_LanguageSnapshot*.txt.
func StreamLanguageRefset(ctx context.Context, path string, handle LanguageRefsetHandler) error {
	return streamLines(ctx, path, func(ctx context.Context, lineNumber int, fields []string) error {
		row, ok := parseLanguageRefsetRow(fields)
		if !ok {
			return nil
		}
		return handle(ctx, lineNumber, row)
	})
}

func parseLanguageRefsetRow(fields []string) (snomed.LanguageRefsetRow, bool) {
	if len(fields) < 7 {
		return snomed.LanguageRefsetRow{}, false
	}
	active, ok := parseActive(fields[2])
	if !ok {
		return snomed.LanguageRefsetRow{}, false
	}
	return snomed.LanguageRefsetRow{
		ID:                    fields[0],
		EffectiveTime:         fields[1],
		Active:                active,
		ModuleID:              fields[3],
		RefsetID:              fields[4],
		ReferencedComponentID: fields[5],
		AcceptabilityID:       fields[6],
	}, true
}
