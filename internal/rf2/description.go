package rf2

import (
	"context"

	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
)

type DescriptionHandler func(ctx context.Context, lineNumber int, row snomed.DescriptionRow) error

// StreamDescriptions streams sct2_Description_Snapshot*.txt.
func StreamDescriptions(ctx context.Context, path string, handle DescriptionHandler) error {
	return streamLines(ctx, path, func(ctx context.Context, lineNumber int, fields []string) error {
		row, ok := parseDescriptionRow(fields)
		if !ok {
			return nil
		}
		return handle(ctx, lineNumber, row)
	})
}

func parseDescriptionRow(fields []string) (snomed.DescriptionRow, bool) {
	if len(fields) < 9 {
		return snomed.DescriptionRow{}, false
	}
	active, ok := parseActive(fields[2])
	if !ok {
		return snomed.DescriptionRow{}, false
	}
	return snomed.DescriptionRow{
		ID:                 fields[0],
		EffectiveTime:      fields[1],
		Active:             active,
		ModuleID:           fields[3],
		ConceptID:          fields[4],
		LanguageCode:       fields[5],
		TypeID:             fields[6],
		Term:               fields[7],
		CaseSignificanceID: fields[8],
	}, true
}
