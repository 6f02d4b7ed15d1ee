package rf2

import (
	"context"
	"strconv"

	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
)

type RelationshipHandler func(ctx context.Context, lineNumber int, row snomed.RelationshipRow) error

// StreamRelationships streams sct2_Relationship_Snapshot*.txt.
func StreamRelationships(ctx context.Context, path string, handle RelationshipHandler) error {
	return streamLines(ctx, path, func(ctx context.Context, lineNumber int, fields []string) error {
		row, ok := parseRelationshipRow(fields)
		if !ok {
			return nil
		}
		return handle(ctx, lineNumber, row)
	})
}

func parseRelationshipRow(fields []string) (snomed.RelationshipRow, bool) {
	if len(fields) < 10 {
		return snomed.RelationshipRow{}, false
	}
	active, ok := parseActive(fields[2])
	if !ok {
		return snomed.RelationshipRow{}, false
	}
	group, err := strconv.Atoi(fields[6])
	if err != nil {
		group = 0
	}
	return snomed.RelationshipRow{
		ID:                   fields[0],
		EffectiveTime:        fields[1],
		Active:               active,
		ModuleID:             fields[3],
		SourceID:             fields[4],
		DestinationID:        fields[5],
		RelationshipGroup:    group,
		TypeID:               fields[7],
		CharacteristicTypeID: fields[8],
		ModifierID:           fields[9],
	}, true
}
