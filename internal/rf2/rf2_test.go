package rf2

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStreamConceptsParsesValidRowsAndSkipsMalformed(t *testing.T) {
	content := "id\teffectiveTime\tactive\tmoduleId\tdefinitionStatusId\n" +
		"138875005\t20020131\t1\t900000000000207008\t900000000000074008\n" +
		"404684003\t20020131\t0\t900000000000207008\t900000000000074008\n" +
		"short\trow\n" +
		"999999999\t20020131\tnotabool\t900000000000207008\t900000000000074008\n"

	path := writeTempFile(t, "sct2_Concept_Snapshot_INT.txt", content)

	var seenIDs []string
	err := StreamConcepts(context.Background(), path, func(ctx context.Context, lineNumber int, row snomed.ConceptRow) error {
		seenIDs = append(seenIDs, row.ID)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"138875005", "404684003"}, seenIDs, "malformed rows must be silently dropped")
}

func TestParseConceptRow(t *testing.T) {
	row, ok := parseConceptRow([]string{"138875005", "20020131", "1", "900000000000207008", "900000000000074008"})
	require.True(t, ok)
	assert.Equal(t, "138875005", row.ID)
	assert.True(t, row.Active)

	_, ok = parseConceptRow([]string{"138875005", "20020131", "1", "900000000000207008"})
	assert.False(t, ok, "too few columns must be dropped")

	_, ok = parseConceptRow([]string{"138875005", "20020131", "2", "900000000000207008", "900000000000074008"})
	assert.False(t, ok, "active flag other than 0/1 must be dropped")
}

func TestParseDescriptionRow(t *testing.T) {
	row, ok := parseDescriptionRow([]string{
		"1", "20020131", "1", "900000000000207008", "138875005",
		"en", "900000000000003001", "SNOMED CT Concept (SNOMED RT+CTV3)", "900000000000448009",
	})
	require.True(t, ok)
	assert.Equal(t, "138875005", row.ConceptID)
	assert.Equal(t, "900000000000003001", row.TypeID)

	_, ok = parseDescriptionRow([]string{"1", "20020131", "1"})
	assert.False(t, ok)
}

func TestParseRelationshipRowDefaultsGroupOnBadInt(t *testing.T) {
	row, ok := parseRelationshipRow([]string{
		"1", "20020131", "1", "900000000000207008", "404684003",
		"138875005", "not-a-number", "116680003", "900000000000011006", "900000000000451002",
	})
	require.True(t, ok)
	assert.Equal(t, 0, row.RelationshipGroup, "non-numeric group must default to 0")
	assert.Equal(t, "116680003", row.TypeID)
}

func TestParseLanguageRefsetRow(t *testing.T) {
	row, ok := parseLanguageRefsetRow([]string{
		"1", "20020131", "1", "900000000000207008", "900000000000509007", "1", "900000000000548007",
	})
	require.True(t, ok)
	assert.Equal(t, "900000000000509007", row.RefsetID)
	assert.Equal(t, "900000000000548007", row.AcceptabilityID)
}

func TestStreamLinesTrimsHeaderAndSkipsBlankLines(t *testing.T) {
	content := "header\n1\t2\t1\t3\t4\n\n5\t6\t0\t7\t8\n"
	path := writeTempFile(t, "sct2_Concept_Snapshot_INT.txt", content)

	var lines []int
	err := streamLines(context.Background(), path, func(ctx context.Context, lineNumber int, fields []string) error {
		lines = append(lines, lineNumber)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, lines, "blank lines must not consume a line number and the header must be skipped")
}

func TestStreamLinesRespectsCancellation(t *testing.T) {
	content := "header\n1\t2\t1\t3\t4\n5\t6\t0\t7\t8\n"
	path := writeTempFile(t, "sct2_Concept_Snapshot_INT.txt", content)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := streamLines(ctx, path, func(ctx context.Context, lineNumber int, fields []string) error {
		t.Fatal("handler must not run once context is already cancelled")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
