package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snomedcore/ingestion-core/internal/checkpoint"
	"github.com/snomedcore/ingestion-core/internal/data/graph"
	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	require.NoError(t, err)
	return log
}

// writeSnapshot builds a minimal RF2 Snapshot directory tree and returns
// its path, ready to pass to Seed.
func writeSnapshot(t *testing.T, concepts, descriptions, relationships, languageRefset string) string {
	t.Helper()
	root := t.TempDir()
	snapshotDir := filepath.Join(root, "Snapshot")
	terminology := filepath.Join(snapshotDir, "Terminology")
	require.NoError(t, os.MkdirAll(terminology, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(terminology, "sct2_Concept_Snapshot_INT.txt"),
		[]byte("id\teffectiveTime\tactive\tmoduleId\tdefinitionStatusId\n"+concepts), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(terminology, "sct2_Description_Snapshot-en_INT.txt"),
		[]byte("id\teffectiveTime\tactive\tmoduleId\tconceptId\tlanguageCode\ttypeId\tterm\tcaseSignificanceId\n"+descriptions), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(terminology, "sct2_Relationship_Snapshot_INT.txt"),
		[]byte("id\teffectiveTime\tactive\tmoduleId\tsourceId\tdestinationId\trelationshipGroup\ttypeId\tcharacteristicTypeId\tmodifierId\n"+relationships), 0o644))

	if languageRefset != "" {
		languageDir := filepath.Join(snapshotDir, "Refset", "Language")
		require.NoError(t, os.MkdirAll(languageDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(languageDir, "der2_cRefset_LanguageSnapshot-en_INT.txt"),
			[]byte("id\teffectiveTime\tactive\tmoduleId\trefsetId\treferencedComponentId\tacceptabilityId\n"+languageRefset), 0o644))
	}

	return snapshotDir
}

func conceptRow(id string, active bool) string {
	a := "0"
	if active {
		a = "1"
	}
	return fmt.Sprintf("%s\t20240101\t%s\t900000000000207008\t900000000000074008\n", id, a)
}

func relationshipRow(source, dest, typeID string) string {
	return fmt.Sprintf("1\t20240101\t1\t900000000000207008\t%s\t%s\t0\t%s\t900000000000011006\t900000000000451002\n",
		source, dest, typeID)
}

func TestSeedHappyPath(t *testing.T) {
	concepts := conceptRow(snomed.RootConcept, true) + conceptRow(snomed.ClinicalFindingConcept, true)
	relationships := relationshipRow(snomed.ClinicalFindingConcept, snomed.RootConcept, snomed.TypeIDIsA)
	dir := writeSnapshot(t, concepts, "", relationships, "")

	repo := graph.NewMemoryRepository()
	log := testLogger(t)
	store := checkpoint.NewStore(log)

	result, err := Seed(context.Background(), Deps{Store: store, Graph: repo, Log: log}, dir, snomed.DefaultSeedOptions(), false)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 2, result.Concepts)
	assert.Equal(t, 1, result.Relationships)
	assert.EqualValues(t, 1, repo.EdgeCount(snomed.EdgeLabelIsA))

	cp, active, err := store.GetStatus(dir)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Nil(t, cp, "a completed run must delete its checkpoint")
}

func TestSeedSkipsInactiveConceptsByDefault(t *testing.T) {
	concepts := conceptRow("1", true) + conceptRow("2", false)
	dir := writeSnapshot(t, concepts, "", "", "")

	repo := graph.NewMemoryRepository()
	log := testLogger(t)
	store := checkpoint.NewStore(log)

	result, err := Seed(context.Background(), Deps{Store: store, Graph: repo, Log: log}, dir, snomed.DefaultSeedOptions(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Concepts)
}

// S5 — Missing endpoint: a relationship references a concept with no
// concept row at all. Expect 0 edges, skipped > 0, ok=true.
func TestSeedRelationshipWithMissingEndpointIsSkippedNotFatal(t *testing.T) {
	concepts := conceptRow("1", true)
	relationships := relationshipRow("1", "does-not-exist", snomed.TypeIDIsA)
	dir := writeSnapshot(t, concepts, "", relationships, "")

	repo := graph.NewMemoryRepository()
	log := testLogger(t)
	store := checkpoint.NewStore(log)

	result, err := Seed(context.Background(), Deps{Store: store, Graph: repo, Log: log}, dir, snomed.DefaultSeedOptions(), false)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 0, result.Relationships)
	assert.Zero(t, repo.EdgeCount(""))
}

func TestSeedMissingSnapshotDirMarksFailed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")
	repo := graph.NewMemoryRepository()
	log := testLogger(t)
	store := checkpoint.NewStore(log)

	result, err := Seed(context.Background(), Deps{Store: store, Graph: repo, Log: log}, dir, snomed.DefaultSeedOptions(), false)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.NotEmpty(t, result.Error)
}

// S7 — Pause/resume: a pause requested before the first row must leave the
// checkpoint paused, and a subsequent seed call must resume and reach the
// full concept count.
func TestSeedPauseThenResumeReachesFullCount(t *testing.T) {
	var rows string
	for i := 1; i <= 30; i++ {
		rows += conceptRow(fmt.Sprintf("%d", i), true)
	}
	dir := writeSnapshot(t, rows, "", "", "")

	repo := graph.NewMemoryRepository()
	log := testLogger(t)
	store := checkpoint.NewStore(log)

	// Request a pause before the run even starts; the concepts phase
	// observes it on the very first row and flushes nothing.
	_, err := store.GetOrCreate(dir, snomed.DefaultSeedOptions())
	require.NoError(t, err)
	store.RequestPause()

	result, err := Seed(context.Background(), Deps{Store: store, Graph: repo, Log: log}, dir, snomed.DefaultSeedOptions(), false)
	require.NoError(t, err)
	assert.True(t, result.OK)

	cp, active, err := store.GetStatus(dir)
	require.NoError(t, err)
	assert.False(t, active)
	require.NotNil(t, cp)
	assert.Equal(t, snomed.PhasePaused, cp.Phase)

	result2, err := Seed(context.Background(), Deps{Store: store, Graph: repo, Log: log}, dir, snomed.DefaultSeedOptions(), false)
	require.NoError(t, err)
	assert.True(t, result2.OK)
	assert.Equal(t, 30, result2.Concepts, "resuming from a pause with zero progress must still reach the full count")
}

func TestSeedCancelledContextPausesRatherThanFails(t *testing.T) {
	var rows string
	for i := 1; i <= 5; i++ {
		rows += conceptRow(fmt.Sprintf("%d", i), true)
	}
	dir := writeSnapshot(t, rows, "", "", "")

	repo := graph.NewMemoryRepository()
	log := testLogger(t)
	store := checkpoint.NewStore(log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Seed(ctx, Deps{Store: store, Graph: repo, Log: log}, dir, snomed.DefaultSeedOptions(), false)
	require.NoError(t, err)
	assert.True(t, result.OK, "a cancelled context must be reported as a pause, not a failure")
}

func TestSeedDescriptionsAttachFSNAndPreferredTerm(t *testing.T) {
	concepts := conceptRow("1", true)
	descriptions := fmt.Sprintf("10\t20240101\t1\t900000000000207008\t1\ten\t%s\tFull specified name\t900000000000448009\n", snomed.TypeIDFSN) +
		fmt.Sprintf("11\t20240101\t1\t900000000000207008\t1\ten\t%s\tPreferred synonym\t900000000000448009\n", snomed.TypeIDSynonym)
	languageRefset := fmt.Sprintf("1\t20240101\t1\t900000000000207008\t%s\t11\t%s\n", snomed.USDialectRefset, snomed.Preferred)
	dir := writeSnapshot(t, concepts, descriptions, "", languageRefset)

	repo := graph.NewMemoryRepository()
	log := testLogger(t)
	store := checkpoint.NewStore(log)

	result, err := Seed(context.Background(), Deps{Store: store, Graph: repo, Log: log}, dir, snomed.DefaultSeedOptions(), false)
	require.NoError(t, err)
	assert.True(t, result.OK)

	id, err := repo.GetVertexIdByLabelAndPropertyAsync(context.Background(), snomed.VertexLabelConcept, "conceptId", "1")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	v, err := repo.GetVertexByIdAsync(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Full specified name", v.Properties["fsn"])
	assert.Equal(t, "Preferred synonym", v.Properties["preferredTerm"])
}

func TestSeedStrictEdgeDedupSkipsRepeatedEdgeInSameRun(t *testing.T) {
	concepts := conceptRow("1", true) + conceptRow("2", true)
	relationships := relationshipRow("1", "2", snomed.TypeIDIsA) + relationshipRow("1", "2", snomed.TypeIDIsA)
	dir := writeSnapshot(t, concepts, "", relationships, "")

	repo := graph.NewMemoryRepository()
	log := testLogger(t)
	store := checkpoint.NewStore(log)

	options := snomed.DefaultSeedOptions()
	options.StrictEdgeDedup = true

	result, err := Seed(context.Background(), Deps{Store: store, Graph: repo, Log: log}, dir, options, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Relationships, "the second identical edge in the same run must be skipped")
}

func TestSeedVerificationReportsRootAndClinicalFindingPresence(t *testing.T) {
	concepts := conceptRow(snomed.RootConcept, true) + conceptRow(snomed.ClinicalFindingConcept, true)
	dir := writeSnapshot(t, concepts, "", "", "")

	repo := graph.NewMemoryRepository()
	log := testLogger(t)
	store := checkpoint.NewStore(log)

	options := snomed.DefaultSeedOptions()
	options.VerifyAfterSeed = true

	_, err := Seed(context.Background(), Deps{Store: store, Graph: repo, Log: log}, dir, options, false)
	require.NoError(t, err)

	v, err := RunVerification(context.Background(), repo)
	require.NoError(t, err)
	assert.True(t, v.HasRootConcept)
	assert.True(t, v.HasClinicalFinding)
	assert.Empty(t, v.Errors)
}

func TestSeedForceRestartDiscardsPriorCheckpoint(t *testing.T) {
	concepts := conceptRow("1", true)
	dir := writeSnapshot(t, concepts, "", "", "")

	repo := graph.NewMemoryRepository()
	log := testLogger(t)
	store := checkpoint.NewStore(log)

	first, err := store.GetOrCreate(dir, snomed.DefaultSeedOptions())
	require.NoError(t, err)

	result, err := Seed(context.Background(), Deps{Store: store, Graph: repo, Log: log}, dir, snomed.DefaultSeedOptions(), true)
	require.NoError(t, err)
	assert.True(t, result.OK)

	_, active, err := store.GetStatus(dir)
	require.NoError(t, err)
	assert.False(t, active)
	assert.NotEmpty(t, first.JobID)
}
