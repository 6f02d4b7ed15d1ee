package checkpoint

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	require.NoError(t, err)
	return log
}

func TestGetOrCreateCreatesFreshCheckpoint(t *testing.T) {
	dir := t.TempDir() + "/Snapshot"
	store := NewStore(testLogger(t))

	cp, err := store.GetOrCreate(dir, snomed.DefaultSeedOptions())
	require.NoError(t, err)
	assert.Equal(t, snomed.PhaseNotStarted, cp.Phase)
	assert.Equal(t, dir, cp.Rf2Directory)
	assert.NotEmpty(t, cp.JobID)

	_, err = os.Stat(Path(dir))
	assert.NoError(t, err, "a fresh checkpoint must be persisted immediately")
}

func TestGetOrCreatePrefersInMemoryStateOverDisk(t *testing.T) {
	dir := t.TempDir() + "/Snapshot"
	store := NewStore(testLogger(t))

	first, err := store.GetOrCreate(dir, snomed.DefaultSeedOptions())
	require.NoError(t, err)

	require.NoError(t, store.UpdateConceptsProgress(dir, 500, 500))

	second, err := store.GetOrCreate(dir, snomed.DefaultSeedOptions())
	require.NoError(t, err)
	assert.Equal(t, first.JobID, second.JobID)
	assert.Equal(t, 500, second.ConceptsSeeded, "the second call must see the in-memory mutation, not a stale disk read")
}

func TestRoundTripsThroughDiskPreservingPhase(t *testing.T) {
	dir := t.TempDir() + "/Snapshot"
	store := NewStore(testLogger(t))

	_, err := store.GetOrCreate(dir, snomed.DefaultSeedOptions())
	require.NoError(t, err)
	require.NoError(t, store.AdvancePhase(dir, snomed.PhaseRelationships))
	require.NoError(t, store.MarkPaused(dir, 0))

	raw, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	var onDisk snomed.Checkpoint
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, snomed.PhasePaused, onDisk.Phase, "the phase enum must round-trip through its JSON string form")

	freshStore := NewStore(testLogger(t))
	loaded, active, err := freshStore.GetStatus(dir)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, snomed.PhasePaused, loaded.Phase)
}

func TestMarkCompletedDeletesCheckpointFile(t *testing.T) {
	dir := t.TempDir() + "/Snapshot"
	store := NewStore(testLogger(t))

	_, err := store.GetOrCreate(dir, snomed.DefaultSeedOptions())
	require.NoError(t, err)
	require.NoError(t, store.MarkCompleted(dir, 0))

	_, err = os.Stat(Path(dir))
	assert.True(t, os.IsNotExist(err))
}

func TestGetOrCreateAfterCompletedStartsFresh(t *testing.T) {
	dir := t.TempDir() + "/Snapshot"
	store := NewStore(testLogger(t))

	first, err := store.GetOrCreate(dir, snomed.DefaultSeedOptions())
	require.NoError(t, err)
	require.NoError(t, store.MarkCompleted(dir, 0))

	second, err := store.GetOrCreate(dir, snomed.DefaultSeedOptions())
	require.NoError(t, err)
	assert.NotEqual(t, first.JobID, second.JobID)
	assert.Equal(t, snomed.PhaseNotStarted, second.Phase)
}

func TestRequestPauseIsMemoryOnly(t *testing.T) {
	dir := t.TempDir() + "/Snapshot"
	store := NewStore(testLogger(t))

	_, err := store.GetOrCreate(dir, snomed.DefaultSeedOptions())
	require.NoError(t, err)
	store.RequestPause()
	assert.True(t, store.IsPauseRequested())

	raw, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	var onDisk snomed.Checkpoint
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.False(t, onDisk.PauseRequested, "pause requests must not be persisted until the phase handler observes and writes it")
}

func TestCorruptCheckpointFileIsTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir() + "/Snapshot"
	require.NoError(t, os.WriteFile(Path(dir), []byte("{not json"), 0o644))

	store := NewStore(testLogger(t))
	cp, err := store.GetOrCreate(dir, snomed.DefaultSeedOptions())
	require.NoError(t, err)
	assert.Equal(t, snomed.PhaseNotStarted, cp.Phase, "a corrupt file must never fail the caller")
}
