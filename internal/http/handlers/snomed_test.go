package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snomedcore/ingestion-core/internal/checkpoint"
	"github.com/snomedcore/ingestion-core/internal/data/graph"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
	"github.com/snomedcore/ingestion-core/internal/seed"
)

func newTestRouter(t *testing.T, importDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("development")
	require.NoError(t, err)

	store := checkpoint.NewStore(log)
	repo := graph.NewMemoryRepository()
	controller := seed.NewController(store, repo, log, importDir)
	h := NewSnomedHandler(controller)

	r := gin.New()
	api := r.Group("/api/snomed")
	api.GET("/job", h.Job)
	api.POST("/seed", h.Seed)
	api.POST("/pause", h.Pause)
	api.DELETE("/checkpoint", h.DeleteCheckpoint)
	return r
}

func TestJobReturns404WhenNoCheckpointExists(t *testing.T) {
	r := newTestRouter(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/snomed/job", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeedReturns400WhenSnapshotDirMissing(t *testing.T) {
	r := newTestRouter(t, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/api/snomed/seed", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPauseReturns404WhenNothingIsRunning(t *testing.T) {
	r := newTestRouter(t, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/api/snomed/pause", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCheckpointAlwaysReturns204(t *testing.T) {
	r := newTestRouter(t, t.TempDir())

	req := httptest.NewRequest(http.MethodDelete, "/api/snomed/checkpoint", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
