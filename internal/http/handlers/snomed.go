package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
	"github.com/snomedcore/ingestion-core/internal/http/response"
	"github.com/snomedcore/ingestion-core/internal/platform/apierr"
	"github.com/snomedcore/ingestion-core/internal/seed"
)

var tracer = otel.Tracer("snomedcore/ingestion-core/http")

type SnomedHandler struct {
	controller *seed.Controller
}

func NewSnomedHandler(controller *seed.Controller) *SnomedHandler {
	return &SnomedHandler{controller: controller}
}

func (h *SnomedHandler) Status(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "http.snomed.status")
	defer span.End()
	response.RespondOK(c, h.controller.FullStatus(ctx))
}

func (h *SnomedHandler) Job(c *gin.Context) {
	_, span := tracer.Start(c.Request.Context(), "http.snomed.job")
	defer span.End()
	status := h.controller.Status()
	if status == nil {
		response.RespondAPIError(c, "no checkpoint", apierr.New(http.StatusNotFound, "no_checkpoint",
			errors.New("no seed has ever been started for this snapshot directory")))
		return
	}
	response.RespondOK(c, status)
}

func (h *SnomedHandler) Seed(c *gin.Context) {
	_, span := tracer.Start(c.Request.Context(), "http.snomed.seed")
	defer span.End()

	options := optionsFromQuery(c)
	forceRestart := boolQuery(c, "forceRestart", false)

	started, err := h.controller.StartSeed(options, forceRestart)
	if err != nil {
		response.RespondAPIError(c, "seed failed to start", toAPIError(err))
		return
	}
	response.RespondAccepted(c, started)
}

func (h *SnomedHandler) Pause(c *gin.Context) {
	_, span := tracer.Start(c.Request.Context(), "http.snomed.pause")
	defer span.End()

	started, err := h.controller.RequestPause()
	if err != nil {
		response.RespondAPIError(c, "pause failed", toAPIError(err))
		return
	}
	response.RespondOK(c, started)
}

func (h *SnomedHandler) Resume(c *gin.Context) {
	_, span := tracer.Start(c.Request.Context(), "http.snomed.resume")
	defer span.End()

	started, err := h.controller.Resume()
	if err != nil {
		response.RespondAPIError(c, "resume failed", toAPIError(err))
		return
	}
	response.RespondAccepted(c, started)
}

func (h *SnomedHandler) Reseed(c *gin.Context) {
	_, span := tracer.Start(c.Request.Context(), "http.snomed.reseed")
	defer span.End()

	options := optionsFromQuery(c)
	started, err := h.controller.Reseed(options)
	if err != nil {
		response.RespondAPIError(c, "reseed failed to start", toAPIError(err))
		return
	}
	response.RespondAccepted(c, started)
}

func (h *SnomedHandler) DeleteCheckpoint(c *gin.Context) {
	_, span := tracer.Start(c.Request.Context(), "http.snomed.deleteCheckpoint")
	defer span.End()

	if err := h.controller.ClearCheckpoint(); err != nil {
		response.RespondAPIError(c, "clear checkpoint failed", toAPIError(err))
		return
	}
	response.RespondNoContent(c)
}

func (h *SnomedHandler) Verify(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "http.snomed.verify")
	defer span.End()
	v, err := h.controller.Verify(ctx)
	if err != nil {
		response.RespondAPIError(c, "verification failed", toAPIError(err))
		return
	}
	response.RespondOK(c, v)
}

// toAPIError is the sole place a seed-package error is translated into
// the HTTP boundary's apierr.Error shape (§7).
func toAPIError(err error) *apierr.Error {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, seed.ErrAlreadyRunning):
		return apierr.New(http.StatusConflict, "already_running", err)
	case errors.Is(err, seed.ErrNotRunning):
		return apierr.New(http.StatusNotFound, "not_running", err)
	case errors.Is(err, seed.ErrNoCheckpoint):
		return apierr.New(http.StatusNotFound, "no_checkpoint", err)
	case errors.Is(err, seed.ErrInvalidPhaseForResume):
		return apierr.New(http.StatusBadRequest, "not_resumable", err)
	}

	var missing *seed.MissingSnapshotError
	if errors.As(err, &missing) {
		return apierr.New(http.StatusBadRequest, "snapshot_missing", err)
	}

	return apierr.New(http.StatusInternalServerError, "internal", err)
}

func optionsFromQuery(c *gin.Context) snomed.SeedOptions {
	opts := snomed.DefaultSeedOptions()
	opts.ActiveOnly = boolQuery(c, "activeOnly", opts.ActiveOnly)
	opts.BatchSize = intQuery(c, "batchSize", opts.BatchSize)
	opts.DialectRefsetID = strings.TrimSpace(c.DefaultQuery("dialectRefsetId", opts.DialectRefsetID))
	opts.VerifyAfterSeed = boolQuery(c, "verifyAfterSeed", opts.VerifyAfterSeed)
	opts.ProgressLogInterval = intQuery(c, "progressLogInterval", opts.ProgressLogInterval)
	opts.StrictEdgeDedup = boolQuery(c, "strictEdgeDedup", opts.StrictEdgeDedup)
	return opts
}

func boolQuery(c *gin.Context, name string, def bool) bool {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}
