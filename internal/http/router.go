package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/snomedcore/ingestion-core/internal/http/handlers"
	httpMW "github.com/snomedcore/ingestion-core/internal/http/middleware"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
)

type RouterConfig struct {
	Log           *logger.Logger
	HealthHandler *httpH.HealthHandler
	SnomedHandler *httpH.SnomedHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.SnomedHandler != nil {
			snomedGroup := api.Group("/snomed")
			snomedGroup.GET("/status", cfg.SnomedHandler.Status)
			snomedGroup.GET("/job", cfg.SnomedHandler.Job)
			snomedGroup.POST("/seed", cfg.SnomedHandler.Seed)
			snomedGroup.POST("/pause", cfg.SnomedHandler.Pause)
			snomedGroup.POST("/resume", cfg.SnomedHandler.Resume)
			snomedGroup.POST("/reseed", cfg.SnomedHandler.Reseed)
			snomedGroup.DELETE("/checkpoint", cfg.SnomedHandler.DeleteCheckpoint)
			snomedGroup.GET("/verify", cfg.SnomedHandler.Verify)
		}
	}

	return r
}
