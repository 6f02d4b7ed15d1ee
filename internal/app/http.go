package app

import (
	"github.com/snomedcore/ingestion-core/internal/http"
	httpH "github.com/snomedcore/ingestion-core/internal/http/handlers"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
	"github.com/snomedcore/ingestion-core/internal/seed"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Snomed *httpH.SnomedHandler
}

func wireHandlers(controller *seed.Controller) Handlers {
	return Handlers{
		Health: httpH.NewHealthHandler(),
		Snomed: httpH.NewSnomedHandler(controller),
	}
}

func wireServer(log *logger.Logger, handlers Handlers) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:           log,
		HealthHandler: handlers.Health,
		SnomedHandler: handlers.Snomed,
	})
}
