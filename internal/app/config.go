package app

import (
	"github.com/snomedcore/ingestion-core/internal/platform/envutil"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
)

// Config holds the process-level settings read from the environment: the
// HTTP port (PORT) and the SNOMED import directory (SNOMED_IMPORT_DIRECTORY).
// Seed options such as dialect refset, activeOnly, batch size and progress
// interval are not read from the environment; they come from
// snomed.DefaultSeedOptions, HTTP query parameters or CLI flags.
type Config struct {
	Port            string
	ImportDirectory string
}

func LoadConfig(log *logger.Logger) Config {
	port := envutil.String("PORT", "8080")
	importDirectory := envutil.String("SNOMED_IMPORT_DIRECTORY", "./data/snomed")
	log.Info("loaded configuration", "port", port, "importDirectory", importDirectory)
	return Config{
		Port:            port,
		ImportDirectory: importDirectory,
	}
}
