// Package seed implements the three-phase seeding pipeline (Concepts,
// Descriptions, Relationships) plus verification, and the single-writer
// job controller that drives it from the HTTP surface.
//
// Context is the execution handle threaded through every phase, mirroring
// the shape of a job-runtime execution context: it bundles the
// request-scoped context.Context, the collaborators a phase needs (the
// checkpoint store, the graph repository, the logger), and nothing a phase
// isn't allowed to reach around. Phases never touch the checkpoint file
// directly; they go through Context.Store.
package seed

import (
	"context"

	"github.com/snomedcore/ingestion-core/internal/checkpoint"
	"github.com/snomedcore/ingestion-core/internal/data/graph"
	"github.com/snomedcore/ingestion-core/internal/domain/snomed"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
	"github.com/snomedcore/ingestion-core/internal/rf2"
)

type Context struct {
	Ctx     context.Context
	Dir     string
	Files   rf2.FileSet
	Options snomed.SeedOptions
	Store   *checkpoint.Store
	Graph   graph.Repository
	Log     *logger.Logger
}

// pauseRequested checks both the explicit pause flag and context
// cancellation, the two cooperative stop signals a phase must observe
// between rows (§5).
func (c *Context) pauseRequested() bool {
	if c.Store.IsPauseRequested() {
		return true
	}
	return c.Ctx.Err() != nil
}
