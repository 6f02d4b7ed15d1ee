package app

import (
	"github.com/snomedcore/ingestion-core/internal/data/graph"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
	"github.com/snomedcore/ingestion-core/internal/platform/neo4jdb"
)

// wireGraph prefers a real Neo4j-backed repository when NEO4J_URI is
// configured, and otherwise falls back to the in-memory repository so the
// server and CLI remain runnable without a graph database attached
// (useful for local development; the seeded graph then lasts only as long
// as the process).
func wireGraph(log *logger.Logger) (graph.Repository, *neo4jdb.Client, error) {
	client, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Warn("NEO4J_URI not set, falling back to in-memory graph repository")
		return graph.NewMemoryRepository(), nil, nil
	}
	return graph.NewNeo4jRepository(client, log), client, nil
}
