// Package graph defines the small property-graph repository contract the
// ingestion core consumes (§6.4) and a Neo4j-backed implementation of it.
package graph

import "context"

// Vertex is a node in the backing graph store.
type Vertex struct {
	ID         string
	Label      string
	Properties map[string]any
}

// Edge is a directed, labeled relationship between two vertices.
type Edge struct {
	ID         string
	Label      string
	OutID      string
	InID       string
	Properties map[string]any
}

// Repository is the exact surface the seeding pipeline depends on — no
// more, per §6.4. Implementations must make UpsertVertexAndReturnIdAsync
// idempotent on (label, key, value): a second call with an existing
// (label, key, value) tuple returns the existing vertex's id rather than
// creating a duplicate.
type Repository interface {
	AddVertexAsync(ctx context.Context, label string, props map[string]any) (*Vertex, error)
	AddEdgeAsync(ctx context.Context, label, outID, inID string, props map[string]any) (*Edge, error)
	GetVertexByIdAsync(ctx context.Context, id string) (*Vertex, error)
	UpdateVertexPropertiesAsync(ctx context.Context, id string, props map[string]any) (bool, error)
	UpsertVertexAndReturnIdAsync(ctx context.Context, label, key, value string, props map[string]any) (string, error)
	GetVertexIdByLabelAndPropertyAsync(ctx context.Context, label, key, value string) (string, error)
	GetVertexByLabelAndPropertyAsync(ctx context.Context, label, key, value string) (*Vertex, error)
	CountVerticesByLabelAsync(ctx context.Context, label string, filter map[string]any) (int64, error)
	GetVerticesByLabelAsync(ctx context.Context, label string, filter map[string]any, count, offset int) ([]*Vertex, error)
}
