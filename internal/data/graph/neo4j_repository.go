package graph

import (
	"context"
	"fmt"
	"regexp"

	"github.com/cenkalti/backoff/v4"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/snomedcore/ingestion-core/internal/platform/logger"
	"github.com/snomedcore/ingestion-core/internal/platform/neo4jdb"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Neo4jRepository implements Repository against a Neo4j database using
// Cypher MERGE/MATCH in place of the Gremlin steps the interface was
// originally specified against; upsert/lookup semantics are preserved.
type Neo4jRepository struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jRepository(client *neo4jdb.Client, log *logger.Logger) *Neo4jRepository {
	return &Neo4jRepository{client: client, log: log.With("repo", "Neo4jRepository")}
}

func (r *Neo4jRepository) session(ctx context.Context) neo4j.SessionWithContext {
	cfg := neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite}
	if r.client.Database != "" {
		cfg.DatabaseName = r.client.Database
	}
	return r.client.Driver.NewSession(ctx, cfg)
}

// withRetry bounds transient graph-store failures (connection blips) to 3
// attempts with exponential backoff before letting the error abort a flush.
func withRetry(ctx context.Context, op func() error) error {
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return op()
	}, backoff.WithContext(policy, ctx))
}

func safeLabel(label string) (string, error) {
	if !identifierPattern.MatchString(label) {
		return "", fmt.Errorf("graph: unsafe label %q", label)
	}
	return label, nil
}

func (r *Neo4jRepository) AddVertexAsync(ctx context.Context, label string, props map[string]any) (*Vertex, error) {
	lbl, err := safeLabel(label)
	if err != nil {
		return nil, err
	}
	cypher := fmt.Sprintf("CREATE (v:%s) SET v += $props RETURN elementId(v) AS id", lbl)
	var id string
	err = withRetry(ctx, func() error {
		session := r.session(ctx)
		defer session.Close(ctx)
		res, txErr := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, cypher, map[string]any{"props": props})
			if err != nil {
				return nil, err
			}
			record, err := result.Single(ctx)
			if err != nil {
				return nil, err
			}
			v, _ := record.Get("id")
			return v, nil
		})
		if txErr != nil {
			return txErr
		}
		id, _ = res.(string)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: add vertex: %w", err)
	}
	return &Vertex{ID: id, Label: label, Properties: props}, nil
}

func (r *Neo4jRepository) AddEdgeAsync(ctx context.Context, label, outID, inID string, props map[string]any) (*Edge, error) {
	lbl, err := safeLabel(label)
	if err != nil {
		return nil, err
	}
	cypher := fmt.Sprintf(`
		MATCH (o) WHERE elementId(o) = $outId
		MATCH (i) WHERE elementId(i) = $inId
		CREATE (o)-[e:%s]->(i)
		SET e += $props
		RETURN elementId(e) AS id
	`, lbl)
	var id string
	err = withRetry(ctx, func() error {
		session := r.session(ctx)
		defer session.Close(ctx)
		res, txErr := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, cypher, map[string]any{"outId": outID, "inId": inID, "props": props})
			if err != nil {
				return nil, err
			}
			record, err := result.Single(ctx)
			if err != nil {
				return nil, err
			}
			v, _ := record.Get("id")
			return v, nil
		})
		if txErr != nil {
			return txErr
		}
		id, _ = res.(string)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: add edge: %w", err)
	}
	return &Edge{ID: id, Label: label, OutID: outID, InID: inID, Properties: props}, nil
}

func (r *Neo4jRepository) GetVertexByIdAsync(ctx context.Context, id string) (*Vertex, error) {
	var v *Vertex
	err := withRetry(ctx, func() error {
		session := r.session(ctx)
		defer session.Close(ctx)
		res, txErr := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, `MATCH (n) WHERE elementId(n) = $id RETURN n, labels(n) AS labels`, map[string]any{"id": id})
			if err != nil {
				return nil, err
			}
			record, err := result.Single(ctx)
			if err != nil {
				return nil, nil
			}
			node, _ := record.Get("n")
			labels, _ := record.Get("labels")
			return vertexFromNode(id, node, labels), nil
		})
		if txErr != nil {
			return txErr
		}
		v, _ = res.(*Vertex)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: get vertex by id: %w", err)
	}
	return v, nil
}

func (r *Neo4jRepository) UpdateVertexPropertiesAsync(ctx context.Context, id string, props map[string]any) (bool, error) {
	var ok bool
	err := withRetry(ctx, func() error {
		session := r.session(ctx)
		defer session.Close(ctx)
		res, txErr := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, `MATCH (n) WHERE elementId(n) = $id SET n += $props RETURN count(n) AS c`, map[string]any{"id": id, "props": props})
			if err != nil {
				return nil, err
			}
			record, err := result.Single(ctx)
			if err != nil {
				return nil, err
			}
			c, _ := record.Get("c")
			count, _ := c.(int64)
			return count > 0, nil
		})
		if txErr != nil {
			return txErr
		}
		ok, _ = res.(bool)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("graph: update vertex properties: %w", err)
	}
	return ok, nil
}

// UpsertVertexAndReturnIdAsync is idempotent on (label, key, value): a
// vertex matching that triple is returned as-is (properties refreshed);
// otherwise a new one is created.
func (r *Neo4jRepository) UpsertVertexAndReturnIdAsync(ctx context.Context, label, key, value string, props map[string]any) (string, error) {
	lbl, err := safeLabel(label)
	if err != nil {
		return "", err
	}
	k, err := safeLabel(key)
	if err != nil {
		return "", err
	}
	cypher := fmt.Sprintf(`
		MERGE (v:%s {%s: $value})
		SET v += $props
		RETURN elementId(v) AS id
	`, lbl, k)
	var id string
	err = withRetry(ctx, func() error {
		session := r.session(ctx)
		defer session.Close(ctx)
		res, txErr := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, cypher, map[string]any{"value": value, "props": props})
			if err != nil {
				return nil, err
			}
			record, err := result.Single(ctx)
			if err != nil {
				return nil, err
			}
			v, _ := record.Get("id")
			return v, nil
		})
		if txErr != nil {
			return txErr
		}
		id, _ = res.(string)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("graph: upsert vertex: %w", err)
	}
	return id, nil
}

func (r *Neo4jRepository) GetVertexIdByLabelAndPropertyAsync(ctx context.Context, label, key, value string) (string, error) {
	v, err := r.GetVertexByLabelAndPropertyAsync(ctx, label, key, value)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return v.ID, nil
}

func (r *Neo4jRepository) GetVertexByLabelAndPropertyAsync(ctx context.Context, label, key, value string) (*Vertex, error) {
	lbl, err := safeLabel(label)
	if err != nil {
		return nil, err
	}
	k, err := safeLabel(key)
	if err != nil {
		return nil, err
	}
	cypher := fmt.Sprintf(`MATCH (v:%s {%s: $value}) RETURN v, elementId(v) AS id LIMIT 1`, lbl, k)
	var v *Vertex
	err = withRetry(ctx, func() error {
		session := r.session(ctx)
		defer session.Close(ctx)
		res, txErr := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, cypher, map[string]any{"value": value})
			if err != nil {
				return nil, err
			}
			record, err := result.Single(ctx)
			if err != nil {
				return nil, nil
			}
			node, _ := record.Get("v")
			id, _ := record.Get("id")
			idStr, _ := id.(string)
			return vertexFromNode(idStr, node, []any{label}), nil
		})
		if txErr != nil {
			return txErr
		}
		v, _ = res.(*Vertex)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: get vertex by label/property: %w", err)
	}
	return v, nil
}

func (r *Neo4jRepository) CountVerticesByLabelAsync(ctx context.Context, label string, filter map[string]any) (int64, error) {
	lbl, err := safeLabel(label)
	if err != nil {
		return 0, err
	}
	where, params := buildFilterClause(filter)
	cypher := fmt.Sprintf(`MATCH (v:%s) %s RETURN count(v) AS c`, lbl, where)
	var count int64
	err = withRetry(ctx, func() error {
		session := r.session(ctx)
		defer session.Close(ctx)
		res, txErr := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, cypher, params)
			if err != nil {
				return nil, err
			}
			record, err := result.Single(ctx)
			if err != nil {
				return nil, err
			}
			c, _ := record.Get("c")
			n, _ := c.(int64)
			return n, nil
		})
		if txErr != nil {
			return txErr
		}
		count, _ = res.(int64)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("graph: count vertices: %w", err)
	}
	return count, nil
}

func (r *Neo4jRepository) GetVerticesByLabelAsync(ctx context.Context, label string, filter map[string]any, count, offset int) ([]*Vertex, error) {
	lbl, err := safeLabel(label)
	if err != nil {
		return nil, err
	}
	where, params := buildFilterClause(filter)
	params["skip"] = int64(offset)
	params["limit"] = int64(count)
	cypher := fmt.Sprintf(`MATCH (v:%s) %s RETURN v, elementId(v) AS id SKIP $skip LIMIT $limit`, lbl, where)
	var out []*Vertex
	err = withRetry(ctx, func() error {
		session := r.session(ctx)
		defer session.Close(ctx)
		res, txErr := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, cypher, params)
			if err != nil {
				return nil, err
			}
			records, err := result.Collect(ctx)
			if err != nil {
				return nil, err
			}
			vertices := make([]*Vertex, 0, len(records))
			for _, record := range records {
				node, _ := record.Get("v")
				id, _ := record.Get("id")
				idStr, _ := id.(string)
				vertices = append(vertices, vertexFromNode(idStr, node, []any{label}))
			}
			return vertices, nil
		})
		if txErr != nil {
			return txErr
		}
		out, _ = res.([]*Vertex)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: get vertices by label: %w", err)
	}
	return out, nil
}

func buildFilterClause(filter map[string]any) (string, map[string]any) {
	params := map[string]any{}
	if len(filter) == 0 {
		return "", params
	}
	clause := "WHERE "
	first := true
	for k, v := range filter {
		if !identifierPattern.MatchString(k) {
			continue
		}
		paramName := "f_" + k
		if !first {
			clause += " AND "
		}
		clause += fmt.Sprintf("v.%s = $%s", k, paramName)
		params[paramName] = v
		first = false
	}
	if first {
		return "", params
	}
	return clause, params
}

func vertexFromNode(id string, node any, labels any) *Vertex {
	n, ok := node.(neo4j.Node)
	if !ok {
		return nil
	}
	label := ""
	if ls, ok := labels.([]any); ok && len(ls) > 0 {
		if s, ok := ls[0].(string); ok {
			label = s
		}
	} else if len(n.Labels) > 0 {
		label = n.Labels[0]
	}
	return &Vertex{ID: id, Label: label, Properties: n.Props}
}
