package graph

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/snomedcore/ingestion-core/internal/platform/logger"
	"github.com/snomedcore/ingestion-core/internal/platform/neo4jdb"
)

// integrationEnabled gates container-backed tests behind an explicit
// opt-in, matching the teacher's emulator smoke test convention: the
// default `go test ./...` run never requires Docker.
func integrationEnabled() bool {
	return os.Getenv("SNOMED_INTEGRATION") == "1"
}

func startNeo4jContainer(t *testing.T) *neo4jdb.Client {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5-community",
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": "neo4j/snomedtest123",
		},
		WaitingFor: wait.ForLog("Bolt enabled").WithStartupTimeout(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "7687")
	require.NoError(t, err)

	uri := fmt.Sprintf("bolt://%s:%s", host, port.Port())
	t.Setenv("NEO4J_URI", uri)
	t.Setenv("NEO4J_USER", "neo4j")
	t.Setenv("NEO4J_PASSWORD", "snomedtest123")

	log, err := logger.New("development")
	require.NoError(t, err)
	client, err := neo4jdb.NewFromEnv(log)
	require.NoError(t, err)
	require.NotNil(t, client)
	return client
}

func TestNeo4jRepositoryUpsertAndCountAgainstLiveContainer(t *testing.T) {
	if !integrationEnabled() {
		t.Skip("set SNOMED_INTEGRATION=1 to run tests against a live Neo4j container")
	}

	log, err := logger.New("development")
	require.NoError(t, err)

	client := startNeo4jContainer(t)
	defer func() { _ = client.Close(context.Background()) }()

	repo := NewNeo4jRepository(client, log)
	ctx := context.Background()

	id, err := repo.UpsertVertexAndReturnIdAsync(ctx, "SnomedConcept", "conceptId", "138875005", map[string]any{"active": true})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	count, err := repo.CountVerticesByLabelAsync(ctx, "SnomedConcept", nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	v, err := repo.GetVertexByIdAsync(ctx, id)
	require.NoError(t, err)
	require.Equal(t, true, v.Properties["active"])

	_, err = repo.AddEdgeAsync(ctx, "IS_A", id, id, nil)
	require.NoError(t, err)
}
