package app

import (
	"context"
	"fmt"
	"os"

	"github.com/snomedcore/ingestion-core/internal/checkpoint"
	"github.com/snomedcore/ingestion-core/internal/data/db"
	"github.com/snomedcore/ingestion-core/internal/data/graph"
	ledgerrepo "github.com/snomedcore/ingestion-core/internal/data/repos/ledger"
	httptransport "github.com/snomedcore/ingestion-core/internal/http"
	"github.com/snomedcore/ingestion-core/internal/observability"
	"github.com/snomedcore/ingestion-core/internal/platform/logger"
	"github.com/snomedcore/ingestion-core/internal/platform/neo4jdb"
	"github.com/snomedcore/ingestion-core/internal/seed"
)

type App struct {
	Log        *logger.Logger
	Cfg        Config
	Server     *httptransport.Server
	Controller *seed.Controller
	Graph      graph.Repository

	neo4jClient  *neo4jdb.Client
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("loading environment variables...")
	cfg := LoadConfig(log)

	ctx := context.Background()
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "snomed-ingestion-core",
	})

	var ledger *ledgerrepo.Repo
	ledgerService, err := db.NewSqliteService(log)
	if err != nil {
		log.Warn("ledger init failed, continuing without audit trail", "error", err)
	} else if err := ledgerService.AutoMigrateAll(); err != nil {
		log.Warn("ledger auto migration failed, continuing without audit trail", "error", err)
	} else {
		ledger = ledgerrepo.NewRepo(ledgerService.DB())
	}

	repo, neo4jClient, err := wireGraph(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init graph repository: %w", err)
	}

	store := checkpoint.NewStore(log)
	controller := seed.NewController(store, repo, log, cfg.ImportDirectory).WithLedger(ledger)

	handlers := wireHandlers(controller)
	server := wireServer(log, handlers)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Server:       server,
		Controller:   controller,
		Graph:        repo,
		neo4jClient:  neo4jClient,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.neo4jClient != nil {
		_ = a.neo4jClient.Close(context.Background())
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
