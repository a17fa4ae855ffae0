// dockprepd is the docking preparation API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appdocking "github.com/arqgene/dockprep/internal/application/docking"
	"github.com/arqgene/dockprep/internal/application/preparation"
	"github.com/arqgene/dockprep/internal/config"
	"github.com/arqgene/dockprep/internal/infrastructure/database/postgres"
	"github.com/arqgene/dockprep/internal/infrastructure/database/postgres/repositories"
	"github.com/arqgene/dockprep/internal/infrastructure/database/redis"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/prometheus"
	"github.com/arqgene/dockprep/internal/infrastructure/remote"
	"github.com/arqgene/dockprep/internal/infrastructure/tools"
	httpserver "github.com/arqgene/dockprep/internal/interfaces/http"
	"github.com/arqgene/dockprep/internal/interfaces/http/handlers"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "dockprepd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: []string{cfg.Log.Output},
	})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	logger.Info("starting dockprepd",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))

	metrics := prometheus.New()

	// PostgreSQL and migrations.
	pg, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := postgres.RunMigrations(postgres.BuildURL(cfg.Database), cfg.Database.MigrationPath); err != nil {
		return err
	}
	jobRepo := repositories.NewJobRepository(pg.DB(), logger)

	// Redis cache for remote lookups.
	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, logger)

	// External tools and remote sources.
	obabel := tools.NewOpenBabel(cfg.Tools, logger)
	smina := tools.NewSmina(cfg.Tools, logger)
	uniprot := remote.NewUniProt(cfg.Remote.UniProtBaseURL, cfg.Remote.FetchTimeout, logger)
	alphafold := remote.NewAlphaFold(cfg.Remote.AlphaFoldURL, cfg.Remote.FetchTimeout, logger)
	esmfold := remote.NewESMFold(cfg.Remote.ESMFoldURL, cfg.Remote.FoldTimeout, logger)
	pubchem := remote.NewPubChem(cfg.Remote.PubChemBaseURL, cfg.Remote.FetchTimeout, logger)

	// Application services.
	proteins := preparation.NewProteinService(cfg.Storage, obabel, uniprot, alphafold, esmfold, cache, metrics, logger)
	ligands := preparation.NewLigandService(cfg.Storage, cfg.Docking.LigandPH, obabel, pubchem, cache, metrics, logger)
	docker := appdocking.NewService(cfg.Storage, cfg.Docking, smina, jobRepo, metrics, logger)

	// HTTP surface.
	httpserver.SetMode(cfg.Server.Mode)
	router := httpserver.NewRouter(httpserver.RouterConfig{
		PrepareHandler: handlers.NewPrepareHandler(proteins, ligands, cfg.Storage.UploadDir, logger),
		DockHandler:    handlers.NewDockHandler(docker, logger),
		VerifyHandler:  handlers.NewVerifyHandler(cfg.Storage.UploadDir, logger),
		HealthHandler: handlers.NewHealthHandler(version,
			handlers.CheckerFunc{CheckerName: "postgres", Fn: pg.Ping},
			handlers.CheckerFunc{CheckerName: "redis", Fn: redisClient.Ping},
		),
		Logger:        logger,
		Metrics:       metrics,
		MaxUploadSize: cfg.Server.MaxUploadSize,
	})
	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	if err := srv.Stop(context.Background()); err != nil {
		return err
	}
	logger.Info("dockprepd stopped")
	return nil
}

// loadConfig reads the config file when present, otherwise falls back to
// environment variables and defaults.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
