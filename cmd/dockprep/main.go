// dockprep is the command line interface for structure preparation and
// docking.  It runs the pipeline locally: no PostgreSQL is needed, and
// remote lookups go uncached unless Redis is reachable.
package main

import (
	"fmt"
	"os"

	appdocking "github.com/arqgene/dockprep/internal/application/docking"
	"github.com/arqgene/dockprep/internal/application/preparation"
	"github.com/arqgene/dockprep/internal/config"
	"github.com/arqgene/dockprep/internal/infrastructure/database/redis"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/prometheus"
	"github.com/arqgene/dockprep/internal/infrastructure/remote"
	"github.com/arqgene/dockprep/internal/infrastructure/tools"
	"github.com/arqgene/dockprep/internal/interfaces/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dockprep: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:       cfg.Log.Level,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}

	metrics := prometheus.New()

	// Redis is optional for CLI runs; fall back to a pass-through cache.
	var cache preparation.Cache = preparation.NopCache()
	if redisClient, rerr := redis.NewClient(cfg.Redis, logger); rerr == nil {
		defer redisClient.Close()
		cache = redis.NewCache(redisClient, logger)
	}

	obabel := tools.NewOpenBabel(cfg.Tools, logger)
	smina := tools.NewSmina(cfg.Tools, logger)
	uniprot := remote.NewUniProt(cfg.Remote.UniProtBaseURL, cfg.Remote.FetchTimeout, logger)
	alphafold := remote.NewAlphaFold(cfg.Remote.AlphaFoldURL, cfg.Remote.FetchTimeout, logger)
	esmfold := remote.NewESMFold(cfg.Remote.ESMFoldURL, cfg.Remote.FoldTimeout, logger)
	pubchem := remote.NewPubChem(cfg.Remote.PubChemBaseURL, cfg.Remote.FetchTimeout, logger)

	deps := cli.Dependencies{
		Proteins: preparation.NewProteinService(cfg.Storage, obabel, uniprot, alphafold, esmfold, cache, metrics, logger),
		Ligands:  preparation.NewLigandService(cfg.Storage, cfg.Docking.LigandPH, obabel, pubchem, cache, metrics, logger),
		Docker:   appdocking.NewService(cfg.Storage, cfg.Docking, smina, nil, metrics, logger),
		Logger:   logger,
	}

	return cli.NewRootCommand(deps).Execute()
}
