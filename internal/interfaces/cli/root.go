// Package cli implements the dockprep command line interface.  Subcommands
// run the preparation and docking services locally, without the HTTP server.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	appdocking "github.com/arqgene/dockprep/internal/application/docking"
	"github.com/arqgene/dockprep/internal/application/preparation"
	"github.com/arqgene/dockprep/internal/domain/structure"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// ProteinPreparer is the protein service surface the CLI needs.
type ProteinPreparer interface {
	PrepareFromFile(ctx context.Context, inputPath string, sel structure.Selection) (*preparation.ProteinResult, error)
	PrepareFromAccession(ctx context.Context, accession string, sel structure.Selection) (*preparation.ProteinResult, error)
	PrepareFromName(ctx context.Context, name string, sel structure.Selection) (*preparation.ProteinResult, error)
	PrepareFromSequence(ctx context.Context, sequence string, sel structure.Selection) (*preparation.ProteinResult, error)
}

// LigandPreparer is the ligand service surface the CLI needs.
type LigandPreparer interface {
	PrepareFromSMILES(ctx context.Context, smiles string) (*preparation.LigandResult, error)
	PrepareFromName(ctx context.Context, name string) (*preparation.LigandResult, error)
	PrepareFromFile(ctx context.Context, inputPath string) (*preparation.LigandResult, error)
}

// Docker runs docking jobs.
type Docker interface {
	Run(ctx context.Context, req appdocking.Request) (*appdocking.Result, error)
}

// Dependencies carries the wired services into the command tree.
type Dependencies struct {
	Proteins ProteinPreparer
	Ligands  LigandPreparer
	Docker   Docker
	Logger   logging.Logger
}

// NewRootCommand builds the dockprep root command with all subcommands.
func NewRootCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dockprep",
		Short:   "Prepare protein and ligand structures and run docking",
		Long:    "dockprep fetches, cleans, converts, and verifies molecular structures,\nthen docks ligands against receptors with smina.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newPrepareProteinCmd(deps.Proteins),
		newPrepareLigandCmd(deps.Ligands),
		newDockCmd(deps.Docker),
		newVerifyCmd(),
		newWeightCmd(),
	)
	return cmd
}

// printJSON renders any result as indented JSON on the command's stdout.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
