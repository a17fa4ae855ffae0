package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/arqgene/dockprep/internal/config"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
)

// OpenBabel drives the obabel binary for structure format conversion,
// protonation, and SMILES 3D generation.
type OpenBabel struct {
	r runner
}

// NewOpenBabel builds an OpenBabel wrapper from the tools configuration.
func NewOpenBabel(cfg config.ToolsConfig, log logging.Logger) *OpenBabel {
	return &OpenBabel{r: runner{
		bin:     cfg.OpenBabelBin,
		timeout: cfg.ConvertTimeout,
		log:     log.Named("openbabel"),
	}}
}

// ConvertReceptorToPDBQT converts a receptor PDB to rigid PDBQT.  The -xr
// flag suppresses the flexibility tree that receptors must not carry.
func (o *OpenBabel) ConvertReceptorToPDBQT(ctx context.Context, inPath, outPath string) error {
	if err := o.r.run(ctx, inPath, "-O", outPath, "-xr"); err != nil {
		return err
	}
	return requireOutput(o.r.bin, outPath)
}

// ConvertLigandToPDBQT converts a ligand structure to PDBQT, protonating at
// the given pH so partial charges reflect physiological conditions.
func (o *OpenBabel) ConvertLigandToPDBQT(ctx context.Context, inPath, outPath string, ph float64) error {
	if err := o.r.run(ctx, inPath, "-O", outPath, "-p", formatPH(ph)); err != nil {
		return err
	}
	return requireOutput(o.r.bin, outPath)
}

// SMILESTo3DSDF generates a 3D SDF with explicit hydrogens from a SMILES
// string.  3D generation is the slow step, so the deadline covers the whole
// call.
func (o *OpenBabel) SMILESTo3DSDF(ctx context.Context, smiles, outPath string) error {
	if err := o.r.run(ctx, "-:"+smiles, "-O", outPath, "--gen3d", "-h"); err != nil {
		return err
	}
	return requireOutput(o.r.bin, outPath)
}

// AddHydrogens writes a copy of inPath with hydrogens added for the given
// pH.  Callers treat failure as non-fatal: the unhydrogenated structure
// still converts and docks, just with poorer charge assignment.
func (o *OpenBabel) AddHydrogens(ctx context.Context, inPath, outPath string, ph float64) error {
	if err := o.r.run(ctx, inPath, "-O", outPath, "-p", formatPH(ph)); err != nil {
		return err
	}
	return requireOutput(o.r.bin, outPath)
}

// ConvertToPDB converts any OpenBabel-readable structure to PDB.
func (o *OpenBabel) ConvertToPDB(ctx context.Context, inPath, outPath string) error {
	if err := o.r.run(ctx, inPath, "-O", outPath); err != nil {
		return err
	}
	return requireOutput(o.r.bin, outPath)
}

// Timeout reports the per-conversion deadline, mainly for logging.
func (o *OpenBabel) Timeout() time.Duration { return o.r.timeout }

func formatPH(ph float64) string {
	return fmt.Sprintf("%.1f", ph)
}
