package verify

import (
	"fmt"
	"strings"
)

// PreparationReport pairs the verification of a preparation stage's input
// with the verification of its output.
type PreparationReport struct {
	Input  *Report `json:"input"`
	Output *Report `json:"output"`
}

// Valid reports whether the prepared PDBQT passed.  Input-stage problems are
// visible in the report and its summary but never flip overall validity; the
// prepared structure is what docking consumes.
func (p *PreparationReport) Valid() bool {
	return p.Output != nil && p.Output.Valid
}

// ProteinPreparation verifies a cleaned protein PDB alongside the PDBQT
// produced from it.
func ProteinPreparation(pdbPath, pdbqtPath string) *PreparationReport {
	return &PreparationReport{
		Input:  PDB(pdbPath),
		Output: PDBQT(pdbqtPath, ModeProtein),
	}
}

// LigandPreparation verifies a prepared ligand PDBQT.  The input slot is nil
// because ligand inputs arrive in arbitrary formats (SMILES, SDF, MOL2) that
// have no column-oriented verification.
func LigandPreparation(pdbqtPath string) *PreparationReport {
	return &PreparationReport{Output: PDBQT(pdbqtPath, ModeLigand)}
}

// Summary renders a plain-text report suitable for logs and CLI output.  The
// prepared stage additionally reports whether partial charges and the ROOT
// rotatable-bond marker were found.
func (p *PreparationReport) Summary() string {
	var b strings.Builder
	if p.Input != nil {
		writeStage(&b, "Input structure", p.Input, false)
	}
	if p.Output != nil {
		writeStage(&b, "Prepared structure", p.Output, true)
	}
	return b.String()
}

func writeStage(b *strings.Builder, title string, r *Report, prepared bool) {
	fmt.Fprintf(b, "%s:\n", title)
	if !r.Valid {
		fmt.Fprintf(b, "  INVALID: %s\n", r.Error)
		return
	}
	fmt.Fprintf(b, "  atoms=%d chains=%d residues=%d size=%.2fKB\n",
		r.Stats.AtomCount, r.Stats.ChainCount, r.Stats.ResidueCount, r.Stats.FileSizeKB)
	if len(r.Stats.Chains) > 0 {
		fmt.Fprintf(b, "  chain ids: %s\n", strings.Join(r.Stats.Chains, ", "))
	}
	if prepared {
		fmt.Fprintf(b, "  charges assigned: %s\n", yesNo(r.Stats.HasPartialCharges))
		fmt.Fprintf(b, "  rotatable bonds defined: %s\n", yesNo(r.Stats.HasRoot))
	}
	fmt.Fprintf(b, "  %d warning(s)\n", len(r.Warnings))
	for _, w := range r.Warnings {
		fmt.Fprintf(b, "  warning: %s\n", w)
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
