package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arqgene/dockprep/internal/domain/structure"
	"github.com/arqgene/dockprep/internal/domain/verify"
)

func newVerifyCmd() *cobra.Command {
	var (
		format string
		mode   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Check a PDB or PDBQT file for docking readiness",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			var report *verify.Report
			switch format {
			case "pdb":
				report = verify.PDB(path)
			case "pdbqt":
				switch mode {
				case "protein":
					report = verify.PDBQT(path, verify.ModeProtein)
				case "ligand":
					report = verify.PDBQT(path, verify.ModeLigand)
				default:
					return fmt.Errorf("--mode must be protein or ligand")
				}
			default:
				return fmt.Errorf("--format must be pdb or pdbqt")
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), report)
			}

			out := cmd.OutOrStdout()
			if report.Valid {
				fmt.Fprintln(out, "VALID")
			} else {
				fmt.Fprintf(out, "INVALID: %s\n", report.Error)
			}
			fmt.Fprintf(out, "atoms=%d chains=%d residues=%d size=%.2fKB\n",
				report.Stats.AtomCount, report.Stats.ChainCount,
				report.Stats.ResidueCount, report.Stats.FileSizeKB)
			for _, w := range report.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if !report.Valid {
				return fmt.Errorf("verification failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "pdb", "file format: pdb or pdbqt")
	cmd.Flags().StringVar(&mode, "mode", "ligand", "pdbqt check mode: protein or ligand")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the full report as JSON")
	return cmd
}

func newWeightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight FILE",
		Short: "Estimate molecular weight of a PDBQT ligand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, ok := structure.EstimateWeight(args[0])
			if !ok {
				return fmt.Errorf("no weighable atoms found in %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f Da\n", weight)
			return nil
		},
	}
	return cmd
}
