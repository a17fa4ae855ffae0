package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arqgene/dockprep/internal/application/preparation"
	"github.com/arqgene/dockprep/internal/domain/structure"
)

func newPrepareProteinCmd(proteins ProteinPreparer) *cobra.Command {
	var (
		file         string
		accession    string
		name         string
		sequence     string
		keepChain    string
		removeWater  bool
		removeHetero bool
	)

	cmd := &cobra.Command{
		Use:   "prepare-protein",
		Short: "Fetch, clean, and convert a receptor to PDBQT",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := 0
			for _, s := range []string{file, accession, name, sequence} {
				if s != "" {
					sources++
				}
			}
			if sources != 1 {
				return fmt.Errorf("provide exactly one of --file, --accession, --name, or --sequence")
			}

			sel := structure.Selection{
				KeepChain:    keepChain,
				RemoveWater:  removeWater,
				RemoveHetero: removeHetero,
			}

			var (
				res *preparation.ProteinResult
				err error
			)
			ctx := cmd.Context()
			switch {
			case file != "":
				res, err = proteins.PrepareFromFile(ctx, file, sel)
			case accession != "":
				res, err = proteins.PrepareFromAccession(ctx, accession, sel)
			case name != "":
				res, err = proteins.PrepareFromName(ctx, name, sel)
			default:
				res, err = proteins.PrepareFromSequence(ctx, sequence, sel)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "local structure file (PDB or mmCIF)")
	cmd.Flags().StringVar(&accession, "accession", "", "UniProt accession (AlphaFold model, ESMFold fallback)")
	cmd.Flags().StringVar(&name, "name", "", "protein name resolved through UniProt")
	cmd.Flags().StringVar(&sequence, "sequence", "", "amino-acid sequence folded with ESMFold")
	cmd.Flags().StringVar(&keepChain, "chain", "", "keep only this chain id")
	cmd.Flags().BoolVar(&removeWater, "remove-water", false, "drop water residues")
	cmd.Flags().BoolVar(&removeHetero, "remove-hetero", false, "drop heteroatoms and non-standard residues")
	return cmd
}

func newPrepareLigandCmd(ligands LigandPreparer) *cobra.Command {
	var (
		smiles string
		name   string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "prepare-ligand",
		Short: "Generate a docking-ready ligand PDBQT",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := 0
			for _, s := range []string{smiles, name, file} {
				if s != "" {
					sources++
				}
			}
			if sources != 1 {
				return fmt.Errorf("provide exactly one of --smiles, --name, or --file")
			}

			var (
				res *preparation.LigandResult
				err error
			)
			ctx := cmd.Context()
			switch {
			case smiles != "":
				res, err = ligands.PrepareFromSMILES(ctx, smiles)
			case name != "":
				res, err = ligands.PrepareFromName(ctx, name)
			default:
				res, err = ligands.PrepareFromFile(ctx, file)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&smiles, "smiles", "", "SMILES string (3D coordinates generated)")
	cmd.Flags().StringVar(&name, "name", "", "compound name resolved through PubChem")
	cmd.Flags().StringVar(&file, "file", "", "local ligand file (SDF, MOL2, PDB)")
	return cmd
}
