package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	appdocking "github.com/arqgene/dockprep/internal/application/docking"
	"github.com/arqgene/dockprep/internal/infrastructure/tools"
)

func newDockCmd(docker Docker) *cobra.Command {
	var (
		receptor       string
		ligand         string
		ligandName     string
		center         []float64
		boxEdge        float64
		numModes       int
		exhaustiveness int
	)

	cmd := &cobra.Command{
		Use:   "dock",
		Short: "Dock a prepared ligand against a prepared receptor",
		Long:  "Runs smina on prepared PDBQT inputs.  Without --center the search box\nis placed on the receptor's geometric center.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if receptor == "" || ligand == "" {
				return fmt.Errorf("--receptor and --ligand are required")
			}

			req := appdocking.Request{
				ReceptorPDBQT:  receptor,
				LigandPDBQT:    ligand,
				ReceptorSource: receptor,
				LigandName:     ligandName,
				NumModes:       numModes,
				Exhaustiveness: exhaustiveness,
			}
			if len(center) > 0 {
				if len(center) != 3 {
					return fmt.Errorf("--center needs exactly three values: x,y,z")
				}
				if boxEdge <= 0 {
					return fmt.Errorf("--box-size must be positive when --center is given")
				}
				box := tools.CubeAround(center[0], center[1], center[2], boxEdge)
				req.Box = &box
			}

			res, err := docker.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&receptor, "receptor", "", "receptor PDBQT path")
	cmd.Flags().StringVar(&ligand, "ligand", "", "ligand PDBQT path")
	cmd.Flags().StringVar(&ligandName, "ligand-name", "", "ligand label stored with the job")
	cmd.Flags().Float64SliceVar(&center, "center", nil, "box center as x,y,z (default: receptor geometric center)")
	cmd.Flags().Float64Var(&boxEdge, "box-size", 20.0, "cubic box edge length in Angstroms")
	cmd.Flags().IntVar(&numModes, "num-modes", 0, "binding modes to generate (default from config, capped at 9)")
	cmd.Flags().IntVar(&exhaustiveness, "exhaustiveness", 0, "search exhaustiveness (default from config)")
	return cmd
}
