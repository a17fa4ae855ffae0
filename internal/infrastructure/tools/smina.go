package tools

import (
	"context"
	"strconv"

	"github.com/arqgene/dockprep/internal/config"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
)

// Box is the docking search volume: a center point and edge lengths in
// Angstroms.
type Box struct {
	CenterX, CenterY, CenterZ float64
	SizeX, SizeY, SizeZ       float64
}

// CubeAround builds a cube-shaped Box of the given edge length centered on
// (x, y, z).
func CubeAround(x, y, z, edge float64) Box {
	return Box{CenterX: x, CenterY: y, CenterZ: z, SizeX: edge, SizeY: edge, SizeZ: edge}
}

// DockRequest carries one smina invocation's inputs.
type DockRequest struct {
	ReceptorPath   string
	LigandPath     string
	OutPath        string
	Box            Box
	NumModes       int
	Exhaustiveness int
}

// Smina drives the smina docking engine.
type Smina struct {
	r runner
}

// NewSmina builds a Smina wrapper from the tools configuration.
func NewSmina(cfg config.ToolsConfig, log logging.Logger) *Smina {
	return &Smina{r: runner{
		bin:     cfg.SminaBin,
		timeout: cfg.DockTimeout,
		log:     log.Named("smina"),
	}}
}

// Dock runs one docking job and gates on non-empty output.  The per-job
// deadline comes from the tools configuration; callers pass a ctx that may
// shorten it further.
func (s *Smina) Dock(ctx context.Context, req DockRequest) error {
	args := []string{
		"--receptor", req.ReceptorPath,
		"--ligand", req.LigandPath,
		"--out", req.OutPath,
		"--center_x", ftoa(req.Box.CenterX),
		"--center_y", ftoa(req.Box.CenterY),
		"--center_z", ftoa(req.Box.CenterZ),
		"--size_x", ftoa(req.Box.SizeX),
		"--size_y", ftoa(req.Box.SizeY),
		"--size_z", ftoa(req.Box.SizeZ),
		"--num_modes", strconv.Itoa(req.NumModes),
		"--exhaustiveness", strconv.Itoa(req.Exhaustiveness),
	}
	if err := s.r.run(ctx, args...); err != nil {
		return err
	}
	return requireOutput(s.r.bin, req.OutPath)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}
