package preparation

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arqgene/dockprep/internal/config"
	"github.com/arqgene/dockprep/internal/domain/structure"
	"github.com/arqgene/dockprep/internal/domain/verify"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/prometheus"
	"github.com/arqgene/dockprep/internal/infrastructure/remote"
)

// LigandService prepares ligands for docking from SMILES strings, compound
// names, or uploaded structure files.
type LigandService struct {
	storage   config.StorageConfig
	ph        float64
	converter Converter
	pubchem   CompoundSource
	cache     Cache
	metrics   *prometheus.Metrics
	logger    logging.Logger
}

// NewLigandService wires a LigandService.  ph is the protonation pH applied
// during PDBQT conversion.
func NewLigandService(
	storage config.StorageConfig,
	ph float64,
	converter Converter,
	pubchem CompoundSource,
	cache Cache,
	metrics *prometheus.Metrics,
	logger logging.Logger,
) *LigandService {
	return &LigandService{
		storage:   storage,
		ph:        ph,
		converter: converter,
		pubchem:   pubchem,
		cache:     cache,
		metrics:   metrics,
		logger:    logger.Named("preparation.ligand"),
	}
}

// PrepareFromSMILES generates 3D coordinates for a SMILES string and
// converts the result to a protonated ligand PDBQT.
func (s *LigandService) PrepareFromSMILES(ctx context.Context, smiles string) (*LigandResult, error) {
	start := time.Now()
	res, err := s.fromSMILES(ctx, smiles, "smiles")
	s.observe(start, err)
	return res, err
}

// PrepareFromName resolves a compound name through PubChem and prepares the
// resulting SMILES.
func (s *LigandService) PrepareFromName(ctx context.Context, name string) (*LigandResult, error) {
	start := time.Now()

	var compound remote.Compound
	err := s.cache.GetOrSet(ctx, "pubchem:"+name, &compound, 24*time.Hour,
		func(ctx context.Context) (interface{}, error) {
			return s.pubchem.FetchByName(ctx, name)
		})
	if err != nil {
		s.observe(start, err)
		return nil, err
	}

	s.logger.Info("resolved compound name",
		logging.String("name", name),
		logging.Int64("cid", compound.CID),
		logging.String("smiles", compound.SMILES))

	res, err := s.fromSMILES(ctx, compound.SMILES, "pubchem:"+name)
	if res != nil {
		res.CID = compound.CID
	}
	s.observe(start, err)
	return res, err
}

// PrepareFromFile converts an uploaded ligand structure (SDF, MOL2, PDB)
// directly to PDBQT.
func (s *LigandService) PrepareFromFile(ctx context.Context, inputPath string) (*LigandResult, error) {
	start := time.Now()
	jobID, dir, err := jobDirs(s.storage.WorkDir)
	if err != nil {
		s.observe(start, err)
		return nil, err
	}

	pdbqt := filepath.Join(dir, "ligand.pdbqt")
	if strings.EqualFold(filepath.Ext(inputPath), ".pdbqt") {
		// Already docking-ready; copy through without a conversion pass.
		if err := copyFile(inputPath, pdbqt); err != nil {
			s.observe(start, err)
			return nil, err
		}
	} else if err := s.converter.ConvertLigandToPDBQT(ctx, inputPath, pdbqt, s.ph); err != nil {
		s.observe(start, err)
		return nil, err
	}

	res := s.finish(ctx, jobID, dir, "upload:"+filepath.Base(inputPath), "", pdbqt)
	s.observe(start, nil)
	return res, nil
}

func (s *LigandService) fromSMILES(ctx context.Context, smiles, source string) (*LigandResult, error) {
	jobID, dir, err := jobDirs(s.storage.WorkDir)
	if err != nil {
		return nil, err
	}

	sdf := filepath.Join(dir, "ligand3d.sdf")
	if err := s.converter.SMILESTo3DSDF(ctx, smiles, sdf); err != nil {
		return nil, err
	}

	pdbqt := filepath.Join(dir, "ligand.pdbqt")
	if err := s.converter.ConvertLigandToPDBQT(ctx, sdf, pdbqt, s.ph); err != nil {
		return nil, err
	}

	return s.finish(ctx, jobID, dir, source, smiles, pdbqt), nil
}

// finish verifies the prepared ligand, attaches the weight estimate, and
// renders a plain-PDB companion for viewers that cannot read PDBQT.
func (s *LigandService) finish(ctx context.Context, jobID uuid.UUID, dir, source, smiles, pdbqt string) *LigandResult {
	report := verify.LigandPreparation(pdbqt)
	for _, w := range warningsOf(report.Output) {
		s.logger.Warn("preparation warning",
			logging.String("job_id", jobID.String()), logging.String("warning", w))
	}

	res := &LigandResult{
		JobID:     jobID,
		Source:    source,
		SMILES:    smiles,
		PDBQTPath: pdbqt,
		Report:    report,
	}
	if weight, ok := structure.EstimateWeight(pdbqt); ok {
		res.WeightDa = weight
	}

	visPDB := filepath.Join(dir, "ligand.pdb")
	if err := s.converter.ConvertToPDB(ctx, pdbqt, visPDB); err != nil {
		s.logger.Warn("visualization PDB conversion failed",
			logging.String("job_id", jobID.String()), logging.Err(err))
	} else {
		res.PDBPath = visPDB
	}
	return res
}

func (s *LigandService) observe(start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	s.metrics.PreparationsTotal.WithLabelValues("ligand", status).Inc()
	s.metrics.PreparationDuration.WithLabelValues("ligand").Observe(time.Since(start).Seconds())
}
