package preparation

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/arqgene/dockprep/internal/config"
	"github.com/arqgene/dockprep/internal/domain/structure"
	"github.com/arqgene/dockprep/internal/domain/verify"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// hydrogenationPH is the pH receptors are protonated at before conversion.
const hydrogenationPH = 7.0

// ProteinService prepares receptors for docking from uploaded files, UniProt
// accessions, protein names, or raw sequences.
type ProteinService struct {
	storage   config.StorageConfig
	converter Converter
	uniprot   SequenceSource
	alphafold StructureFetcher
	esmfold   Folder
	cache     Cache
	metrics   *prometheus.Metrics
	logger    logging.Logger
}

// NewProteinService wires a ProteinService; pass NopCache() when Redis is
// not configured.
func NewProteinService(
	storage config.StorageConfig,
	converter Converter,
	uniprot SequenceSource,
	alphafold StructureFetcher,
	esmfold Folder,
	cache Cache,
	metrics *prometheus.Metrics,
	logger logging.Logger,
) *ProteinService {
	return &ProteinService{
		storage:   storage,
		converter: converter,
		uniprot:   uniprot,
		alphafold: alphafold,
		esmfold:   esmfold,
		cache:     cache,
		metrics:   metrics,
		logger:    logger.Named("preparation.protein"),
	}
}

// PrepareFromFile runs the full receptor pipeline on an uploaded structure
// file: format detection, cleaning with sel, PDBQT conversion, verification.
func (s *ProteinService) PrepareFromFile(ctx context.Context, inputPath string, sel structure.Selection) (*ProteinResult, error) {
	start := time.Now()
	res, err := s.prepare(ctx, inputPath, "upload:"+filepath.Base(inputPath), sel)
	s.observe(start, err)
	return res, err
}

// PrepareFromAccession fetches the AlphaFold model for accession, falling
// back to ESMFold on the UniProt sequence when no model exists, then runs
// the receptor pipeline.
func (s *ProteinService) PrepareFromAccession(ctx context.Context, accession string, sel structure.Selection) (*ProteinResult, error) {
	start := time.Now()
	res, err := s.prepareFromAccession(ctx, accession, sel)
	s.observe(start, err)
	return res, err
}

// PrepareFromName resolves a free-text protein name through UniProt, then
// behaves like PrepareFromAccession.
func (s *ProteinService) PrepareFromName(ctx context.Context, name string, sel structure.Selection) (*ProteinResult, error) {
	start := time.Now()

	var accession string
	err := s.cache.GetOrSet(ctx, "uniprot:name:"+name, &accession, 24*time.Hour,
		func(ctx context.Context) (interface{}, error) {
			return s.uniprot.SearchByName(ctx, name)
		})
	if err != nil {
		s.observe(start, err)
		return nil, err
	}

	s.logger.Info("resolved protein name",
		logging.String("name", name), logging.String("accession", accession))
	res, err := s.prepareFromAccession(ctx, accession, sel)
	s.observe(start, err)
	return res, err
}

// PrepareFromSequence folds a raw amino-acid sequence with ESMFold and runs
// the receptor pipeline on the prediction.
func (s *ProteinService) PrepareFromSequence(ctx context.Context, sequence string, sel structure.Selection) (*ProteinResult, error) {
	start := time.Now()
	jobID, dir, err := jobDirs(s.storage.WorkDir)
	if err != nil {
		s.observe(start, err)
		return nil, err
	}

	raw := filepath.Join(dir, "predicted.pdb")
	if err := s.esmfold.PredictStructure(ctx, sequence, raw); err != nil {
		s.observe(start, err)
		return nil, err
	}

	res, err := s.pipeline(ctx, jobID, dir, raw, "sequence", sel)
	s.observe(start, err)
	return res, err
}

func (s *ProteinService) prepareFromAccession(ctx context.Context, accession string, sel structure.Selection) (*ProteinResult, error) {
	jobID, dir, err := jobDirs(s.storage.WorkDir)
	if err != nil {
		return nil, err
	}

	raw := filepath.Join(dir, "model.pdb")
	err = s.alphafold.FetchStructure(ctx, accession, raw)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return nil, err
		}
		// No AlphaFold model; fold the sequence instead.
		s.logger.Info("no precomputed model, folding sequence",
			logging.String("accession", accession))
		var sequence string
		cerr := s.cache.GetOrSet(ctx, "uniprot:seq:"+accession, &sequence, 24*time.Hour,
			func(ctx context.Context) (interface{}, error) {
				return s.uniprot.FetchFASTA(ctx, accession)
			})
		if cerr != nil {
			return nil, cerr
		}
		if ferr := s.esmfold.PredictStructure(ctx, sequence, raw); ferr != nil {
			return nil, ferr
		}
	}

	return s.pipeline(ctx, jobID, dir, raw, accession, sel)
}

// prepare handles the upload path where the job directory is created here.
func (s *ProteinService) prepare(ctx context.Context, inputPath, source string, sel structure.Selection) (*ProteinResult, error) {
	jobID, dir, err := jobDirs(s.storage.WorkDir)
	if err != nil {
		return nil, err
	}
	return s.pipeline(ctx, jobID, dir, inputPath, source, sel)
}

// pipeline is the shared tail of every protein entry point: clean, convert,
// verify.
func (s *ProteinService) pipeline(ctx context.Context, jobID uuid.UUID, dir, rawPath, source string, sel structure.Selection) (*ProteinResult, error) {
	format := structure.DetectFormat(rawPath)

	cleaned := filepath.Join(dir, "cleaned.pdb")
	if err := structure.CleanFile(rawPath, cleaned, sel); err != nil {
		return nil, err
	}

	// Hydrogenation improves charge assignment but its failure is not
	// fatal: the cleaned structure still converts and docks.
	convertInput := cleaned
	hydrogenated := filepath.Join(dir, "hydrogenated.pdb")
	if err := s.converter.AddHydrogens(ctx, cleaned, hydrogenated, hydrogenationPH); err != nil {
		s.logger.Warn("hydrogenation failed, continuing without explicit hydrogens",
			logging.String("job_id", jobID.String()), logging.Err(err))
	} else {
		convertInput = hydrogenated
	}

	pdbqt := filepath.Join(dir, "receptor.pdbqt")
	if err := s.converter.ConvertReceptorToPDBQT(ctx, convertInput, pdbqt); err != nil {
		return nil, err
	}

	report := verify.ProteinPreparation(cleaned, pdbqt)
	for _, w := range append(warningsOf(report.Input), warningsOf(report.Output)...) {
		s.logger.Warn("preparation warning",
			logging.String("job_id", jobID.String()), logging.String("warning", w))
	}

	return &ProteinResult{
		JobID:      jobID,
		Source:     source,
		Format:     format,
		CleanedPDB: cleaned,
		PDBQTPath:  pdbqt,
		Report:     report,
	}, nil
}

func warningsOf(r *verify.Report) []string {
	if r == nil {
		return nil
	}
	return r.Warnings
}

func (s *ProteinService) observe(start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	s.metrics.PreparationsTotal.WithLabelValues("protein", status).Inc()
	s.metrics.PreparationDuration.WithLabelValues("protein").Observe(time.Since(start).Seconds())
}
