// Package docking orchestrates a full docking run: box placement, the smina
// invocation, pose extraction, complex assembly, and persistence of the
// results.
package docking

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/arqgene/dockprep/internal/config"
	results "github.com/arqgene/dockprep/internal/domain/docking"
	"github.com/arqgene/dockprep/internal/domain/structure"
	"github.com/arqgene/dockprep/internal/infrastructure/database/postgres/repositories"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/prometheus"
	"github.com/arqgene/dockprep/internal/infrastructure/tools"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// Engine runs one docking invocation.  tools.Smina satisfies it.
type Engine interface {
	Dock(ctx context.Context, req tools.DockRequest) error
}

// JobStore persists jobs and poses.  *repositories.JobRepository satisfies
// it; a nil store is allowed and turns persistence into a no-op, which is
// how the CLI runs without PostgreSQL.
type JobStore interface {
	Create(ctx context.Context, job *repositories.Job) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status, reason string) error
	SavePoses(ctx context.Context, jobID uuid.UUID, poses []results.PoseResult) error
	Get(ctx context.Context, id uuid.UUID) (*repositories.Job, error)
	ListPoses(ctx context.Context, jobID uuid.UUID) ([]results.PoseResult, error)
}

// Request carries everything one docking run needs.  Box is optional: when
// nil the search volume is a cube of the configured edge length centered on
// the receptor's geometric center.
type Request struct {
	ReceptorPDBQT  string
	LigandPDBQT    string
	ReceptorSource string
	LigandName     string
	Box            *tools.Box
	NumModes       int
	Exhaustiveness int
}

// Result is the outcome of a completed docking run.
type Result struct {
	JobID      uuid.UUID            `json:"job_id"`
	OutputPath string               `json:"output_path"`
	Box        tools.Box            `json:"box"`
	Poses      []results.PoseResult `json:"poses"`
}

// Service drives docking runs end to end.
type Service struct {
	storage config.StorageConfig
	params  config.DockingConfig
	engine  Engine
	store   JobStore
	metrics *prometheus.Metrics
	logger  logging.Logger
}

// NewService wires a docking Service.  store may be nil.
func NewService(
	storage config.StorageConfig,
	params config.DockingConfig,
	engine Engine,
	store JobStore,
	metrics *prometheus.Metrics,
	logger logging.Logger,
) *Service {
	return &Service{
		storage: storage,
		params:  params,
		engine:  engine,
		store:   store,
		metrics: metrics,
		logger:  logger.Named("docking"),
	}
}

// Run executes one docking job.  The job row is created before the engine
// starts so its status is observable while smina runs.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	numModes := req.NumModes
	if numModes <= 0 {
		numModes = s.params.NumModes
	}
	if numModes > results.MaxModes {
		numModes = results.MaxModes
	}
	exhaustiveness := req.Exhaustiveness
	if exhaustiveness <= 0 {
		exhaustiveness = s.params.Exhaustiveness
	}

	jobID := uuid.New()
	dir := filepath.Join(s.storage.ResultsDir, jobID.String())
	if err := ensureDir(dir); err != nil {
		s.observe(start, err, 0)
		return nil, err
	}

	job := &repositories.Job{
		ID:             jobID,
		ReceptorSource: req.ReceptorSource,
		LigandName:     req.LigandName,
		Status:         repositories.JobStatusPending,
		NumModes:       numModes,
		Exhaustiveness: exhaustiveness,
	}
	if s.store != nil {
		if err := s.store.Create(ctx, job); err != nil {
			s.observe(start, err, 0)
			return nil, err
		}
	}

	res, err := s.run(ctx, jobID, dir, req, numModes, exhaustiveness)
	if err != nil {
		s.transition(ctx, jobID, repositories.JobStatusFailed, err.Error())
		s.observe(start, err, 0)
		return nil, err
	}

	s.transition(ctx, jobID, repositories.JobStatusComplete, "")
	s.observe(start, nil, len(res.Poses))
	s.logger.Info("docking complete",
		logging.String("job_id", jobID.String()),
		logging.Int("poses", len(res.Poses)),
		logging.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (s *Service) run(ctx context.Context, jobID uuid.UUID, dir string, req Request, numModes, exhaustiveness int) (*Result, error) {
	box, err := s.resolveBox(req)
	if err != nil {
		return nil, err
	}

	s.transition(ctx, jobID, repositories.JobStatusDocking, "")

	out := filepath.Join(dir, "docked.pdbqt")
	if err := s.engine.Dock(ctx, tools.DockRequest{
		ReceptorPath:   req.ReceptorPDBQT,
		LigandPath:     req.LigandPDBQT,
		OutPath:        out,
		Box:            box,
		NumModes:       numModes,
		Exhaustiveness: exhaustiveness,
	}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDockingFailed, "docking engine run")
	}

	affinities := results.ParseAffinities(out)
	posePaths, err := results.SplitPoses(out, dir)
	if err != nil {
		return nil, err
	}
	if len(posePaths) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNoDockingResults, "engine produced no poses")
	}

	poses := make([]results.PoseResult, 0, len(posePaths))
	for i, posePath := range posePaths {
		complexPath := filepath.Join(dir, fmt.Sprintf("complex_%d.pdb", i+1))
		if err := results.CombineReceptorLigand(req.ReceptorPDBQT, posePath, complexPath); err != nil {
			return nil, err
		}
		pose := results.PoseResult{PoseIndex: i + 1, ComplexPath: complexPath}
		if i < len(affinities) {
			pose.Affinity = affinities[i]
		}
		poses = append(poses, pose)
	}

	if s.store != nil {
		if err := s.store.SavePoses(ctx, jobID, poses); err != nil {
			return nil, err
		}
	}

	return &Result{JobID: jobID, OutputPath: out, Box: box, Poses: poses}, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "creating results directory")
	}
	return nil
}

// resolveBox returns the caller's box, or centers a default cube on the
// receptor's geometric center.
func (s *Service) resolveBox(req Request) (tools.Box, error) {
	if req.Box != nil {
		return *req.Box, nil
	}
	center, ok := structure.GeometricCenter(req.ReceptorPDBQT)
	if !ok {
		return tools.Box{}, apperrors.New(apperrors.ErrCodeNoAtoms,
			"cannot place docking box: receptor has no atoms with coordinates")
	}
	return tools.CubeAround(center.X, center.Y, center.Z, s.params.BoxSize), nil
}

// Job returns a stored job row.
func (s *Service) Job(ctx context.Context, id uuid.UUID) (*repositories.Job, error) {
	if s.store == nil {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "job persistence is not configured")
	}
	return s.store.Get(ctx, id)
}

// Poses returns the stored poses of a job, best affinity first.
func (s *Service) Poses(ctx context.Context, id uuid.UUID) ([]results.PoseResult, error) {
	if s.store == nil {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "job persistence is not configured")
	}
	return s.store.ListPoses(ctx, id)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, status, reason string) {
	if s.store == nil {
		return
	}
	if err := s.store.UpdateStatus(ctx, id, status, reason); err != nil {
		s.logger.Warn("job status update failed",
			logging.String("job_id", id.String()),
			logging.String("status", status),
			logging.Err(err))
	}
}

func (s *Service) observe(start time.Time, err error, poses int) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	s.metrics.DockingJobsTotal.WithLabelValues(status).Inc()
	s.metrics.DockingJobDuration.Observe(time.Since(start).Seconds())
	if err == nil {
		s.metrics.DockingPosesFound.Observe(float64(poses))
	}
}
