// Package repositories holds the PostgreSQL persistence for docking jobs.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/arqgene/dockprep/internal/domain/docking"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// Job statuses as stored in the jobs table.
const (
	JobStatusPending   = "pending"
	JobStatusPreparing = "preparing"
	JobStatusDocking   = "docking"
	JobStatusComplete  = "complete"
	JobStatusFailed    = "failed"
)

// Job is one docking run: a receptor source, a ligand, and the engine
// parameters it ran with.
type Job struct {
	ID             uuid.UUID `json:"id"`
	ReceptorSource string    `json:"receptor_source"`
	LigandName     string    `json:"ligand_name"`
	Status         string    `json:"status"`
	FailureReason  string    `json:"failure_reason,omitempty"`
	NumModes       int       `json:"num_modes"`
	Exhaustiveness int       `json:"exhaustiveness"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// JobRepository is the PostgreSQL store for jobs and their pose results.
type JobRepository struct {
	db     *sql.DB
	logger logging.Logger
}

// NewJobRepository builds a repository over db.
func NewJobRepository(db *sql.DB, log logging.Logger) *JobRepository {
	return &JobRepository{db: db, logger: log}
}

// Create inserts a new job row and fills in its timestamps.
func (r *JobRepository) Create(ctx context.Context, job *Job) error {
	const q = `
		INSERT INTO docking_jobs (id, receptor_source, ligand_name, status, num_modes, exhaustiveness)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, q,
		job.ID, job.ReceptorSource, job.LigandName, job.Status,
		job.NumModes, job.Exhaustiveness,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "inserting docking job")
	}
	return nil
}

// UpdateStatus moves a job to a new status; reason is only stored for
// failures.
func (r *JobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, reason string) error {
	const q = `
		UPDATE docking_jobs
		SET status = $2, failure_reason = $3, updated_at = now()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, id, status, reason)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "updating job status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Newf(apperrors.ErrCodeNotFound, "job %s not found", id)
	}
	return nil
}

// Get loads one job by id.
func (r *JobRepository) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	const q = `
		SELECT id, receptor_source, ligand_name, status, COALESCE(failure_reason, ''),
		       num_modes, exhaustiveness, created_at, updated_at
		FROM docking_jobs WHERE id = $1`

	job := &Job{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&job.ID, &job.ReceptorSource, &job.LigandName, &job.Status, &job.FailureReason,
		&job.NumModes, &job.Exhaustiveness, &job.CreatedAt, &job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.Newf(apperrors.ErrCodeNotFound, "job %s not found", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "loading docking job")
	}
	return job, nil
}

// SavePoses stores all pose results of one job in a single transaction,
// replacing any previous rows for that job.
func (r *JobRepository) SavePoses(ctx context.Context, jobID uuid.UUID, poses []docking.PoseResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "starting pose transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM docking_poses WHERE job_id = $1`, jobID); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "clearing previous poses")
	}

	const q = `
		INSERT INTO docking_poses (job_id, pose_index, affinity, complex_path)
		VALUES ($1, $2, $3, $4)`
	for _, p := range poses {
		if _, err := tx.ExecContext(ctx, q, jobID, p.PoseIndex, p.Affinity, p.ComplexPath); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "inserting pose result")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "committing pose results")
	}
	return nil
}

// ListPoses returns a job's poses ordered by pose index.
func (r *JobRepository) ListPoses(ctx context.Context, jobID uuid.UUID) ([]docking.PoseResult, error) {
	const q = `
		SELECT pose_index, affinity, complex_path
		FROM docking_poses WHERE job_id = $1
		ORDER BY pose_index`

	rows, err := r.db.QueryContext(ctx, q, jobID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "listing pose results")
	}
	defer rows.Close()

	var poses []docking.PoseResult
	for rows.Next() {
		var p docking.PoseResult
		if err := rows.Scan(&p.PoseIndex, &p.Affinity, &p.ComplexPath); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scanning pose row")
		}
		poses = append(poses, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "iterating pose rows")
	}
	return poses, nil
}
