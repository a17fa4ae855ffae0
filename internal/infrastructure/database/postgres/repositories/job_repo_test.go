package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqgene/dockprep/internal/domain/docking"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

func newRepo(t *testing.T) (*JobRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewJobRepository(db, logging.NewNopLogger()), mock
}

func TestJobCreate(t *testing.T) {
	repo, mock := newRepo(t)
	job := &Job{
		ID:             uuid.New(),
		ReceptorSource: "P00533",
		LigandName:     "aspirin",
		Status:         JobStatusPending,
		NumModes:       9,
		Exhaustiveness: 8,
	}
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO docking_jobs`).
		WithArgs(job.ID, job.ReceptorSource, job.LigandName, job.Status, job.NumModes, job.Exhaustiveness).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.Create(context.Background(), job))
	assert.Equal(t, now, job.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobUpdateStatus(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()
	mock.ExpectExec(`UPDATE docking_jobs`).
		WithArgs(id, JobStatusFailed, "smina timed out").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), id, JobStatusFailed, "smina timed out"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobUpdateStatusUnknownJob(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()
	mock.ExpectExec(`UPDATE docking_jobs`).
		WithArgs(id, JobStatusComplete, "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), id, JobStatusComplete, "")
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobGet(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM docking_jobs`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "receptor_source", "ligand_name", "status", "failure_reason",
			"num_modes", "exhaustiveness", "created_at", "updated_at",
		}).AddRow(id, "P00533", "aspirin", JobStatusComplete, "", 9, 8, now, now))

	job, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "aspirin", job.LigandName)
	assert.Equal(t, JobStatusComplete, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobGetNotFound(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()
	mock.ExpectQuery(`SELECT .* FROM docking_jobs`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), id)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePosesTransactional(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()
	poses := []docking.PoseResult{
		{PoseIndex: 1, Affinity: -7.2, ComplexPath: "/data/complex_1.pdb"},
		{PoseIndex: 2, Affinity: -6.8, ComplexPath: "/data/complex_2.pdb"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM docking_poses`).WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for _, p := range poses {
		mock.ExpectExec(`INSERT INTO docking_poses`).
			WithArgs(id, p.PoseIndex, p.Affinity, p.ComplexPath).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.SavePoses(context.Background(), id, poses))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePosesRollsBackOnInsertError(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM docking_poses`).WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO docking_poses`).
		WithArgs(id, 1, -7.2, "/data/complex_1.pdb").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.SavePoses(context.Background(), id, []docking.PoseResult{
		{PoseIndex: 1, Affinity: -7.2, ComplexPath: "/data/complex_1.pdb"},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPoses(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()
	mock.ExpectQuery(`SELECT pose_index, affinity, complex_path`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"pose_index", "affinity", "complex_path"}).
			AddRow(1, -7.2, "/data/complex_1.pdb").
			AddRow(2, -6.8, "/data/complex_2.pdb"))

	poses, err := repo.ListPoses(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, poses, 2)
	assert.Equal(t, -7.2, poses[0].Affinity)
	assert.Equal(t, 2, poses[1].PoseIndex)
	assert.NoError(t, mock.ExpectationsWereMet())
}
