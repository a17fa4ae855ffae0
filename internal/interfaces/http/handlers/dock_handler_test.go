package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdocking "github.com/arqgene/dockprep/internal/application/docking"
	results "github.com/arqgene/dockprep/internal/domain/docking"
	"github.com/arqgene/dockprep/internal/infrastructure/database/postgres/repositories"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	"github.com/arqgene/dockprep/internal/testutil"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

type fakeDocker struct {
	lastReq appdocking.Request
	result  *appdocking.Result
	job     *repositories.Job
	poses   []results.PoseResult
	err     error
}

func (f *fakeDocker) Run(ctx context.Context, req appdocking.Request) (*appdocking.Result, error) {
	f.lastReq = req
	return f.result, f.err
}

func (f *fakeDocker) Job(ctx context.Context, id uuid.UUID) (*repositories.Job, error) {
	if f.job == nil {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "no such job")
	}
	return f.job, nil
}

func (f *fakeDocker) Poses(ctx context.Context, id uuid.UUID) ([]results.PoseResult, error) {
	return f.poses, f.err
}

func dockRouter(t *testing.T, d Docker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewDockHandler(d, logging.NewNopLogger())
	r := gin.New()
	r.POST("/dock", h.Dock)
	r.GET("/jobs/:id", h.GetJob)
	r.GET("/jobs/:id/poses", h.ListPoses)
	r.GET("/jobs/:id/poses/:index/complex", h.DownloadComplex)
	return r
}

func TestDockPassesRequestThrough(t *testing.T) {
	d := &fakeDocker{result: &appdocking.Result{JobID: uuid.New()}}
	r := dockRouter(t, d)

	body := `{
		"receptor_pdbqt": "/work/receptor.pdbqt",
		"ligand_pdbqt": "/work/ligand.pdbqt",
		"ligand_name": "aspirin",
		"box": {"center_x": 1, "center_y": 2, "center_z": 3, "size_x": 20, "size_y": 20, "size_z": 20},
		"num_modes": 5
	}`
	w := postJSON(t, r, "/dock", body)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "/work/receptor.pdbqt", d.lastReq.ReceptorPDBQT)
	assert.Equal(t, 5, d.lastReq.NumModes)
	require.NotNil(t, d.lastReq.Box)
	assert.Equal(t, 3.0, d.lastReq.Box.CenterZ)
}

func TestDockRequiresPaths(t *testing.T) {
	r := dockRouter(t, &fakeDocker{})
	w := postJSON(t, r, "/dock", `{"ligand_pdbqt":"/work/ligand.pdbqt"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDockMapsEngineError(t *testing.T) {
	d := &fakeDocker{err: apperrors.New(apperrors.ErrCodeNoDockingResults, "engine produced no poses")}
	r := dockRouter(t, d)

	w := postJSON(t, r, "/dock", `{"receptor_pdbqt":"a","ligand_pdbqt":"b"}`)
	assert.Equal(t, apperrors.HTTPStatus(apperrors.ErrCodeNoDockingResults), w.Code)
}

func TestGetJob(t *testing.T) {
	id := uuid.New()
	d := &fakeDocker{job: &repositories.Job{ID: id, Status: repositories.JobStatusComplete}}
	r := dockRouter(t, d)

	req := httptest.NewRequest(http.MethodGet, "/jobs/"+id.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"complete"`)
}

func TestGetJobInvalidID(t *testing.T) {
	r := dockRouter(t, &fakeDocker{})
	req := httptest.NewRequest(http.MethodGet, "/jobs/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJobNotFound(t *testing.T) {
	r := dockRouter(t, &fakeDocker{})
	req := httptest.NewRequest(http.MethodGet, "/jobs/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadComplex(t *testing.T) {
	content := "ATOM  receptor\nTER\nHETATM ligand\nEND\n"
	path := testutil.WriteFile(t, t.TempDir(), "complex_1.pdb", content)
	d := &fakeDocker{poses: []results.PoseResult{{PoseIndex: 1, Affinity: -7.5, ComplexPath: path}}}
	r := dockRouter(t, d)

	req := httptest.NewRequest(http.MethodGet, "/jobs/"+uuid.NewString()+"/poses/1/complex", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "complex_1.pdb")
}

func TestDownloadComplexUnknownPose(t *testing.T) {
	d := &fakeDocker{poses: []results.PoseResult{{PoseIndex: 1}}}
	r := dockRouter(t, d)

	req := httptest.NewRequest(http.MethodGet, "/jobs/"+uuid.NewString()+"/poses/7/complex", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadComplexBadIndex(t *testing.T) {
	r := dockRouter(t, &fakeDocker{})
	for _, idx := range []string{"0", "-1", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/jobs/"+uuid.NewString()+"/poses/"+idx+"/complex", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, idx)
	}
}

func TestListPoses(t *testing.T) {
	d := &fakeDocker{poses: []results.PoseResult{
		{PoseIndex: 1, Affinity: -7.5},
		{PoseIndex: 2, Affinity: -6.1},
	}}
	r := dockRouter(t, d)

	req := httptest.NewRequest(http.MethodGet, "/jobs/"+uuid.NewString()+"/poses", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"affinity":-7.5`))
}
