package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appdocking "github.com/arqgene/dockprep/internal/application/docking"
	results "github.com/arqgene/dockprep/internal/domain/docking"
	"github.com/arqgene/dockprep/internal/infrastructure/database/postgres/repositories"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	"github.com/arqgene/dockprep/internal/infrastructure/tools"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// Docker is the docking service surface used by the handler.
type Docker interface {
	Run(ctx context.Context, req appdocking.Request) (*appdocking.Result, error)
	Job(ctx context.Context, id uuid.UUID) (*repositories.Job, error)
	Poses(ctx context.Context, id uuid.UUID) ([]results.PoseResult, error)
}

// DockHandler serves docking runs and stored job results.
type DockHandler struct {
	docker Docker
	logger logging.Logger
}

// NewDockHandler builds a DockHandler.
func NewDockHandler(docker Docker, log logging.Logger) *DockHandler {
	return &DockHandler{docker: docker, logger: log.Named("http.dock")}
}

// boxSpec is the wire form of an explicit search box.
type boxSpec struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	CenterZ float64 `json:"center_z"`
	SizeX   float64 `json:"size_x"`
	SizeY   float64 `json:"size_y"`
	SizeZ   float64 `json:"size_z"`
}

type dockRequest struct {
	ReceptorPDBQT  string   `json:"receptor_pdbqt"`
	LigandPDBQT    string   `json:"ligand_pdbqt"`
	ReceptorSource string   `json:"receptor_source"`
	LigandName     string   `json:"ligand_name"`
	Box            *boxSpec `json:"box"`
	NumModes       int      `json:"num_modes"`
	Exhaustiveness int      `json:"exhaustiveness"`
}

// Dock handles POST /dock.  The run is synchronous; the engine timeout
// bounds it.
func (h *DockHandler) Dock(c *gin.Context) {
	var req dockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.ReceptorPDBQT == "" || req.LigandPDBQT == "" {
		respondBadRequest(c, "receptor_pdbqt and ligand_pdbqt are required")
		return
	}

	appReq := appdocking.Request{
		ReceptorPDBQT:  req.ReceptorPDBQT,
		LigandPDBQT:    req.LigandPDBQT,
		ReceptorSource: req.ReceptorSource,
		LigandName:     req.LigandName,
		NumModes:       req.NumModes,
		Exhaustiveness: req.Exhaustiveness,
	}
	if req.Box != nil {
		appReq.Box = &tools.Box{
			CenterX: req.Box.CenterX, CenterY: req.Box.CenterY, CenterZ: req.Box.CenterZ,
			SizeX: req.Box.SizeX, SizeY: req.Box.SizeY, SizeZ: req.Box.SizeZ,
		}
	}

	res, err := h.docker.Run(c.Request.Context(), appReq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetJob handles GET /jobs/:id.
func (h *DockHandler) GetJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	job, err := h.docker.Job(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListPoses handles GET /jobs/:id/poses.
func (h *DockHandler) ListPoses(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	poses, err := h.docker.Poses(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job_id": id, "poses": poses})
}

// DownloadComplex handles GET /jobs/:id/poses/:index/complex, streaming the
// receptor-ligand complex file for visualization.
func (h *DockHandler) DownloadComplex(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 1 {
		respondBadRequest(c, "pose index must be a positive integer")
		return
	}

	poses, err := h.docker.Poses(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	for _, p := range poses {
		if p.PoseIndex == index {
			c.FileAttachment(p.ComplexPath, "complex_"+strconv.Itoa(index)+".pdb")
			return
		}
	}
	respondError(c, apperrors.Newf(apperrors.ErrCodeNotFound, "job %s has no pose %d", id, index))
}

func jobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid job id")
		return uuid.Nil, false
	}
	return id, true
}
