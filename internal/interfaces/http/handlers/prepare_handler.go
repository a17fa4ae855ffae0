package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arqgene/dockprep/internal/application/preparation"
	"github.com/arqgene/dockprep/internal/domain/structure"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
)

// ProteinPreparer is the protein service surface used by the handler.
type ProteinPreparer interface {
	PrepareFromFile(ctx context.Context, inputPath string, sel structure.Selection) (*preparation.ProteinResult, error)
	PrepareFromAccession(ctx context.Context, accession string, sel structure.Selection) (*preparation.ProteinResult, error)
	PrepareFromName(ctx context.Context, name string, sel structure.Selection) (*preparation.ProteinResult, error)
	PrepareFromSequence(ctx context.Context, sequence string, sel structure.Selection) (*preparation.ProteinResult, error)
}

// LigandPreparer is the ligand service surface used by the handler.
type LigandPreparer interface {
	PrepareFromSMILES(ctx context.Context, smiles string) (*preparation.LigandResult, error)
	PrepareFromName(ctx context.Context, name string) (*preparation.LigandResult, error)
	PrepareFromFile(ctx context.Context, inputPath string) (*preparation.LigandResult, error)
}

// PrepareHandler serves the structure preparation endpoints.
type PrepareHandler struct {
	proteins  ProteinPreparer
	ligands   LigandPreparer
	uploadDir string
	logger    logging.Logger
}

// NewPrepareHandler builds a PrepareHandler; uploadDir receives multipart
// uploads before the pipeline copies them into job directories.
func NewPrepareHandler(proteins ProteinPreparer, ligands LigandPreparer, uploadDir string, log logging.Logger) *PrepareHandler {
	return &PrepareHandler{
		proteins:  proteins,
		ligands:   ligands,
		uploadDir: uploadDir,
		logger:    log.Named("http.prepare"),
	}
}

// selectionSpec is the wire form of a cleaning selection.
type selectionSpec struct {
	KeepChain    string `json:"keep_chain" form:"keep_chain"`
	RemoveWater  bool   `json:"remove_water" form:"remove_water"`
	RemoveHetero bool   `json:"remove_hetero" form:"remove_hetero"`
}

func (s selectionSpec) toSelection() structure.Selection {
	return structure.Selection{
		KeepChain:    strings.TrimSpace(s.KeepChain),
		RemoveWater:  s.RemoveWater,
		RemoveHetero: s.RemoveHetero,
	}
}

// proteinRequest accepts exactly one of accession, name, or sequence.
type proteinRequest struct {
	Accession string        `json:"accession"`
	Name      string        `json:"name"`
	Sequence  string        `json:"sequence"`
	Selection selectionSpec `json:"selection"`
}

// PrepareProtein handles POST /prepare/protein.
func (h *PrepareHandler) PrepareProtein(c *gin.Context) {
	var req proteinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	sources := 0
	for _, s := range []string{req.Accession, req.Name, req.Sequence} {
		if strings.TrimSpace(s) != "" {
			sources++
		}
	}
	if sources != 1 {
		respondBadRequest(c, "provide exactly one of accession, name, or sequence")
		return
	}

	sel := req.Selection.toSelection()
	var (
		res *preparation.ProteinResult
		err error
	)
	switch {
	case req.Accession != "":
		res, err = h.proteins.PrepareFromAccession(c.Request.Context(), req.Accession, sel)
	case req.Name != "":
		res, err = h.proteins.PrepareFromName(c.Request.Context(), req.Name, sel)
	default:
		res, err = h.proteins.PrepareFromSequence(c.Request.Context(), req.Sequence, sel)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PrepareProteinUpload handles POST /prepare/protein/upload (multipart).
// Selection flags ride along as form fields.
func (h *PrepareHandler) PrepareProteinUpload(c *gin.Context) {
	var spec selectionSpec
	if err := c.ShouldBind(&spec); err != nil {
		respondBadRequest(c, "invalid selection fields: "+err.Error())
		return
	}

	path, err := saveUpload(c, "structure", h.uploadDir)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.proteins.PrepareFromFile(c.Request.Context(), path, spec.toSelection())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ligandRequest accepts exactly one of smiles or name.
type ligandRequest struct {
	SMILES string `json:"smiles"`
	Name   string `json:"name"`
}

// PrepareLigand handles POST /prepare/ligand.
func (h *PrepareHandler) PrepareLigand(c *gin.Context) {
	var req ligandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	smiles := strings.TrimSpace(req.SMILES)
	name := strings.TrimSpace(req.Name)
	if (smiles == "") == (name == "") {
		respondBadRequest(c, "provide exactly one of smiles or name")
		return
	}

	var (
		res *preparation.LigandResult
		err error
	)
	if smiles != "" {
		res, err = h.ligands.PrepareFromSMILES(c.Request.Context(), smiles)
	} else {
		res, err = h.ligands.PrepareFromName(c.Request.Context(), name)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PrepareLigandUpload handles POST /prepare/ligand/upload (multipart).
func (h *PrepareHandler) PrepareLigandUpload(c *gin.Context) {
	path, err := saveUpload(c, "ligand", h.uploadDir)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.ligands.PrepareFromFile(c.Request.Context(), path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
