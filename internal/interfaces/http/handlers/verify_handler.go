package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arqgene/dockprep/internal/domain/structure"
	"github.com/arqgene/dockprep/internal/domain/verify"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
)

// VerifyHandler runs standalone structure checks on uploaded files.
type VerifyHandler struct {
	uploadDir string
	logger    logging.Logger
}

// NewVerifyHandler builds a VerifyHandler.
func NewVerifyHandler(uploadDir string, log logging.Logger) *VerifyHandler {
	return &VerifyHandler{uploadDir: uploadDir, logger: log.Named("http.verify")}
}

// verifyResponse wraps a report with the sniffed input format.
type verifyResponse struct {
	Format structure.Format `json:"detected_format"`
	Report *verify.Report   `json:"report"`
}

// Verify handles POST /verify.  Form fields: "structure" (file), "format"
// (pdb or pdbqt), and for pdbqt a "mode" of protein or ligand.
func (h *VerifyHandler) Verify(c *gin.Context) {
	path, err := saveUpload(c, "structure", h.uploadDir)
	if err != nil {
		respondError(c, err)
		return
	}

	var report *verify.Report
	switch c.PostForm("format") {
	case "", "pdb":
		report = verify.PDB(path)
	case "pdbqt":
		mode := verify.ModeLigand
		switch c.PostForm("mode") {
		case "protein":
			mode = verify.ModeProtein
		case "", "ligand":
		default:
			respondBadRequest(c, "mode must be protein or ligand")
			return
		}
		report = verify.PDBQT(path, mode)
	default:
		respondBadRequest(c, "format must be pdb or pdbqt")
		return
	}

	c.JSON(http.StatusOK, verifyResponse{
		Format: structure.DetectFormat(path),
		Report: report,
	})
}

// Weight handles POST /weight: estimate the molecular weight of an uploaded
// PDBQT ligand.
func (h *VerifyHandler) Weight(c *gin.Context) {
	path, err := saveUpload(c, "structure", h.uploadDir)
	if err != nil {
		respondError(c, err)
		return
	}

	weight, ok := structure.EstimateWeight(path)
	if !ok {
		respondBadRequest(c, "no weighable atoms found in upload")
		return
	}
	c.JSON(http.StatusOK, gin.H{"estimated_weight_da": weight})
}
