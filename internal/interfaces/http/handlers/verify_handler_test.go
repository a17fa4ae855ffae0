package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	"github.com/arqgene/dockprep/internal/testutil"
)

func verifyRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewVerifyHandler(t.TempDir(), logging.NewNopLogger())
	r := gin.New()
	r.POST("/verify", h.Verify)
	r.POST("/weight", h.Weight)
	return r
}

func multipartUpload(t *testing.T, fileField, fileName, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile(fileField, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestVerifyUploadedPDB(t *testing.T) {
	r := verifyRouter(t)
	body, ctype := multipartUpload(t, "structure", "protein.pdb",
		testutil.ProteinPDB(5, "A", "B"), map[string]string{"format": "pdb"})

	req := httptest.NewRequest(http.MethodPost, "/verify", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Format string `json:"detected_format"`
		Report struct {
			Valid bool `json:"valid"`
			Stats struct {
				AtomCount  int `json:"atom_count"`
				ChainCount int `json:"chain_count"`
			} `json:"statistics"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pdb", resp.Format)
	assert.True(t, resp.Report.Valid)
	assert.Equal(t, 12, resp.Report.Stats.AtomCount)
	assert.Equal(t, 2, resp.Report.Stats.ChainCount)
}

func TestVerifyLigandPDBQT(t *testing.T) {
	r := verifyRouter(t)
	body, ctype := multipartUpload(t, "structure", "ligand.pdbqt",
		testutil.LigandPDBQT(true, "C", "N", "O"),
		map[string]string{"format": "pdbqt", "mode": "ligand"})

	req := httptest.NewRequest(http.MethodPost, "/verify", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"has_root":true`)
}

func TestVerifyRejectsUnknownFormat(t *testing.T) {
	r := verifyRouter(t)
	body, ctype := multipartUpload(t, "structure", "x.bin", "data",
		map[string]string{"format": "mol2"})

	req := httptest.NewRequest(http.MethodPost, "/verify", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWeightEndpoint(t *testing.T) {
	r := verifyRouter(t)
	body, ctype := multipartUpload(t, "structure", "ligand.pdbqt",
		testutil.LigandPDBQT(true, "C", "C", "O"), nil)

	req := httptest.NewRequest(http.MethodPost, "/weight", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 40.02, resp["estimated_weight_da"], 0.01)
}

func TestWeightNoAtoms(t *testing.T) {
	r := verifyRouter(t)
	body, ctype := multipartUpload(t, "structure", "empty.pdbqt", "", nil)

	req := httptest.NewRequest(http.MethodPost, "/weight", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
