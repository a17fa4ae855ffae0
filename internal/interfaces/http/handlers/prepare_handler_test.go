package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqgene/dockprep/internal/application/preparation"
	"github.com/arqgene/dockprep/internal/domain/structure"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

type fakeProteins struct {
	lastSel    structure.Selection
	lastMethod string
	lastInput  string
	err        error
}

func (f *fakeProteins) result() *preparation.ProteinResult {
	return &preparation.ProteinResult{Source: f.lastInput, Format: structure.FormatPDB}
}

func (f *fakeProteins) PrepareFromFile(ctx context.Context, inputPath string, sel structure.Selection) (*preparation.ProteinResult, error) {
	f.lastMethod, f.lastInput, f.lastSel = "file", inputPath, sel
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeProteins) PrepareFromAccession(ctx context.Context, accession string, sel structure.Selection) (*preparation.ProteinResult, error) {
	f.lastMethod, f.lastInput, f.lastSel = "accession", accession, sel
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeProteins) PrepareFromName(ctx context.Context, name string, sel structure.Selection) (*preparation.ProteinResult, error) {
	f.lastMethod, f.lastInput, f.lastSel = "name", name, sel
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeProteins) PrepareFromSequence(ctx context.Context, sequence string, sel structure.Selection) (*preparation.ProteinResult, error) {
	f.lastMethod, f.lastInput, f.lastSel = "sequence", sequence, sel
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

type fakeLigands struct {
	lastMethod string
	lastInput  string
	err        error
}

func (f *fakeLigands) result() *preparation.LigandResult {
	return &preparation.LigandResult{Source: f.lastInput}
}

func (f *fakeLigands) PrepareFromSMILES(ctx context.Context, smiles string) (*preparation.LigandResult, error) {
	f.lastMethod, f.lastInput = "smiles", smiles
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeLigands) PrepareFromName(ctx context.Context, name string) (*preparation.LigandResult, error) {
	f.lastMethod, f.lastInput = "name", name
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeLigands) PrepareFromFile(ctx context.Context, inputPath string) (*preparation.LigandResult, error) {
	f.lastMethod, f.lastInput = "file", inputPath
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func prepareRouter(t *testing.T, proteins ProteinPreparer, ligands LigandPreparer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewPrepareHandler(proteins, ligands, t.TempDir(), logging.NewNopLogger())
	r := gin.New()
	r.POST("/prepare/protein", h.PrepareProtein)
	r.POST("/prepare/protein/upload", h.PrepareProteinUpload)
	r.POST("/prepare/ligand", h.PrepareLigand)
	r.POST("/prepare/ligand/upload", h.PrepareLigandUpload)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPrepareProteinByAccession(t *testing.T) {
	proteins := &fakeProteins{}
	r := prepareRouter(t, proteins, &fakeLigands{})

	w := postJSON(t, r, "/prepare/protein",
		`{"accession":"P00533","selection":{"keep_chain":"A","remove_water":true}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "accession", proteins.lastMethod)
	assert.Equal(t, "P00533", proteins.lastInput)
	assert.Equal(t, structure.Selection{KeepChain: "A", RemoveWater: true}, proteins.lastSel)
}

func TestPrepareProteinBySequence(t *testing.T) {
	proteins := &fakeProteins{}
	r := prepareRouter(t, proteins, &fakeLigands{})

	w := postJSON(t, r, "/prepare/protein", `{"sequence":"MKVLAAGITG"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sequence", proteins.lastMethod)
}

func TestPrepareProteinRejectsAmbiguousSource(t *testing.T) {
	r := prepareRouter(t, &fakeProteins{}, &fakeLigands{})

	for _, body := range []string{
		`{}`,
		`{"accession":"P00533","name":"EGFR"}`,
	} {
		w := postJSON(t, r, "/prepare/protein", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestPrepareProteinMapsServiceError(t *testing.T) {
	proteins := &fakeProteins{err: apperrors.New(apperrors.ErrCodeSourceNotFound, "no such protein")}
	r := prepareRouter(t, proteins, &fakeLigands{})

	w := postJSON(t, r, "/prepare/protein", `{"name":"nonesuch"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.ErrCodeSourceNotFound.String(), resp.Code)
}

func TestPrepareProteinUpload(t *testing.T) {
	proteins := &fakeProteins{}
	r := prepareRouter(t, proteins, &fakeLigands{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("remove_water", "true"))
	part, err := mw.CreateFormFile("structure", "input.pdb")
	require.NoError(t, err)
	_, err = part.Write([]byte("ATOM\nEND\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/prepare/protein/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "file", proteins.lastMethod)
	assert.True(t, strings.HasSuffix(proteins.lastInput, "input.pdb"))
	assert.True(t, proteins.lastSel.RemoveWater)
}

func TestPrepareProteinUploadMissingFile(t *testing.T) {
	r := prepareRouter(t, &fakeProteins{}, &fakeLigands{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/prepare/protein/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrepareLigandBySMILES(t *testing.T) {
	ligands := &fakeLigands{}
	r := prepareRouter(t, &fakeProteins{}, ligands)

	w := postJSON(t, r, "/prepare/ligand", `{"smiles":"CCO"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "smiles", ligands.lastMethod)
	assert.Equal(t, "CCO", ligands.lastInput)
}

func TestPrepareLigandRejectsBothSources(t *testing.T) {
	r := prepareRouter(t, &fakeProteins{}, &fakeLigands{})

	w := postJSON(t, r, "/prepare/ligand", `{"smiles":"CCO","name":"ethanol"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrepareLigandByName(t *testing.T) {
	ligands := &fakeLigands{}
	r := prepareRouter(t, &fakeProteins{}, ligands)

	w := postJSON(t, r, "/prepare/ligand", `{"name":"aspirin"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "name", ligands.lastMethod)
	assert.Equal(t, "aspirin", ligands.lastInput)
}
