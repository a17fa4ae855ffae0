// Package preparation orchestrates structure preparation: fetching or
// accepting a raw structure, cleaning it, converting it to PDBQT, and
// verifying the result.  It sits between the HTTP/CLI handlers and the
// domain and infrastructure packages.
package preparation

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/arqgene/dockprep/internal/domain/structure"
	"github.com/arqgene/dockprep/internal/domain/verify"
	"github.com/arqgene/dockprep/internal/infrastructure/remote"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// Converter is the OpenBabel surface the services need.
type Converter interface {
	ConvertReceptorToPDBQT(ctx context.Context, inPath, outPath string) error
	ConvertLigandToPDBQT(ctx context.Context, inPath, outPath string, ph float64) error
	SMILESTo3DSDF(ctx context.Context, smiles, outPath string) error
	AddHydrogens(ctx context.Context, inPath, outPath string, ph float64) error
	ConvertToPDB(ctx context.Context, inPath, outPath string) error
}

// SequenceSource resolves protein names and fetches sequences (UniProt).
type SequenceSource interface {
	SearchByName(ctx context.Context, name string) (string, error)
	FetchFASTA(ctx context.Context, accession string) (string, error)
}

// StructureFetcher downloads a precomputed structure (AlphaFold).
type StructureFetcher interface {
	FetchStructure(ctx context.Context, accession, outPath string) error
}

// Folder predicts a structure from sequence (ESMFold).
type Folder interface {
	PredictStructure(ctx context.Context, sequence, outPath string) error
}

// CompoundSource resolves compound names to SMILES (PubChem).
type CompoundSource interface {
	FetchByName(ctx context.Context, name string) (*remote.Compound, error)
}

// Cache memoises remote lookups.  It matches the redis cache surface but is
// an interface here so the services can run without Redis in tests.
type Cache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration,
		loader func(ctx context.Context) (interface{}, error)) error
}

// nopCache is used when no Redis is configured; every lookup goes straight
// to the loader.
type nopCache struct{}

func (nopCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration,
	loader func(ctx context.Context) (interface{}, error)) error {
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	if s, ok := dest.(*string); ok {
		if vs, ok := v.(string); ok {
			*s = vs
			return nil
		}
	}
	if c, ok := dest.(*remote.Compound); ok {
		if vc, ok := v.(*remote.Compound); ok {
			*c = *vc
			return nil
		}
	}
	return apperrors.New(apperrors.ErrCodeSerialization, "unsupported cache destination type")
}

// NopCache returns a pass-through Cache.
func NopCache() Cache { return nopCache{} }

// jobDirs creates a fresh working directory for one job under root.
func jobDirs(root string) (jobID uuid.UUID, dir string, err error) {
	jobID = uuid.New()
	dir = filepath.Join(root, jobID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return uuid.Nil, "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "creating job directory")
	}
	return jobID, dir, nil
}

// copyFile duplicates src at dst, creating or truncating dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStructureNotFound, "opening upload")
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "creating ligand copy")
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "copying ligand")
	}
	return out.Sync()
}

// ProteinResult is the outcome of a protein preparation.
type ProteinResult struct {
	JobID      uuid.UUID                 `json:"job_id"`
	Source     string                    `json:"source"`
	Format     structure.Format          `json:"input_format"`
	CleanedPDB string                    `json:"cleaned_pdb"`
	PDBQTPath  string                    `json:"pdbqt_path"`
	Report     *verify.PreparationReport `json:"report"`
}

// LigandResult is the outcome of a ligand preparation.
type LigandResult struct {
	JobID     uuid.UUID                 `json:"job_id"`
	Source    string                    `json:"source"`
	SMILES    string                    `json:"smiles,omitempty"`
	CID       int64                     `json:"cid,omitempty"`
	PDBQTPath string                    `json:"pdbqt_path"`
	PDBPath   string                    `json:"pdb_path,omitempty"`
	WeightDa  float64                   `json:"estimated_weight_da,omitempty"`
	Report    *verify.PreparationReport `json:"report"`
}
