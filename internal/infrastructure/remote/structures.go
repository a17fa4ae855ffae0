package remote

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// ESMFold sequence-length limits.  Shorter sequences carry no fold signal
// and longer ones are rejected by the Atlas API.
const (
	MinFoldResidues = 10
	MaxFoldResidues = 400
)

// AlphaFold downloads precomputed model structures from the AlphaFold DB.
type AlphaFold struct {
	c       client
	baseURL string
}

// NewAlphaFold builds an AlphaFold client against baseURL, normally
// https://alphafold.ebi.ac.uk/files.
func NewAlphaFold(baseURL string, timeout time.Duration, log logging.Logger) *AlphaFold {
	return &AlphaFold{
		c:       newClient(timeout, log.Named("alphafold")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchStructure downloads the v4 model PDB for a UniProt accession to
// outPath.
func (a *AlphaFold) FetchStructure(ctx context.Context, accession, outPath string) error {
	url := fmt.Sprintf("%s/AF-%s-F1-model_v4.pdb", a.baseURL, strings.ToUpper(accession))
	body, err := a.c.get(ctx, url)
	if err != nil {
		return err
	}
	return writeStructure(body, outPath)
}

// ESMFold folds a sequence on demand through the ESM Atlas API.
type ESMFold struct {
	c   client
	url string
}

// NewESMFold builds an ESMFold client against the fold endpoint URL.
func NewESMFold(url string, timeout time.Duration, log logging.Logger) *ESMFold {
	return &ESMFold{
		c:   newClient(timeout, log.Named("esmfold")),
		url: url,
	}
}

// PredictStructure folds sequence and writes the predicted PDB to outPath.
// The sequence must fall inside the Atlas length limits.
func (e *ESMFold) PredictStructure(ctx context.Context, sequence, outPath string) error {
	sequence = strings.ToUpper(strings.TrimSpace(sequence))
	if len(sequence) < MinFoldResidues {
		return apperrors.Newf(apperrors.ErrCodeSequenceTooShort,
			"sequence has %d residues, minimum is %d", len(sequence), MinFoldResidues)
	}
	if len(sequence) > MaxFoldResidues {
		return apperrors.Newf(apperrors.ErrCodeSequenceTooLong,
			"sequence has %d residues, maximum is %d", len(sequence), MaxFoldResidues)
	}

	body, err := e.c.post(ctx, e.url, sequence)
	if err != nil {
		return err
	}
	return writeStructure(body, outPath)
}

func writeStructure(body []byte, outPath string) error {
	if len(body) == 0 {
		return apperrors.New(apperrors.ErrCodeSourceParseError, "received empty structure body")
	}
	if err := os.WriteFile(outPath, body, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "writing structure file")
	}
	return nil
}
