package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// Compound is a PubChem lookup result.
type Compound struct {
	CID    int64  `json:"cid"`
	SMILES string `json:"smiles"`
}

// PubChem resolves compound names to canonical SMILES strings.
type PubChem struct {
	c       client
	baseURL string
}

// NewPubChem builds a PubChem client against baseURL, normally
// https://pubchem.ncbi.nlm.nih.gov/rest/pug.
func NewPubChem(baseURL string, timeout time.Duration, log logging.Logger) *PubChem {
	return &PubChem{
		c:       newClient(timeout, log.Named("pubchem")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type propertyTable struct {
	PropertyTable struct {
		Properties []struct {
			CID             int64  `json:"CID"`
			CanonicalSMILES string `json:"CanonicalSMILES"`
		} `json:"Properties"`
	} `json:"PropertyTable"`
}

// FetchByName looks up a compound by name and returns its CID and canonical
// SMILES.
func (p *PubChem) FetchByName(ctx context.Context, name string) (*Compound, error) {
	endpoint := fmt.Sprintf("%s/compound/name/%s/property/CanonicalSMILES/JSON",
		p.baseURL, url.PathEscape(name))
	body, err := p.c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var parsed propertyTable
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSourceParseError, "decoding property table")
	}
	props := parsed.PropertyTable.Properties
	if len(props) == 0 || props[0].CanonicalSMILES == "" {
		return nil, apperrors.Newf(apperrors.ErrCodeSourceNotFound,
			"no SMILES found for compound %q", name)
	}
	return &Compound{CID: props[0].CID, SMILES: props[0].CanonicalSMILES}, nil
}
