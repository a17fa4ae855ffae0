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

// UniProt resolves protein names to accessions and fetches sequences.
type UniProt struct {
	c       client
	baseURL string
}

// NewUniProt builds a UniProt client against baseURL, normally
// https://rest.uniprot.org.
func NewUniProt(baseURL string, timeout time.Duration, log logging.Logger) *UniProt {
	return &UniProt{
		c:       newClient(timeout, log.Named("uniprot")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchFASTA retrieves the canonical sequence for an accession and returns
// the bare amino-acid sequence with the FASTA header stripped.
func (u *UniProt) FetchFASTA(ctx context.Context, accession string) (string, error) {
	body, err := u.c.get(ctx, fmt.Sprintf("%s/uniprotkb/%s.fasta", u.baseURL, url.PathEscape(accession)))
	if err != nil {
		return "", err
	}
	seq := parseFASTA(string(body))
	if seq == "" {
		return "", apperrors.Newf(apperrors.ErrCodeSourceParseError,
			"empty FASTA body for accession %s", accession)
	}
	return seq, nil
}

// searchResponse is the subset of the UniProt search payload we read.
type searchResponse struct {
	Results []struct {
		PrimaryAccession string `json:"primaryAccession"`
	} `json:"results"`
}

// SearchByName resolves a free-text protein name to an accession.  Queries
// run from most to least specific: reviewed (Swiss-Prot) entries are
// preferred over unreviewed ones and human entries (organism 9606) over
// other organisms.
func (u *UniProt) SearchByName(ctx context.Context, name string) (string, error) {
	queries := []string{
		fmt.Sprintf(`(protein_name:%s) AND (reviewed:true) AND (organism_id:9606)`, name),
		fmt.Sprintf(`(protein_name:%s) AND (reviewed:true)`, name),
		fmt.Sprintf(`(protein_name:%s) AND (organism_id:9606)`, name),
		fmt.Sprintf(`protein_name:%s`, name),
	}
	for _, q := range queries {
		acc, err := u.search(ctx, q)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return "", err
		}
		if acc != "" {
			return acc, nil
		}
	}
	return "", apperrors.Newf(apperrors.ErrCodeSourceNotFound,
		"no UniProt entry found for %q", name)
}

func (u *UniProt) search(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/uniprotkb/search?query=%s&format=json&size=5",
		u.baseURL, url.QueryEscape(query))
	body, err := u.c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeSourceParseError, "decoding search response")
	}
	if len(parsed.Results) == 0 {
		return "", nil
	}
	return parsed.Results[0].PrimaryAccession, nil
}

// parseFASTA strips the header line and joins the sequence lines.
func parseFASTA(body string) string {
	var b strings.Builder
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ">") {
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}
