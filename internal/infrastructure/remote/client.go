// Package remote fetches protein structures and compound data from public
// sources: UniProt for sequences and accession search, AlphaFold for
// predicted structures, ESMFold for on-demand folding, and PubChem for
// compound SMILES.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// httpDoer is the subset of http.Client the fetchers need.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// client is the shared HTTP plumbing for all remote sources.
type client struct {
	http httpDoer
	log  logging.Logger
}

func newClient(timeout time.Duration, log logging.Logger) client {
	return client{
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// get performs a GET and returns the body.  404 maps to a not-found error so
// callers can try the next source in a ladder; other non-2xx statuses map to
// source-unavailable.
func (c client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "building request")
	}
	return c.do(req)
}

// post performs a POST with a plain-text body.
func (c client) post(ctx context.Context, url, body string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "building request")
	}
	req.Header.Set("Content-Type", "text/plain")
	return c.do(req)
}

func (c client) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSourceUnavailable,
			fmt.Sprintf("requesting %s", req.URL.Host))
	}
	defer resp.Body.Close()

	c.log.Debug("remote request",
		logging.String("url", req.URL.String()),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.Newf(apperrors.ErrCodeSourceNotFound, "%s returned 404", req.URL.Host)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, apperrors.Newf(apperrors.ErrCodeSourceUnavailable,
			"%s returned status %d", req.URL.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSourceUnavailable, "reading response body")
	}
	return body, nil
}
