// Package tools wraps the external binaries the preparation and docking
// pipeline shells out to: OpenBabel for format conversion and protonation,
// and smina for docking.  Every invocation runs under a context deadline and
// is gated on the output file being present and non-empty, because both
// tools can exit zero after writing nothing useful.
package tools

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// runner executes one binary with a per-call timeout.
type runner struct {
	bin     string
	timeout time.Duration
	log     logging.Logger
}

// run executes the binary with args.  Stderr is included in failure details
// since both tools report diagnostics there.
func (r *runner) run(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, r.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	elapsed := time.Since(start)
	if err == nil {
		r.log.Debug("external tool finished",
			logging.String("bin", r.bin),
			logging.Duration("elapsed", elapsed))
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.log.Warn("external tool timed out",
			logging.String("bin", r.bin),
			logging.Duration("timeout", r.timeout))
		return apperrors.Newf(apperrors.ErrCodeToolTimeout,
			"%s timed out after %s", r.bin, r.timeout)
	}

	r.log.Warn("external tool failed",
		logging.String("bin", r.bin),
		logging.Err(err),
		logging.String("stderr", stderr.String()))
	return apperrors.Wrap(err, apperrors.ErrCodeToolFailure, r.bin+" failed").
		WithDetail(stderr.String())
}

// requireOutput verifies that path exists and is non-empty after a tool run.
func requireOutput(bin, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return apperrors.Newf(apperrors.ErrCodeToolEmptyOutput,
			"%s produced no output file %s", bin, path)
	}
	if info.Size() == 0 {
		return apperrors.Newf(apperrors.ErrCodeToolEmptyOutput,
			"%s produced empty output file %s", bin, path)
	}
	return nil
}
