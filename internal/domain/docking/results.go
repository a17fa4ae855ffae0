// Package docking post-processes docking engine output: it extracts binding
// affinities, splits multi-model PDBQT output into per-pose files, and
// rebuilds receptor-ligand complexes for visualization.
package docking

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// MaxModes caps the affinity list read from engine output and the number of
// modes requested from the engine.  Pose splitting is uncapped: every
// MODEL/ENDMDL pair becomes a pose file.
const MaxModes = 9

// PoseResult describes one docked pose after post-processing.
type PoseResult struct {
	PoseIndex   int     `json:"pose_index"`
	Affinity    float64 `json:"affinity"`
	ComplexPath string  `json:"complex_path,omitempty"`
}

// ParseAffinities extracts up to MaxModes binding affinities in kcal/mol
// from a docking output PDBQT file.  Two remark dialects are recognized:
//
//	REMARK minimizedAffinity -7.2      (smina, value is the last token)
//	REMARK VINA RESULT:   -7.2 ...     (vina, value is the fourth token)
//
// Any failure, including a missing file, yields an empty slice: affinity
// extraction is advisory and never blocks pose handling.
func ParseAffinities(path string) []float64 {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var affinities []float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(affinities) < MaxModes {
		line := scanner.Text()
		switch {
		case strings.Contains(line, "minimizedAffinity"):
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			if v, err := strconv.ParseFloat(fields[len(fields)-1], 64); err == nil {
				affinities = append(affinities, v)
			}
		case strings.Contains(line, "VINA RESULT:"):
			fields := strings.Fields(line)
			if len(fields) > 3 {
				if v, err := strconv.ParseFloat(fields[3], 64); err == nil {
					affinities = append(affinities, v)
				}
			}
		}
	}
	if scanner.Err() != nil {
		return nil
	}
	return affinities
}

// SplitPoses writes each MODEL/ENDMDL block of a multi-model PDBQT file as
// pose_1.pdbqt, pose_2.pdbqt, ... under outDir and returns the paths in
// model order.  A pose is the lines bounded by a MODEL/ENDMDL pair, both
// marker lines included.  A MODEL record seen before the previous block was
// terminated discards the buffered partial pose, and a buffer still open at
// end of input is never written.  A file without MODEL records yields zero
// poses.
func SplitPoses(path, outDir string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNoDockingResults, "opening docking output")
	}
	defer f.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "creating pose directory")
	}

	var (
		paths   []string
		buf     []string
		inModel bool
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MODEL"):
			buf = []string{line}
			inModel = true
		case strings.HasPrefix(line, "ENDMDL"):
			if !inModel {
				continue
			}
			buf = append(buf, line)
			posePath := filepath.Join(outDir, fmt.Sprintf("pose_%d.pdbqt", len(paths)+1))
			content := strings.Join(buf, "\n") + "\n"
			if err := os.WriteFile(posePath, []byte(content), 0o644); err != nil {
				return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "writing pose file")
			}
			paths = append(paths, posePath)
			buf, inModel = nil, false
		default:
			if inModel {
				buf = append(buf, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNoDockingResults, "reading docking output")
	}
	return paths, nil
}

// CombineReceptorLigand writes a visualization complex: all receptor lines
// except END, then a TER separator, then the ligand's atom records with
// model markers stripped, then a final END.
func CombineReceptorLigand(receptorPath, ligandPath, outPath string) error {
	receptor, err := os.ReadFile(receptorPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStructureNotFound, "reading receptor")
	}
	ligand, err := os.ReadFile(ligandPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStructureNotFound, "reading ligand pose")
	}

	out, err := os.Create(outPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeComplexAssembly, "creating complex file")
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	for _, line := range splitLines(string(receptor)) {
		if strings.HasPrefix(line, "END") {
			continue
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, "TER")
	for _, line := range splitLines(string(ligand)) {
		if strings.HasPrefix(line, "MODEL") || strings.HasPrefix(line, "END") {
			continue
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, "END")
	if err := w.Flush(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeComplexAssembly, "writing complex file")
	}
	return nil
}

func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
