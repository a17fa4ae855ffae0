// Package verify computes statistics and warnings over PDB and PDBQT files.
// Verification is independent of the cleaning path: it scans raw atom
// records, tolerates malformed per-atom fields, and downgrades every
// atom-level anomaly to a warning.  Only a missing file, an empty file, or a
// file with zero atom records fails a check outright.
package verify

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Mode selects the expectations applied to a PDBQT file.
type Mode int

const (
	// ModeProtein applies receptor-sized atom-count thresholds.
	ModeProtein Mode = iota
	// ModeLigand checks for the ROOT rotatable-bond marker and
	// ligand-sized atom counts.
	ModeLigand
)

// Atom-count thresholds for derived warnings.
const (
	minProteinAtoms  = 100
	maxProteinAtoms  = 50000
	smallLigandAtoms = 5
	maxLigandAtoms   = 150
)

// Stats is the named-statistics block of a verification report.  PDBQT-only
// fields stay at their zero values for PDB-stage reports.
type Stats struct {
	FileSizeKB        float64  `json:"file_size_kb"`
	AtomCount         int      `json:"atom_count"`
	ChainCount        int      `json:"chain_count"`
	Chains            []string `json:"chains,omitempty"`
	ResidueCount      int      `json:"residue_count"`
	HasCoordinates    bool     `json:"has_coordinates"`
	HasPartialCharges bool     `json:"has_partial_charges,omitempty"`
	HasAtomTypes      bool     `json:"has_atom_types,omitempty"`
	HasRoot           bool     `json:"has_root,omitempty"`

	// MalformedFields counts coordinate or charge substrings that were
	// present but failed to parse.  Such fields never abort an atom or a
	// file; the count makes the tolerated failures observable.
	MalformedFields int `json:"malformed_fields,omitempty"`
}

// Report is the result of one verification call.  It is created fresh per
// call and immutable once returned.
type Report struct {
	Valid    bool     `json:"valid"`
	Error    string   `json:"error,omitempty"`
	Stats    Stats    `json:"statistics"`
	Warnings []string `json:"warnings,omitempty"`
}

func invalidReport(msg string, sizeKB float64) *Report {
	return &Report{Valid: false, Error: msg, Stats: Stats{FileSizeKB: sizeKB}}
}

// fileScan is the shared per-line accumulator for both verifiers.
type fileScan struct {
	atomCount       int
	hasCoordinates  bool
	hasCharges      bool
	hasAtomTypes    bool
	rootFound       bool
	malformedFields int
	chains          map[string]struct{}
	residues        map[string]struct{}
}

func (s *fileScan) consume(line string, pdbqt bool) {
	if strings.HasPrefix(line, "ROOT") {
		s.rootFound = true
	}
	if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
		return
	}
	s.atomCount++

	if len(line) >= 54 {
		_, errX := strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
		_, errY := strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
		_, errZ := strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
		if errX == nil && errY == nil && errZ == nil {
			s.hasCoordinates = true
		} else {
			s.malformedFields++
		}
	}

	if len(line) >= 22 {
		if chain := strings.TrimSpace(line[21:22]); chain != "" {
			s.chains[chain] = struct{}{}
		}
	}
	if len(line) >= 26 {
		resName := strings.TrimSpace(line[17:20])
		resNum := strings.TrimSpace(line[22:26])
		if resName != "" && resNum != "" {
			s.residues[resName+":"+resNum] = struct{}{}
		}
	}

	if !pdbqt {
		return
	}
	if len(line) >= 76 {
		if charge := strings.TrimSpace(line[70:76]); charge != "" {
			if _, err := strconv.ParseFloat(charge, 64); err == nil {
				s.hasCharges = true
			} else {
				s.malformedFields++
			}
		}
	}
	if len(line) >= 79 {
		if strings.TrimSpace(line[77:79]) != "" {
			s.hasAtomTypes = true
		}
	}
}

// scanFile runs the accumulator over every line of the file at path.  The
// returned size is the file length in KB rounded to two decimals.
func scanFile(path string, pdbqt bool) (*fileScan, float64, *Report) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, invalidReport("File not found", 0)
	}
	sizeKB := math.Round(float64(info.Size())/1024*100) / 100
	if info.Size() == 0 {
		return nil, 0, invalidReport("File is empty", 0)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, invalidReport(fmt.Sprintf("Error reading file: %v", err), sizeKB)
	}
	defer f.Close()

	scan := &fileScan{
		chains:   make(map[string]struct{}),
		residues: make(map[string]struct{}),
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		scan.consume(scanner.Text(), pdbqt)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, invalidReport(fmt.Sprintf("Error reading file: %v", err), sizeKB)
	}
	return scan, sizeKB, nil
}

func sortedChains(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// PDB verifies the PDB file at path and extracts structure statistics.
func PDB(path string) *Report {
	scan, sizeKB, bad := scanFile(path, false)
	if bad != nil {
		return bad
	}
	if scan.atomCount == 0 {
		return invalidReport("No atoms found in PDB file", sizeKB)
	}

	r := &Report{
		Valid: true,
		Stats: Stats{
			FileSizeKB:      sizeKB,
			AtomCount:       scan.atomCount,
			ChainCount:      len(scan.chains),
			Chains:          sortedChains(scan.chains),
			ResidueCount:    len(scan.residues),
			HasCoordinates:  scan.hasCoordinates,
			MalformedFields: scan.malformedFields,
		},
	}

	if !scan.hasCoordinates {
		r.Warnings = append(r.Warnings, "No valid 3D coordinates found")
	}
	if scan.atomCount < minProteinAtoms {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("Very few atoms (%d) - structure may be incomplete", scan.atomCount))
	}
	if len(scan.chains) == 0 {
		r.Warnings = append(r.Warnings, "No chain identifiers found")
	}
	if scan.malformedFields > 0 {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("%d malformed coordinate/charge fields tolerated", scan.malformedFields))
	}
	return r
}

// PDBQT verifies the PDBQT file at path with protein- or ligand-mode
// expectations.
func PDBQT(path string, mode Mode) *Report {
	scan, sizeKB, bad := scanFile(path, true)
	if bad != nil {
		return bad
	}
	if scan.atomCount == 0 {
		return invalidReport("No atoms found in PDBQT file", sizeKB)
	}

	r := &Report{
		Valid: true,
		Stats: Stats{
			FileSizeKB:        sizeKB,
			AtomCount:         scan.atomCount,
			ChainCount:        len(scan.chains),
			Chains:            sortedChains(scan.chains),
			ResidueCount:      len(scan.residues),
			HasCoordinates:    scan.hasCoordinates,
			HasPartialCharges: scan.hasCharges,
			HasAtomTypes:      scan.hasAtomTypes,
			HasRoot:           scan.rootFound,
			MalformedFields:   scan.malformedFields,
		},
	}

	if !scan.hasCoordinates {
		r.Warnings = append(r.Warnings, "No valid 3D coordinates found")
	}
	if !scan.hasCharges {
		r.Warnings = append(r.Warnings, "No partial charges found - may affect docking accuracy")
	}
	if !scan.hasAtomTypes {
		r.Warnings = append(r.Warnings, "No atom types found in PDBQT format")
	}

	switch mode {
	case ModeProtein:
		if scan.atomCount < minProteinAtoms {
			r.Warnings = append(r.Warnings,
				fmt.Sprintf("Very few atoms (%d) for a protein", scan.atomCount))
		}
		if scan.atomCount > maxProteinAtoms {
			r.Warnings = append(r.Warnings,
				fmt.Sprintf("Very large protein (%d atoms) - docking may be slow", scan.atomCount))
		}
	case ModeLigand:
		if !scan.rootFound {
			r.Warnings = append(r.Warnings, "No ROOT found - ligand may not be properly formatted")
		}
		if scan.atomCount <= smallLigandAtoms {
			r.Warnings = append(r.Warnings,
				fmt.Sprintf("Very small ligand (%d atoms)", scan.atomCount))
		}
		if scan.atomCount > maxLigandAtoms {
			r.Warnings = append(r.Warnings,
				fmt.Sprintf("Very large ligand (%d atoms) - consider fragmentation", scan.atomCount))
		}
	}

	if scan.malformedFields > 0 {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("%d malformed coordinate/charge fields tolerated", scan.malformedFields))
	}
	return r
}
