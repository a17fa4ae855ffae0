// Package structure provides the molecular structure file processing core:
// format detection, atom-record parsing, selection-based cleaning with a
// structured parser and a text-based fallback, and molecular weight
// estimation from PDBQT atom types.
//
// All operations in this package are synchronous, stateless, file-to-file
// transformations.  They take fully explicit caller-supplied paths, never
// read or write a path they were not given, and are safe to invoke
// concurrently as long as each invocation uses distinct output paths.
package structure

import (
	"bufio"
	"os"
	"strings"
)

// Format classifies a structural file's on-disk text format.
type Format string

const (
	FormatPDB     Format = "pdb"
	FormatMMCIF   Format = "mmcif"
	FormatUnknown Format = "unknown"
)

func (f Format) String() string { return string(f) }

// sniffLines is the number of leading lines DetectFormat inspects.
const sniffLines = 5

// DetectFormat inspects the first few lines of the file at path and
// classifies it as PDB, mmCIF, or unknown.
//
// The content of the leading lines, lower-cased and joined, is matched
// first: mmCIF wins when it starts with "data_" or contains "_entry.id" or
// "loop_"; PDB wins when it starts with "header", "atom", or "hetatm", or
// contains "remark".  Failing both, the same lines are re-scanned
// case-sensitively for a line starting with ATOM, HETATM, or HEADER.
//
// Detection is advisory: any I/O failure yields FormatUnknown rather than an
// error.
func DetectFormat(path string) Format {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for len(lines) < sniffLines && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if scanner.Err() != nil && len(lines) == 0 {
		return FormatUnknown
	}

	content := strings.ToLower(strings.Join(lines, "\n"))

	switch {
	case strings.HasPrefix(content, "data_"),
		strings.Contains(content, "_entry.id"),
		strings.Contains(content, "loop_"):
		return FormatMMCIF
	case strings.HasPrefix(content, "header"),
		strings.HasPrefix(content, "atom"),
		strings.HasPrefix(content, "hetatm"),
		strings.Contains(content, "remark"):
		return FormatPDB
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "ATOM") ||
			strings.HasPrefix(line, "HETATM") ||
			strings.HasPrefix(line, "HEADER") {
			return FormatPDB
		}
	}
	return FormatUnknown
}
