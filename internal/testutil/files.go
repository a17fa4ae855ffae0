// Package testutil provides shared helpers for building molecular structure
// fixtures in unit tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

// ReadFile reads the file at path and fails the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// Lines splits content into lines, dropping a trailing empty line.
func Lines(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// AtomLine renders a well-formed fixed-column PDB ATOM/HETATM record.
func AtomLine(record string, serial int, name, resName, chain string, resSeq int, x, y, z float64) string {
	return fmt.Sprintf("%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f",
		record, serial, name, resName, chain, resSeq, x, y, z, 1.00, 0.00)
}

// PDBQTAtomLine renders a PDBQT record with a partial charge in columns
// [70,76) and a two-character atom type in [77,79).
func PDBQTAtomLine(record string, serial int, name, resName, chain string, resSeq int, x, y, z, charge float64, atomType string) string {
	return fmt.Sprintf("%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f    %6.3f %-2s",
		record, serial, name, resName, chain, resSeq, x, y, z, 1.00, 0.00, charge, atomType)
}

// ProteinPDB builds a small PDB file body: n backbone atoms per chain for
// each given chain id, plus a water and a ligand heteroatom on the first
// chain.
func ProteinPDB(atomsPerChain int, chains ...string) string {
	var b strings.Builder
	b.WriteString("HEADER    HYDROLASE\n")
	serial := 1
	for ci, chain := range chains {
		for i := 0; i < atomsPerChain; i++ {
			b.WriteString(AtomLine("ATOM", serial, "CA", "ALA", chain, i+1,
				float64(i), float64(ci), 0.0))
			b.WriteString("\n")
			serial++
		}
		if ci == 0 {
			b.WriteString(AtomLine("HETATM", serial, "O", "HOH", chain, 900, 1, 2, 3))
			b.WriteString("\n")
			serial++
			b.WriteString(AtomLine("HETATM", serial, "C1", "LIG", chain, 901, 4, 5, 6))
			b.WriteString("\n")
			serial++
		}
		b.WriteString("TER\n")
	}
	b.WriteString("END\n")
	return b.String()
}

// LigandPDBQT builds a PDBQT body with the given atom types, one atom per
// type, optionally preceded by a ROOT marker.
func LigandPDBQT(withRoot bool, atomTypes ...string) string {
	var b strings.Builder
	if withRoot {
		b.WriteString("ROOT\n")
	}
	for i, at := range atomTypes {
		b.WriteString(PDBQTAtomLine("HETATM", i+1, "C1", "LIG", "", 1,
			float64(i), 0, 0, -0.05, at))
		b.WriteString("\n")
	}
	if withRoot {
		b.WriteString("ENDROOT\n")
		b.WriteString("TORSDOF 0\n")
	}
	return b.String()
}
