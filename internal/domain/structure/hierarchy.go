package structure

import (
	"fmt"
	"io"
)

// Structure is the hierarchical model a structured parser produces:
// model -> chain -> residue -> atom.  It exists so that chain-level and
// residue-level filtering can be applied at their natural granularity before
// re-serialization to PDB text.
type Structure struct {
	Models []*Model
}

// Model groups the chains of one coordinate model (one MODEL/ENDMDL pair, or
// the whole file when the input has no model records).
type Model struct {
	Serial int
	Chains []*Chain
}

// Chain is an ordered run of residues sharing a chain id.
type Chain struct {
	ID       string
	Residues []*Residue
}

// Residue is an ordered run of atoms sharing a residue name and sequence
// number within a chain.
type Residue struct {
	Name   string
	Seq    int
	Hetero bool
	Atoms  []*AtomRecord
}

// AtomCount returns the total number of atom records in the structure.
func (s *Structure) AtomCount() int {
	n := 0
	for _, m := range s.Models {
		for _, c := range m.Chains {
			for _, r := range c.Residues {
				n += len(r.Atoms)
			}
		}
	}
	return n
}

// formatAtomLine renders rec as a fixed-column PDB record.  It is used for
// atoms that carry no verbatim source line (e.g., parsed from mmCIF).
// Occupancy and temperature factor are emitted as neutral defaults.
func formatAtomLine(rec *AtomRecord) string {
	record := "ATOM"
	if rec.Hetero {
		record = "HETATM"
	}
	var x, y, z float64
	if rec.Coord != nil {
		x, y, z = rec.Coord.X, rec.Coord.Y, rec.Coord.Z
	}
	return fmt.Sprintf("%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f",
		record, rec.Serial, rec.Name, rec.ResName, rec.ChainID, rec.ResSeq,
		x, y, z, 1.00, 0.00)
}

// WriteFiltered serializes the subset of the structure accepted by sel as
// PDB text.  Chain filtering is applied at chain granularity and
// water/heteroatom filtering at residue granularity, consistent with the
// text-based fallback's per-line decisions.  It returns the number of atom
// records written.
//
// MODEL/ENDMDL markers are emitted only for multi-model structures; each
// chain that contributed atoms is closed with a TER record, and the output
// always ends with END.
func (s *Structure) WriteFiltered(w io.Writer, sel Selection) (int, error) {
	written := 0
	multiModel := len(s.Models) > 1

	for _, m := range s.Models {
		modelOpened := false
		for _, c := range m.Chains {
			if !sel.AcceptChain(c.ID) {
				continue
			}
			chainWrote := false
			for _, r := range c.Residues {
				if !sel.Accept(c.ID, r.Name, r.Hetero) {
					continue
				}
				for _, a := range r.Atoms {
					if multiModel && !modelOpened {
						if _, err := fmt.Fprintf(w, "MODEL %8d\n", m.Serial); err != nil {
							return written, err
						}
						modelOpened = true
					}
					line := a.Line
					if line == "" {
						line = formatAtomLine(a)
					}
					if _, err := fmt.Fprintln(w, line); err != nil {
						return written, err
					}
					written++
					chainWrote = true
				}
			}
			if chainWrote {
				if _, err := fmt.Fprintln(w, "TER"); err != nil {
					return written, err
				}
			}
		}
		if modelOpened {
			if _, err := fmt.Fprintln(w, "ENDMDL"); err != nil {
				return written, err
			}
		}
	}

	_, err := fmt.Fprintln(w, "END")
	return written, err
}
