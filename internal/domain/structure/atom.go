package structure

import (
	"strconv"
	"strings"
)

// Fixed PDB/PDBQT column offsets (0-indexed, half-open intervals).
const (
	colRecordEnd    = 6 // record keyword [0,6)
	colSerialStart  = 6 // atom serial [6,11)
	colSerialEnd    = 11
	colNameStart    = 12 // atom name [12,16)
	colNameEnd      = 16
	colResNameStart = 17 // residue name [17,20)
	colResNameEnd   = 20
	colChainStart   = 21 // chain id [21,22)
	colChainEnd     = 22
	colResSeqStart  = 22 // residue sequence number [22,26)
	colResSeqEnd    = 26
	colXStart       = 30 // coordinates [30,38) [38,46) [46,54)
	colXEnd         = 38
	colYEnd         = 46
	colZEnd         = 54
	colChargeStart  = 70 // PDBQT partial charge [70,76)
	colChargeEnd    = 76
	colTypeStart    = 77 // PDBQT 2-char atom type [77,79)
	colTypeEnd      = 79
)

// minAtomLineLen is the shortest ATOM/HETATM line from which chain and
// residue columns can safely be extracted.
const minAtomLineLen = 26

// standardResidues is the set of residue names classified as "not
// heteroatom" for filtering: the 20 canonical amino acids plus SEC, PYL and
// the ambiguity/unknown codes ASX, GLX, UNK.
var standardResidues = map[string]struct{}{
	"ALA": {}, "ARG": {}, "ASN": {}, "ASP": {}, "CYS": {},
	"GLN": {}, "GLU": {}, "GLY": {}, "HIS": {}, "ILE": {},
	"LEU": {}, "LYS": {}, "MET": {}, "PHE": {}, "PRO": {},
	"SER": {}, "THR": {}, "TRP": {}, "TYR": {}, "VAL": {},
	"SEC": {}, "PYL": {}, "ASX": {}, "GLX": {}, "UNK": {},
}

// waterResidues is the fixed set of residue names recognised as water.
var waterResidues = map[string]struct{}{
	"HOH": {}, "WAT": {}, "H2O": {}, "TIP": {}, "TIP3": {}, "SOL": {},
}

// IsStandardResidue reports whether name is a standard biopolymer residue.
func IsStandardResidue(name string) bool {
	_, ok := standardResidues[name]
	return ok
}

// IsWaterResidue reports whether name is a recognised water residue.
func IsWaterResidue(name string) bool {
	_, ok := waterResidues[name]
	return ok
}

// Coord is a 3D coordinate triple.
type Coord struct {
	X, Y, Z float64
}

// AtomRecord is one parsed ATOM or HETATM record.  Coordinate, charge, and
// atom-type fields are independently optional: a parse failure on any one of
// them never discards the atom.
type AtomRecord struct {
	Serial   int
	Name     string
	ResName  string
	ChainID  string
	ResSeq   int
	Coord    *Coord   // nil when the coordinate triple failed to parse
	Charge   *float64 // nil when absent or unparsable (PDBQT only)
	AtomType string   // empty when absent (PDBQT only)
	Hetero   bool     // derived from the HETATM record keyword

	// Line preserves the raw input line so cleaned output can re-emit
	// records verbatim.  Empty for atoms built from non-PDB sources.
	Line string
}

// IsWater reports whether the record's residue name is a water residue.
func (a *AtomRecord) IsWater() bool { return IsWaterResidue(a.ResName) }

// column returns the trimmed substring of line at [start,end), or "" when
// the line is too short.
func column(line string, start, end int) string {
	if len(line) < end {
		if len(line) <= start {
			return ""
		}
		end = len(line)
	}
	return strings.TrimSpace(line[start:end])
}

// IsAtomLine reports whether line is an ATOM or HETATM record.
func IsAtomLine(line string) bool {
	return strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM")
}

// ParseAtomLine parses a fixed-column ATOM/HETATM line into an AtomRecord.
// It returns ok=false when the line is not an atom record or is shorter than
// the 26 columns needed to locate the chain and residue fields.  Within a
// qualifying line every field is parsed tolerantly: a malformed serial,
// residue number, coordinate, or charge leaves the corresponding field at
// its zero/absent value and never rejects the record.
func ParseAtomLine(line string) (*AtomRecord, bool) {
	if !IsAtomLine(line) || len(line) < minAtomLineLen {
		return nil, false
	}

	rec := &AtomRecord{
		Name:    column(line, colNameStart, colNameEnd),
		ResName: column(line, colResNameStart, colResNameEnd),
		ChainID: column(line, colChainStart, colChainEnd),
		Hetero:  strings.HasPrefix(line, "HETATM"),
		Line:    line,
	}

	if v, err := strconv.Atoi(column(line, colSerialStart, colSerialEnd)); err == nil {
		rec.Serial = v
	}
	if v, err := strconv.Atoi(column(line, colResSeqStart, colResSeqEnd)); err == nil {
		rec.ResSeq = v
	}

	if len(line) >= colZEnd {
		x, errX := strconv.ParseFloat(column(line, colXStart, colXEnd), 64)
		y, errY := strconv.ParseFloat(column(line, colXEnd, colYEnd), 64)
		z, errZ := strconv.ParseFloat(column(line, colYEnd, colZEnd), 64)
		if errX == nil && errY == nil && errZ == nil {
			rec.Coord = &Coord{X: x, Y: y, Z: z}
		}
	}

	if s := column(line, colChargeStart, colChargeEnd); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			rec.Charge = &v
		}
	}
	rec.AtomType = column(line, colTypeStart, colTypeEnd)

	return rec, true
}
