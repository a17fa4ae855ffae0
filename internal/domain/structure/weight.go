package structure

import (
	"bufio"
	"math"
	"os"
)

// atomicWeights maps element symbols found in PDBQT atom types to standard
// atomic weights in Daltons.
var atomicWeights = map[string]float64{
	"H":  1.008,
	"C":  12.011,
	"N":  14.007,
	"O":  15.999,
	"F":  18.998,
	"P":  30.974,
	"S":  32.065,
	"Cl": 35.453,
	"Br": 79.904,
	"I":  126.904,
}

// EstimateWeight sums per-atom element weights over the ATOM/HETATM records
// of the PDBQT file at path, reading the element symbol from the first
// character of the atom-type column.  The result is rounded to two decimals.
//
// ok is false when no atom contributed to the sum (unreadable file, no atom
// types, or only unrecognised elements); an absent result is deliberately
// distinct from a weight of zero.
func EstimateWeight(path string) (weight float64, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	total := 0.0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !IsAtomLine(line) || len(line) < colTypeEnd {
			continue
		}
		atomType := column(line, colTypeStart, colTypeEnd)
		if atomType == "" {
			continue
		}
		element := string(atomType[0])
		if 'a' <= atomType[0] && atomType[0] <= 'z' {
			element = string(atomType[0] - 'a' + 'A')
		}
		if w, known := atomicWeights[element]; known {
			total += w
		}
	}
	if scanner.Err() != nil || total == 0 {
		return 0, false
	}
	return math.Round(total*100) / 100, true
}
