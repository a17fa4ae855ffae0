package structure

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/arqgene/dockprep/pkg/errors"
)

// passThroughPrefixes are the structural markers the text-based cleaner
// copies through unmodified.
var passThroughPrefixes = []string{
	"TER", "END", "MODEL", "ENDMDL", "HEADER", "TITLE", "COMPND",
}

// StructuredCleaner cleans a structural file through a format-aware parser:
// the input is parsed into the model->chain->residue->atom hierarchy, the
// selection is applied at chain and residue granularity, and the surviving
// subset is re-serialized as PDB text.
type StructuredCleaner struct {
	parsers map[Format]Parser
}

// NewStructuredCleaner returns a cleaner with parsers registered for the PDB
// and mmCIF formats.
func NewStructuredCleaner() *StructuredCleaner {
	return &StructuredCleaner{
		parsers: map[Format]Parser{
			FormatPDB:   PDBParser{},
			FormatMMCIF: MMCIFParser{},
		},
	}
}

// Clean parses inputPath, applies sel, and writes the filtered structure to
// outputPath.
//
// It fails with ErrCodeParseFailure when the input's format has no
// registered parser or the parser rejects the file; callers treat that code
// as the signal to retry with the text-based fallback.  It fails with
// ErrCodeEmptyOutput when the output file is missing or zero bytes after
// writing.
func (c *StructuredCleaner) Clean(inputPath, outputPath string, sel Selection) error {
	format := DetectFormat(inputPath)
	parser, ok := c.parsers[format]
	if !ok {
		return errors.Newf(errors.ErrCodeParseFailure,
			"no structured parser for format %q", format).
			WithDetail("path=" + inputPath)
	}

	st, err := parser.Parse(inputPath)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeParseFailure) {
			return err
		}
		return errors.Wrap(err, errors.ErrCodeParseFailure, "structured parsing failed")
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot create cleaned output file").
			WithDetail("path=" + outputPath)
	}
	w := bufio.NewWriter(out)
	if _, err := st.WriteFiltered(w, sel); err != nil {
		out.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "writing cleaned structure failed")
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "writing cleaned structure failed")
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "closing cleaned output failed")
	}

	if info, err := os.Stat(outputPath); err != nil || info.Size() == 0 {
		return errors.New(errors.ErrCodeEmptyOutput, "cleaned structure file is empty or not created").
			WithDetail("path=" + outputPath)
	}
	return nil
}

// FallbackCleaner recovers from inputs the structured parser cannot handle
// (malformed records, unsupported variants) by applying the same selection
// directly on fixed-column substrings, line by line.
type FallbackCleaner struct{}

// Clean scans inputPath line by line and writes accepted lines verbatim to
// outputPath, returning the number of atom records kept.
//
// ATOM/HETATM lines shorter than 26 characters are dropped because the chain
// and residue columns cannot be extracted safely.  Structural marker lines
// (TER, END, MODEL, ENDMDL, HEADER, TITLE, COMPND) pass through unmodified;
// every other line is dropped.  A terminal END line is appended when no
// retained line already starts with END.  Fails with ErrCodeNoAtoms when
// zero atom records survive.
func (FallbackCleaner) Clean(inputPath, outputPath string, sel Selection) (int, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStructureNotFound, "cannot open structure file").
			WithDetail("path=" + inputPath)
	}
	defer in.Close()

	var (
		kept      []string
		atomCount int
		sawEnd    bool
	)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case IsAtomLine(line):
			if len(line) < minAtomLineLen {
				continue
			}
			chainID := column(line, colChainStart, colChainEnd)
			resName := column(line, colResNameStart, colResNameEnd)
			if !sel.Accept(chainID, resName, strings.HasPrefix(line, "HETATM")) {
				continue
			}
			kept = append(kept, line)
			atomCount++
		case hasAnyPrefix(line, passThroughPrefixes):
			kept = append(kept, line)
			if strings.HasPrefix(line, "END") {
				sawEnd = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternal, "reading structure file failed")
	}

	if atomCount == 0 {
		return 0, errors.New(errors.ErrCodeNoAtoms, "no valid atoms found after cleaning").
			WithDetail("path=" + inputPath)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternal, "cannot create cleaned output file").
			WithDetail("path=" + outputPath)
	}
	w := bufio.NewWriter(out)
	for _, line := range kept {
		if _, err := fmt.Fprintln(w, line); err != nil {
			out.Close()
			return 0, errors.Wrap(err, errors.ErrCodeInternal, "writing cleaned structure failed")
		}
	}
	if !sawEnd {
		if _, err := fmt.Fprintln(w, "END"); err != nil {
			out.Close()
			return 0, errors.Wrap(err, errors.ErrCodeInternal, "writing cleaned structure failed")
		}
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return 0, errors.Wrap(err, errors.ErrCodeInternal, "writing cleaned structure failed")
	}
	if err := out.Close(); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternal, "closing cleaned output failed")
	}
	return atomCount, nil
}

// hasAnyPrefix reports whether line starts with one of the given prefixes.
func hasAnyPrefix(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// CleanFile cleans inputPath into outputPath using the structured cleaner,
// falling back to the text-based cleaner when structured parsing rejects the
// input.  When both strategies fail, the returned error reports the fallback
// failure with the structured cleaner's original error attached so callers
// can diagnose both attempts.
func CleanFile(inputPath, outputPath string, sel Selection) error {
	structuredErr := NewStructuredCleaner().Clean(inputPath, outputPath, sel)
	if structuredErr == nil {
		return nil
	}
	if !errors.IsCode(structuredErr, errors.ErrCodeParseFailure) {
		return structuredErr
	}

	if _, fallbackErr := (FallbackCleaner{}).Clean(inputPath, outputPath, sel); fallbackErr != nil {
		return errors.Wrap(fallbackErr, errors.GetCode(fallbackErr),
			"structured parsing failed; text-based fallback also failed").
			WithDetail("structured: " + structuredErr.Error())
	}
	return nil
}
