package structure

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqgene/dockprep/internal/testutil"
	"github.com/arqgene/dockprep/pkg/errors"
)

func TestFallbackCleaner_KeepChainAndStrip(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "in.pdb", testutil.ProteinPDB(3, "A", "B"))
	output := filepath.Join(dir, "out.pdb")

	count, err := (FallbackCleaner{}).Clean(input, output,
		Selection{KeepChain: "A", RemoveWater: true, RemoveHetero: true})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	content := testutil.ReadFile(t, output)
	assert.NotContains(t, content, " B ")
	assert.NotContains(t, content, "HOH")
	assert.NotContains(t, content, "LIG")
	assert.Contains(t, content, "HEADER")
}

func TestFallbackCleaner_NoOpSelectionPreservesAtoms(t *testing.T) {
	dir := t.TempDir()
	body := testutil.ProteinPDB(4, "A", "B")
	input := testutil.WriteFile(t, dir, "in.pdb", body)
	output := filepath.Join(dir, "out.pdb")

	count, err := (FallbackCleaner{}).Clean(input, output, KeepEverything)
	require.NoError(t, err)
	assert.Equal(t, 10, count) // 4 per chain + water + ligand on chain A

	var inAtoms, outAtoms []string
	for _, l := range testutil.Lines(body) {
		if IsAtomLine(l) {
			inAtoms = append(inAtoms, l)
		}
	}
	for _, l := range testutil.Lines(testutil.ReadFile(t, output)) {
		if IsAtomLine(l) {
			outAtoms = append(outAtoms, l)
		}
	}
	assert.Equal(t, inAtoms, outAtoms)
}

func TestFallbackCleaner_Idempotent(t *testing.T) {
	dir := t.TempDir()
	sel := Selection{RemoveWater: true}
	input := testutil.WriteFile(t, dir, "in.pdb", testutil.ProteinPDB(5, "A"))
	once := filepath.Join(dir, "once.pdb")
	twice := filepath.Join(dir, "twice.pdb")

	n1, err := (FallbackCleaner{}).Clean(input, once, sel)
	require.NoError(t, err)
	n2, err := (FallbackCleaner{}).Clean(once, twice, sel)
	require.NoError(t, err)
	assert.Equal(t, n1, n2)
}

func TestFallbackCleaner_DropsShortAtomLines(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "in.pdb",
		"ATOM  trunc\n"+testutil.AtomLine("ATOM", 1, "CA", "GLY", "A", 1, 0, 0, 0)+"\n")
	output := filepath.Join(dir, "out.pdb")

	count, err := (FallbackCleaner{}).Clean(input, output, KeepEverything)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFallbackCleaner_AppendsTerminalEND(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "in.pdb",
		testutil.AtomLine("ATOM", 1, "CA", "GLY", "A", 1, 0, 0, 0)+"\n")
	output := filepath.Join(dir, "out.pdb")

	_, err := (FallbackCleaner{}).Clean(input, output, KeepEverything)
	require.NoError(t, err)

	lines := testutil.Lines(testutil.ReadFile(t, output))
	assert.Equal(t, "END", lines[len(lines)-1])

	// Re-cleaning the output must not add a second END.
	second := filepath.Join(dir, "out2.pdb")
	_, err = (FallbackCleaner{}).Clean(output, second, KeepEverything)
	require.NoError(t, err)
	content := testutil.ReadFile(t, second)
	assert.Equal(t, 1, strings.Count(content, "END"))
}

func TestFallbackCleaner_NoAtomsRemaining(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "waters.pdb",
		testutil.AtomLine("HETATM", 1, "O", "HOH", "A", 1, 0, 0, 0)+"\n")
	output := filepath.Join(dir, "out.pdb")

	_, err := (FallbackCleaner{}).Clean(input, output, Selection{RemoveWater: true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoAtoms))
}

func TestStructuredCleaner_PDB(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "in.pdb", testutil.ProteinPDB(3, "A", "B"))
	output := filepath.Join(dir, "out.pdb")

	err := NewStructuredCleaner().Clean(input, output,
		Selection{KeepChain: "A", RemoveWater: true, RemoveHetero: true})
	require.NoError(t, err)

	atoms := 0
	for _, l := range testutil.Lines(testutil.ReadFile(t, output)) {
		if IsAtomLine(l) {
			atoms++
			assert.Equal(t, "A", column(l, colChainStart, colChainEnd))
		}
	}
	assert.Equal(t, 3, atoms)
}

func TestStructuredCleaner_UnknownFormatIsParseFailure(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "in.xyz", "nothing structural\nat all\n")
	err := NewStructuredCleaner().Clean(input, filepath.Join(dir, "out.pdb"), KeepEverything)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeParseFailure))
}

func TestStructuredAndFallbackAgree(t *testing.T) {
	// Both strategies must accept and reject the same residues on the same
	// well-formed input.
	dir := t.TempDir()
	body := testutil.ProteinPDB(4, "A", "B")
	input := testutil.WriteFile(t, dir, "in.pdb", body)

	selections := []Selection{
		KeepEverything,
		{KeepChain: "A"},
		{RemoveWater: true},
		{RemoveHetero: true},
		{KeepChain: "B", RemoveWater: true, RemoveHetero: true},
	}

	for _, sel := range selections {
		structuredOut := filepath.Join(dir, "structured.pdb")
		fallbackOut := filepath.Join(dir, "fallback.pdb")

		err := NewStructuredCleaner().Clean(input, structuredOut, sel)
		require.NoError(t, err)
		_, fbErr := (FallbackCleaner{}).Clean(input, fallbackOut, sel)

		var structuredAtoms []string
		for _, l := range testutil.Lines(testutil.ReadFile(t, structuredOut)) {
			if IsAtomLine(l) {
				structuredAtoms = append(structuredAtoms, l)
			}
		}
		var fallbackAtoms []string
		if fbErr == nil {
			for _, l := range testutil.Lines(testutil.ReadFile(t, fallbackOut)) {
				if IsAtomLine(l) {
					fallbackAtoms = append(fallbackAtoms, l)
				}
			}
		}
		assert.Equal(t, structuredAtoms, fallbackAtoms, "selection %+v", sel)
	}
}

func TestCleanFile_FallsBackOnUnparsableInput(t *testing.T) {
	// REMARK makes the sniffer classify the file as PDB, but every atom
	// line is malformed (too short for the hierarchy), so the structured
	// parser rejects it while the fallback path still fails with NoAtoms.
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "broken.pdb", "REMARK broken\nATOM  stub\n")
	err := CleanFile(input, filepath.Join(dir, "out.pdb"), KeepEverything)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoAtoms))
	assert.Contains(t, err.Error(), "structured")
}

func TestCleanFile_StructuredPathSucceeds(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "in.pdb", testutil.ProteinPDB(3, "A"))
	output := filepath.Join(dir, "out.pdb")
	require.NoError(t, CleanFile(input, output, Selection{RemoveWater: true, RemoveHetero: true}))
	assert.FileExists(t, output)
}
