package structure

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqgene/dockprep/internal/testutil"
)

func TestGeometricCenter(t *testing.T) {
	content := testutil.AtomLine("ATOM", 1, "N", "ALA", "A", 1, 0, 0, 0) + "\n" +
		testutil.AtomLine("ATOM", 2, "CA", "ALA", "A", 1, 2, 4, 6) + "\nEND\n"
	path := testutil.WriteFile(t, t.TempDir(), "c.pdb", content)

	c, ok := GeometricCenter(path)
	require.True(t, ok)
	assert.InDelta(t, 1.0, c.X, 1e-9)
	assert.InDelta(t, 2.0, c.Y, 1e-9)
	assert.InDelta(t, 3.0, c.Z, 1e-9)
}

func TestGeometricCenterNoAtoms(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "c.pdb", "HEADER    X\nEND\n")
	_, ok := GeometricCenter(path)
	assert.False(t, ok)

	_, ok = GeometricCenter(filepath.Join(t.TempDir(), "missing.pdb"))
	assert.False(t, ok)
}
