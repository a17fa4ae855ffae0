package structure

import (
	"bufio"
	"os"
)

// GeometricCenter averages the coordinates of every parseable ATOM/HETATM
// record in the file at path.  The docking search box is centered here when
// no binding site is given.
//
// ok is false when no atom with valid coordinates was found.
func GeometricCenter(path string) (center Coord, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return Coord{}, false
	}
	defer f.Close()

	var sum Coord
	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		rec, parsed := ParseAtomLine(scanner.Text())
		if !parsed || rec.Coord == nil {
			continue
		}
		sum.X += rec.Coord.X
		sum.Y += rec.Coord.Y
		sum.Z += rec.Coord.Z
		count++
	}
	if scanner.Err() != nil || count == 0 {
		return Coord{}, false
	}
	return Coord{
		X: sum.X / float64(count),
		Y: sum.Y / float64(count),
		Z: sum.Z / float64(count),
	}, true
}
