/*
 * gro/gro_test.go, part of goagg.
 *
 * Copyright 2026 The goagg Authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package gro

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agg "github.com/rmera/goagg"
	v3 "github.com/rmera/goagg/v3"
)

type groAtom struct {
	resid         int
	resname, name string
	x, y, z       float64
}

var groAtoms = []groAtom{
	{1, "SUR", "C1", 0.1, 0.2, 0.3},
	{1, "SUR", "C2", 0.15, 0.2, 0.3},
	{2, "SOL", "OW", 1.0, 1.0, 1.0},
}

// writeGro writes a .gro file with one frame per title, with the atoms
// displaced by 0.1 nm in x per frame, and returns its name.
func writeGro(Te *testing.T, titles []string, coordFmt string) string {
	var b strings.Builder
	for f, t := range titles {
		fmt.Fprintf(&b, "%s\n%5d\n", t, len(groAtoms))
		for i, a := range groAtoms {
			fmt.Fprintf(&b, "%5d%-5s%5s%5d"+coordFmt+coordFmt+coordFmt+"\n", a.resid, a.resname, a.name, i+1, a.x+0.1*float64(f), a.y, a.z)
		}
		fmt.Fprintf(&b, "%10.5f%10.5f%10.5f\n", 2.0+0.5*float64(f), 2.0, 2.0)
	}
	name := filepath.Join(Te.TempDir(), "test.gro")
	require.NoError(Te, os.WriteFile(name, []byte(b.String()), 0o644))
	return name
}

func TestReadTopology(Te *testing.T) {
	name := writeGro(Te, []string{"Test system t=   0.00000 step= 0"}, "%8.3f")
	top, coords, box, err := ReadTopology(name)
	require.NoError(Te, err)
	require.Equal(Te, 3, top.Len())
	assert.Equal(Te, "C2", top.Atom(1).Name)
	assert.Equal(Te, "SOL", top.Atom(2).MolName)
	assert.Equal(Te, 2, top.Atom(2).MolID)
	assert.Equal(Te, 3, top.Atom(2).ID)
	assert.Equal(Te, 2, top.Atom(2).Index())
	assert.Equal(Te, "O", top.Atom(2).Symbol)
	assert.Equal(Te, []int{0, 0, 1}, []int{top.Atom(0).Molecule, top.Atom(1).Molecule, top.Atom(2).Molecule})
	assert.Equal(Te, []int{0, 0, 1}, []int{top.Atom(0).Residue, top.Atom(1).Residue, top.Atom(2).Residue})
	assert.InDelta(Te, 1.5, coords.At(1, 0), 1e-9)
	assert.InDelta(Te, 10.0, coords.At(2, 2), 1e-9)
	assert.InDeltaSlice(Te, []float64{20, 20, 20}, box, 1e-9)
	sel, err := top.Select("resname SUR")
	require.NoError(Te, err)
	assert.Equal(Te, []int{0, 1}, sel)
}

func TestTrajectory(Te *testing.T) {
	for _, coordFmt := range []string{"%8.3f", "%10.5f"} {
		name := writeGro(Te, []string{"Test system t=   0.00000 step= 0", "Test system t=  10.00000 step= 5000", "Test system t=  20.00000"}, coordFmt)
		G, err := New(name)
		require.NoError(Te, err)
		assert.Equal(Te, 3, G.Len())
		c := v3.Zeros(3)
		box := make([]float64, 3)
		for f := 0; f < 3; f++ {
			require.True(Te, G.Readable())
			if f == 1 {
				require.NoError(Te, G.Next(nil))
			} else {
				require.NoError(Te, G.Next(c, box))
				assert.InDelta(Te, 1.0+float64(f), c.At(0, 0), 1e-9, coordFmt)
				assert.InDelta(Te, 20.0+5*float64(f), box[0], 1e-9)
			}
			assert.InDelta(Te, 10.0*float64(f), G.Time(), 1e-9)
		}
		assert.False(Te, G.Readable())
		err = G.Next(c)
		require.Error(Te, err)
		_, ok := err.(agg.LastFrameError)
		assert.True(Te, ok)
		G.Close()
	}
}

func TestNoTime(Te *testing.T) {
	name := writeGro(Te, []string{"frame a", "frame b"}, "%8.3f")
	G, err := New(name)
	require.NoError(Te, err)
	defer G.Close()
	require.NoError(Te, G.Next(nil))
	require.NoError(Te, G.Next(nil))
	assert.Equal(Te, 1.0, G.Time())
}

func TestGroErrors(Te *testing.T) {
	dir := Te.TempDir()
	_, err := New(filepath.Join(dir, "nothere.gro"))
	assert.Error(Te, err)

	empty := filepath.Join(dir, "empty.gro")
	require.NoError(Te, os.WriteFile(empty, nil, 0o644))
	_, err = New(empty)
	assert.Error(Te, err)

	//truncated second frame
	name := writeGro(Te, []string{"a t= 0", "b t= 1"}, "%8.3f")
	data, err := os.ReadFile(name)
	require.NoError(Te, err)
	lines := strings.Split(string(data), "\n")
	require.NoError(Te, os.WriteFile(name, []byte(strings.Join(lines[:len(lines)-3], "\n")), 0o644))
	G, err := New(name)
	require.NoError(Te, err)
	defer G.Close()
	require.NoError(Te, G.Next(nil))
	err = G.Next(nil)
	require.Error(Te, err)
	_, ok := err.(agg.LastFrameError)
	assert.False(Te, ok)

	name = writeGro(Te, []string{"a"}, "%8.3f")
	G2, err := New(name)
	require.NoError(Te, err)
	defer G2.Close()
	assert.Error(Te, G2.Next(v3.Zeros(2)))
}
