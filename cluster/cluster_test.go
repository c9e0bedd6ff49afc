/*
 * cluster_test.go, part of goagg.
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

package cluster

import (
	"bytes"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agg "github.com/rmera/goagg"
	v3 "github.com/rmera/goagg/v3"
)

// testTop returns 8 atoms in 4 residues of 2 atoms. Residues 1 and 2 form
// molecule 0, residues 3 and 4 are molecules 1 and 2.
func testTop() *agg.Topology {
	ats := make([]*agg.Atom, 0, 8)
	mols := []int{0, 0, 1, 2}
	for r := 1; r <= 4; r++ {
		for k := 0; k < 2; k++ {
			ats = append(ats, &agg.Atom{Name: "C", ID: len(ats) + 1, MolName: "SUR", MolID: r, Molecule: mols[r-1]})
		}
	}
	top := agg.NewTopology(ats...)
	top.NumberResidues()
	return top
}

func testSel(Te *testing.T) *agg.Selection {
	c := v3.Zeros(8)
	for i := 0; i < 8; i++ {
		c.Set(i, 0, float64(i))
	}
	sel, err := agg.NewSelection(c, []int{1, 2, 4, 6, 7})
	require.NoError(Te, err)
	return sel
}

func testFrame(Te *testing.T) *Frame {
	return NewFrame(0, []int{1, 1, Noise, 0, 0}, []int{0, 3}, testSel(Te))
}

func TestNewFrame(Te *testing.T) {
	F := testFrame(Te)
	assert.Equal(Te, 2, F.NClusters)
	assert.Equal(Te, []bool{true, false, false, true, false}, F.CoreMask)
	assert.Equal(Te, []bool{false, true, true, false, true}, F.FringeMask)
	assert.Equal(Te, []int{1, 6}, F.CoreIDs)
	//noise goes to the fringe
	assert.Equal(Te, []int{2, 4, 7}, F.FringeIDs)
	//first encounter order, not label order
	assert.Equal(Te, [][][]int{{{1, 2}}, {{6, 7}}}, F.ClusterIDs)
	assert.Equal(Te, []int{6, 7}, F.Cluster(1))

	//without a selection, ids are positions
	F = NewFrame(1, []int{0, Noise, 0}, []int{0}, nil)
	assert.Equal(Te, [][][]int{{{0, 2}}}, F.ClusterIDs)
	assert.Equal(Te, []int{1, 2}, F.FringeIDs)

	assert.Panics(Te, func() { NewFrame(0, []int{0, 0}, nil, testSel(Te)) })
	assert.Panics(Te, func() { NewFrame(0, []int{0, 0}, []int{2}, nil) })
}

func TestAllNoiseFrame(Te *testing.T) {
	labels := make([]int, 10)
	for i := range labels {
		labels[i] = Noise
	}
	F := NewFrame(0, labels, nil, nil)
	assert.Zero(Te, F.NClusters)
	assert.Empty(Te, F.CoreIDs)
	assert.Equal(Te, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, F.FringeIDs)
	assert.Empty(Te, F.ClusterIDs)
	assert.Empty(Te, F.SelectAtoms(testTop()))
}

func TestFrameProperties(Te *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		N := r.Intn(40)
		labels := make([]int, N)
		ids := make([]int, N)
		distinct := make(map[int]bool)
		core := make([]int, 0, N)
		for i := range labels {
			labels[i] = r.Intn(6) - 1
			ids[i] = 3*i + 1
			if labels[i] != Noise {
				distinct[labels[i]] = true
				if r.Intn(2) == 0 {
					core = append(core, i)
				}
			}
		}
		sel := &agg.Selection{Indices: ids}
		F := NewFrame(float64(trial), labels, core, sel)
		assert.Equal(Te, len(distinct), F.NClusters)
		assert.Len(Te, F.ClusterIDs, F.NClusters)

		//core and fringe partition the selection
		all := append(append([]int{}, F.CoreIDs...), F.FringeIDs...)
		sort.Ints(all)
		assert.Equal(Te, ids, all)
		for i := range labels {
			assert.NotEqual(Te, F.CoreMask[i], F.FringeMask[i])
		}

		//clusters partition the non-noise ids
		seen := make(map[int]bool)
		for c := range F.ClusterIDs {
			require.Len(Te, F.ClusterIDs[c], 1)
			for _, id := range F.Cluster(c) {
				assert.False(Te, seen[id], "id %d in 2 clusters", id)
				seen[id] = true
			}
		}
		for i, l := range labels {
			assert.Equal(Te, l != Noise, seen[ids[i]])
		}
	}
}

func TestSelectAtoms(Te *testing.T) {
	F := testFrame(Te)
	top := testTop()
	assert.Equal(Te, [][]int{{1, 2}, {6, 7}}, F.SelectAtoms(top))
	assert.Equal(Te, [][]int{{1, 2}, {6, 7}}, F.SelectAtoms(top, Atom))
	//Completion uses the residues of the first cluster for every cluster.
	//This narrowing is kept on purpose; the second cluster's own residue (4) is lost.
	assert.Equal(Te, [][]int{{0, 1, 2, 3}, {0, 1, 2, 3}}, F.SelectAtoms(top, Residue))
	assert.Equal(Te, [][]int{{0, 1, 2, 3}, {0, 1, 2, 3}}, F.SelectAtoms(top, Molecule))
	assert.Equal(Te, [][]int{{0, 1, 2, 3}, {6, 7}}, F.SelectAtomsPerCluster(top, Residue))
	assert.Equal(Te, [][]int{{0, 1, 2, 3}, {6, 7}}, F.SelectAtomsPerCluster(top, Molecule))
	assert.Equal(Te, [][]int{{1, 2}, {6, 7}}, F.SelectAtomsPerCluster(top, Atom))

	//ids outside the universe are dropped
	small := agg.NewTopology(testTop().Atoms[:5]...)
	assert.Equal(Te, [][]int{{1, 2}, {}}, F.SelectAtoms(small))
}

func TestSelectSpecial(Te *testing.T) {
	F := testFrame(Te)
	top := testTop()
	assert.Equal(Te, []int{1, 6}, F.SelectSpecial(top, Core))
	assert.Equal(Te, []int{2, 4, 7}, F.SelectSpecial(top, Fringe))
	small := agg.NewTopology(testTop().Atoms[:5]...)
	assert.Equal(Te, []int{1}, F.SelectSpecial(small, Core))
	assert.Equal(Te, "fringe", Fringe.String())
}

func TestClusterSizes(Te *testing.T) {
	F := testFrame(Te)
	top := testTop()
	assert.Equal(Te, []int{2, 2}, F.ClusterSizes(top))
	assert.Equal(Te, []int{2, 1}, F.ClusterSizes(top, Residue))
	assert.Equal(Te, []int{1, 1}, F.ClusterSizes(top, Molecule))
}

func TestRepeatedResidueNumbers(Te *testing.T) {
	//1 SUR, 2 SOL, 1 SUR: the two SUR residues share a number but are distinct.
	top := agg.NewTopology()
	for _, r := range []struct {
		id   int
		name string
	}{{1, "SUR"}, {1, "SUR"}, {2, "SOL"}, {2, "SOL"}, {1, "SUR"}, {1, "SUR"}} {
		top.AddAtom(&agg.Atom{Name: "C", ID: top.Len() + 1, MolName: r.name, MolID: r.id})
	}
	top.ResidueMolecules()
	c := v3.Zeros(6)
	sel, err := agg.NewSelection(c, []int{0, 1})
	require.NoError(Te, err)
	F := NewFrame(0, []int{0, 0}, []int{0}, sel)
	assert.Equal(Te, [][]int{{0, 1}}, F.SelectAtomsPerCluster(top, Residue))
	assert.Equal(Te, [][]int{{0, 1}}, F.SelectAtomsPerCluster(top, Molecule))
	assert.Equal(Te, [][]int{{0, 1}}, F.SelectAtoms(top, Residue))

	sel, err = agg.NewSelection(c, []int{0, 1, 4})
	require.NoError(Te, err)
	F = NewFrame(0, []int{0, 0, 0}, []int{0}, sel)
	assert.Equal(Te, [][]int{{0, 1, 4, 5}}, F.SelectAtomsPerCluster(top, Residue))
	assert.Equal(Te, []int{2}, F.ClusterSizes(top, Residue))
}

func TestParseGrouping(Te *testing.T) {
	for s, g := range map[string]Grouping{"atom": Atom, "": Atom, "res": Residue, "Residue": Residue, "mol": Molecule, " molecule ": Molecule} {
		got, err := ParseGrouping(s)
		require.NoError(Te, err)
		assert.Equal(Te, g, got, s)
	}
	_, err := ParseGrouping("chain")
	assert.Error(Te, err)
	assert.Equal(Te, "res", Residue.String())
}

func testTraj(Te *testing.T) *Trajectory {
	T := NewTrajectory(Meta{Query: "resname SUR", Cutoff: 2, MinSamples: 3, Mode: "dense"})
	T.Append(testFrame(Te))
	T.AddFrame(10.5, []int{Noise, Noise, Noise, Noise, Noise}, nil, testSel(Te))
	return T
}

func TestSummary(Te *testing.T) {
	T := testTraj(Te)
	var b bytes.Buffer
	require.NoError(Te, T.WriteSummary(&b))
	assert.Equal(Te, "0.000000 2.000000\n10.500000 0.000000\n", b.String())

	b.Reset()
	require.NoError(Te, T.WriteSizes(&b, testTop(), Residue))
	assert.Equal(Te, "0.000000 2 1\n10.500000\n", b.String())

	name := filepath.Join(Te.TempDir(), DefaultSummaryFile)
	require.NoError(Te, T.WriteSummaryFile(name))
	data, err := os.ReadFile(name)
	require.NoError(Te, err)
	assert.Equal(Te, "0.000000 2.000000\n10.500000 0.000000\n", string(data))
}

func TestRoundTrip(Te *testing.T) {
	T := testTraj(Te)
	require.NotEmpty(Te, T.RunID)
	dir := Te.TempDir()
	for _, name := range []string{DefaultFile, "traj.msgpack.gz", "traj.msgpack"} {
		name = filepath.Join(dir, name)
		require.NoError(Te, T.SaveFile(name))
		T2, err := LoadFile(name)
		require.NoError(Te, err, name)
		assert.Equal(Te, T.RunID, T2.RunID)
		assert.Equal(Te, T.Meta.Query, T2.Meta.Query)
		assert.True(Te, T.Meta.Created.Equal(T2.Meta.Created))
		require.Equal(Te, T.Len(), T2.Len())
		for i, F := range T.Frames {
			G := T2.Frame(i)
			assert.Equal(Te, F.Time, G.Time)
			assert.Equal(Te, F.Labels, G.Labels)
			assert.Equal(Te, F.NClusters, G.NClusters)
			assert.Equal(Te, F.CoreMask, G.CoreMask)
			assert.ElementsMatch(Te, F.CoreIDs, G.CoreIDs)
			assert.ElementsMatch(Te, F.FringeIDs, G.FringeIDs)
			assert.Equal(Te, len(F.ClusterIDs), len(G.ClusterIDs))
			for c := range F.ClusterIDs {
				assert.Equal(Te, F.Cluster(c), G.Cluster(c))
			}
		}
	}
	_, err := LoadFile(filepath.Join(dir, "missing.msgpack"))
	assert.Error(Te, err)
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "bad.msgpack.zst"), []byte("not zstd"), 0o644))
	_, err = LoadFile(filepath.Join(dir, "bad.msgpack.zst"))
	assert.Error(Te, err)
}

func TestStats(Te *testing.T) {
	S := testTraj(Te).Stats(testTop(), Atom)
	assert.Equal(Te, 2, S.Frames)
	assert.InDelta(Te, 1.0, S.MeanCount, 1e-12)
	assert.InDelta(Te, math.Sqrt2, S.StdCount, 1e-12)
	assert.Equal(Te, 2, S.MaxCount)
	assert.Equal(Te, 2, S.LargestSize)
	assert.InDelta(Te, 2.0, S.MeanSize, 1e-12)
	assert.Equal(Te, []float64{0, 2}, S.Sizes.View())
	assert.NotEmpty(Te, S.String())

	E := NewTrajectory(Meta{}).Stats(testTop(), Atom)
	assert.Zero(Te, E.Frames)
	assert.True(Te, math.IsNaN(E.MeanCount))
	assert.Zero(Te, E.Sizes.Total())
}

func TestRadiusOfGyration(Te *testing.T) {
	c, err := v3.NewMatrix([]float64{0, 0, 0, 2, 0, 0})
	require.NoError(Te, err)
	rg, err := RadiusOfGyration(c, nil)
	require.NoError(Te, err)
	assert.InDelta(Te, 1.0, rg, 1e-12)
	//across the periodic boundary
	c, err = v3.NewMatrix([]float64{0, 0, 0, 9, 0, 0})
	require.NoError(Te, err)
	rg, err = RadiusOfGyration(c, []float64{10, 10, 10})
	require.NoError(Te, err)
	assert.InDelta(Te, 0.5, rg, 1e-12)
	//a square of side 2: every point is sqrt(2) from the center
	c, err = v3.NewMatrix([]float64{0, 0, 0, 2, 0, 0, 0, 2, 0, 2, 2, 0})
	require.NoError(Te, err)
	rg, err = RadiusOfGyration(c, nil)
	require.NoError(Te, err)
	assert.InDelta(Te, math.Sqrt2, rg, 1e-12)
	rg, err = RadiusOfGyration(v3.Zeros(0), nil)
	require.NoError(Te, err)
	assert.Zero(Te, rg)

	F := testFrame(Te)
	coords := testSel(Te).Coords //only to get the size wrong
	_, err = F.Gyration(coords, nil)
	assert.Error(Te, err)
	all := v3.Zeros(8)
	for i := 0; i < 8; i++ {
		all.Set(i, 0, float64(i))
	}
	g, err := F.Gyration(all, nil)
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, []float64{0.5, 0.5}, g, 1e-12)
}

func TestPlotClusterCount(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "n_clusters.png")
	require.NoError(Te, testTraj(Te).PlotClusterCount(name, "Test"))
	info, err := os.Stat(name)
	require.NoError(Te, err)
	assert.Positive(Te, info.Size())
}
