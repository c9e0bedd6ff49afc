/*
 * driver_test.go, part of goagg.
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

package pipeline

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	agg "github.com/rmera/goagg"
	"github.com/rmera/goagg/cluster"
	"github.com/rmera/goagg/dbscan"
	"github.com/rmera/goagg/dist"
	"github.com/rmera/goagg/store"
	v3 "github.com/rmera/goagg/v3"
)

// testTop returns 10 SUR residues of one atom each, followed by 2 water atoms.
func testTop() *agg.Topology {
	ats := make([]*agg.Atom, 0, 12)
	for i := 0; i < 10; i++ {
		ats = append(ats, &agg.Atom{Name: "C1", ID: i + 1, MolName: "SUR", MolID: i + 1, Molecule: i})
	}
	for i := 10; i < 12; i++ {
		ats = append(ats, &agg.Atom{Name: "OW", ID: i + 1, MolName: "SOL", MolID: i + 1, Molecule: i})
	}
	top := agg.NewTopology(ats...)
	top.NumberResidues()
	return top
}

// twoGroups puts the surfactants in two lines of 5, far from each other.
func twoGroups() *v3.Matrix {
	c := v3.Zeros(12)
	for i := 0; i < 5; i++ {
		c.Set(i, 0, float64(i))
		c.Set(i+5, 0, 100+float64(i))
	}
	c.Set(10, 1, 50)
	c.Set(11, 1, 51)
	return c
}

// spread puts the surfactants 10 A apart from each other.
func spread() *v3.Matrix {
	c := v3.Zeros(12)
	for i := 0; i < 10; i++ {
		c.Set(i, 0, 10*float64(i))
	}
	c.Set(10, 1, 50)
	c.Set(11, 1, 51)
	return c
}

func testOptions() *Options {
	o := DefaultOptions()
	o.Residues([]string{"SUR"})
	o.Cutoff(2)
	o.MinSamples(3)
	return o
}

func memTraj(Te *testing.T, times []float64, frames ...*v3.Matrix) *agg.MemTraj {
	m, err := agg.NewMemTraj(frames, nil, times)
	require.NoError(Te, err)
	return m
}

// truncating clusters with an Engine, but drops the last label on its bad-th call.
type truncating struct {
	inner dbscan.Clusterer
	calls int
	bad   int
}

func (t *truncating) Fit(d dbscan.Precomputed) (*dbscan.Result, error) {
	t.calls++
	res, err := t.inner.Fit(d)
	if err != nil {
		return nil, err
	}
	if t.calls == t.bad {
		res.Labels = res.Labels[:len(res.Labels)-1]
		res.CoreIndices = nil
	}
	return res, nil
}

type rect struct{}

func (rect) Dims() (int, int)                              { return 2, 3 }
func (rect) Neighbors(i int, eps float64, dst []int) []int { return dst[:0] }

type rectEngine struct{}

func (rectEngine) Fit(dbscan.Precomputed) (*dbscan.Result, error) {
	return dbscan.New(1, 1).Fit(rect{})
}

func countLines(Te *testing.T, name string) int {
	f, err := os.Open(name)
	require.NoError(Te, err)
	defer f.Close()
	s := bufio.NewScanner(f)
	n := 0
	for s.Scan() {
		n++
	}
	require.NoError(Te, s.Err())
	return n
}

func TestTwoClusters(Te *testing.T) {
	for _, mode := range []dist.Mode{dist.ModeDense, dist.ModeCellGrid} {
		o := testOptions()
		o.Mode(mode)
		D := New(memTraj(Te, nil, twoGroups()), testTop(), o)
		T, err := D.Run()
		require.NoError(Te, err, mode.String())
		require.Equal(Te, 1, T.Len())
		F := T.Frame(0)
		assert.Equal(Te, 2, F.NClusters, mode.String())
		assert.Equal(Te, []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}, F.Labels, mode.String())
		assert.NotContains(Te, F.Labels, dbscan.Noise)
		assert.Equal(Te, [][][]int{{{0, 1, 2, 3, 4}}, {{5, 6, 7, 8, 9}}}, F.ClusterIDs)
		assert.Equal(Te, "resname SUR", T.Meta.Query)
		assert.Equal(Te, mode.String(), T.Meta.Mode)
	}
}

func TestAllNoise(Te *testing.T) {
	T, err := New(memTraj(Te, nil, spread()), testTop(), testOptions()).Run()
	require.NoError(Te, err)
	require.Equal(Te, 1, T.Len())
	F := T.Frame(0)
	assert.Equal(Te, 0, F.NClusters)
	for _, l := range F.Labels {
		assert.Equal(Te, dbscan.Noise, l)
	}
	assert.Empty(Te, F.CoreIDs)
	assert.Equal(Te, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, F.FringeIDs)
}

func TestRejectedFrame(Te *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	M := NewMetrics()
	D := New(memTraj(Te, []float64{0, 10, 20}, twoGroups(), twoGroups(), spread()), testTop(), testOptions())
	D.Engine = &truncating{inner: dbscan.New(2, 3), bad: 2}
	D.Logger = zap.New(core)
	D.Metrics = M
	T, err := D.Run()
	require.NoError(Te, err)
	require.Equal(Te, 2, T.Len())
	assert.Equal(Te, 0.0, T.Frame(0).Time)
	assert.Equal(Te, 20.0, T.Frame(1).Time)
	assert.Equal(Te, 2, T.Frame(0).NClusters)
	assert.Equal(Te, 0, T.Frame(1).NClusters)

	warns := logs.FilterMessage("frame rejected").All()
	require.Len(Te, warns, 1)
	assert.Equal(Te, int64(1), warns[0].ContextMap()["frame"])

	dir := Te.TempDir()
	out := Outputs{
		Traj:    filepath.Join(dir, "traj.msgpack.zst"),
		Summary: filepath.Join(dir, cluster.DefaultSummaryFile),
		Metrics: filepath.Join(dir, "metrics.prom"),
	}
	require.NoError(Te, WriteOutputs(T, testTop(), M, out))
	assert.Equal(Te, 2, countLines(Te, out.Summary))
	b, err := os.ReadFile(out.Metrics)
	require.NoError(Te, err)
	assert.Contains(Te, string(b), `goagg_frames_total{status="accepted"} 2`)
	assert.Contains(Te, string(b), `goagg_frames_total{status="rejected"} 1`)

	T2, err := cluster.LoadFile(out.Traj)
	require.NoError(Te, err)
	require.Equal(Te, T.Len(), T2.Len())
	for i := range T.Frames {
		assert.Equal(Te, T.Frame(i).Time, T2.Frame(i).Time)
		assert.Equal(Te, T.Frame(i).Labels, T2.Frame(i).Labels)
		assert.Equal(Te, T.Frame(i).NClusters, T2.Frame(i).NClusters)
	}
}

func TestValidate(Te *testing.T) {
	sel, err := agg.NewSelection(twoGroups(), []int{0, 1, 2})
	require.NoError(Te, err)
	v := Validate(sel, &dbscan.Result{Labels: []int{0, 0, 0}, CoreIndices: []int{1}})
	assert.True(Te, v.Accepted)
	assert.Empty(Te, v.Reason)
	v = Validate(sel, &dbscan.Result{Labels: []int{0, 0}})
	assert.False(Te, v.Accepted)
	assert.Contains(Te, v.Reason, "2 labels for 3")
	v = Validate(sel, &dbscan.Result{Labels: []int{0, 0, 0}, CoreIndices: []int{3}})
	assert.False(Te, v.Accepted)
	assert.False(Te, Validate(sel, nil).Accepted)
}

func TestTimes(Te *testing.T) {
	//without a Timer, frames are DT apart
	src := struct{ agg.Traj }{memTraj(Te, []float64{5, 6, 7}, spread(), spread(), spread())}
	o := testOptions()
	o.DT(2.5)
	T, err := New(src, testTop(), o).Run()
	require.NoError(Te, err)
	require.Equal(Te, 3, T.Len())
	for i, want := range []float64{0, 2.5, 5} {
		assert.Equal(Te, want, T.Frame(i).Time)
	}
}

func TestEmptySelection(Te *testing.T) {
	o := testOptions()
	o.Residues([]string{"DPC"})
	T, err := New(memTraj(Te, nil, twoGroups(), spread()), testTop(), o).Run()
	require.NoError(Te, err)
	require.Equal(Te, 2, T.Len())
	assert.Equal(Te, 0, T.Frame(0).NClusters)
	assert.Empty(Te, T.Frame(0).Labels)
}

func TestErrors(Te *testing.T) {
	D := New(memTraj(Te, nil, twoGroups()), testTop(), testOptions())
	D.Engine = rectEngine{}
	_, err := D.Run()
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, dbscan.ErrDimension))
	var ce *agg.CError
	require.True(Te, errors.As(err, &ce))
	assert.Contains(Te, ce.Trace(), "pipeline.Driver.Run(frame 0)")

	//bad options
	o := testOptions()
	o.Residues([]string{})
	_, err = New(memTraj(Te, nil, twoGroups()), testTop(), o).Run()
	assert.Error(Te, err)
	o = testOptions()
	o.Cutoff(0)
	_, err = New(memTraj(Te, nil, twoGroups()), testTop(), o).Run()
	assert.Error(Te, err)
	o = testOptions()
	o.MinSamples(0)
	assert.Error(Te, o.Check())
	o = testOptions()
	o.Query("bogus SUR")
	_, err = New(memTraj(Te, nil, twoGroups()), testTop(), o).Run()
	assert.Error(Te, err)

	//topology and trajectory don't match
	_, err = New(memTraj(Te, nil, v3.Zeros(3)), testTop(), testOptions()).Run()
	assert.Error(Te, err)

	assert.Error(Te, WriteOutputs(nil, nil, nil, DefaultOutputs()))
	T := cluster.NewTrajectory(cluster.Meta{})
	assert.Error(Te, WriteOutputs(T, nil, nil, Outputs{Sizes: filepath.Join(Te.TempDir(), "sizes.dat")}))
}

func TestOptions(Te *testing.T) {
	o := DefaultOptions()
	assert.Equal(Te, 10.0, o.Cutoff())
	assert.Equal(Te, 3, o.MinSamples())
	assert.Equal(Te, dist.ModeDense, o.Mode())
	assert.Equal(Te, "", o.Query())
	assert.Error(Te, o.Check())
	assert.Equal(Te, []string{"SUR", "DPC"}, o.Residues([]string{"SUR", "DPC"}))
	assert.Equal(Te, "resname SUR or resname DPC", o.Query())
	assert.Equal(Te, "name C1", o.Query("name C1"))
	assert.Equal(Te, cluster.Molecule, o.Grouping(cluster.Molecule))
	assert.Equal(Te, []string{"a.gro"}, o.Sources("a.gro"))
	assert.NoError(Te, o.Check())
	m := o.meta()
	assert.Equal(Te, "mol", m.Grouping)
	assert.Equal(Te, "name C1", m.Query)
	assert.Equal(Te, []string{"a.gro"}, m.Sources)
}

func TestCheckpoint(Te *testing.T) {
	dir := Te.TempDir()
	S, err := store.Open(filepath.Join(dir, "ckpt"))
	require.NoError(Te, err)
	o := testOptions()
	o.Sources("test.gro")
	D := New(memTraj(Te, []float64{0, 10, 20}, twoGroups(), twoGroups(), spread()), testTop(), o)
	D.Engine = &truncating{inner: dbscan.New(2, 3), bad: 2}
	D.Sink = S
	T, err := D.Run()
	require.NoError(Te, err)
	require.NoError(Te, S.Close())

	S, err = store.Open(filepath.Join(dir, "ckpt"))
	require.NoError(Te, err)
	defer S.Close()
	R, err := S.Trajectory()
	require.NoError(Te, err)
	assert.Equal(Te, T.RunID, R.RunID)
	assert.Equal(Te, []string{"test.gro"}, R.Meta.Sources)
	require.Equal(Te, 2, R.Len())
	assert.Equal(Te, 20.0, R.Frame(1).Time)
	assert.Equal(Te, T.Frame(0).Labels, R.Frame(0).Labels)
}

func TestOutputs(Te *testing.T) {
	T, err := New(memTraj(Te, []float64{0, 1}, twoGroups(), spread()), testTop(), testOptions()).Run()
	require.NoError(Te, err)
	dir := Te.TempDir()
	out := DefaultOutputs()
	out.Traj = filepath.Join(dir, out.Traj)
	out.Summary = filepath.Join(dir, out.Summary)
	out.Sizes = filepath.Join(dir, "sizes.dat")
	out.Grouping = cluster.Residue
	out.Plot = filepath.Join(dir, "nclusters.png")
	out.Metrics = filepath.Join(dir, "metrics.prom") //skipped, no metrics
	require.NoError(Te, WriteOutputs(T, testTop(), nil, out))
	b, err := os.ReadFile(out.Summary)
	require.NoError(Te, err)
	assert.Equal(Te, "0.000000 2.000000\n1.000000 0.000000\n", string(b))
	b, err = os.ReadFile(out.Sizes)
	require.NoError(Te, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(Te, lines, 2)
	assert.Equal(Te, []string{"0.000000", "5", "5"}, strings.Fields(lines[0]))
	assert.FileExists(Te, out.Plot)
	assert.NoFileExists(Te, out.Metrics)
}
