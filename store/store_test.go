/*
 * store_test.go, part of goagg.
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

package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/goagg/cluster"
)

func TestStore(Te *testing.T) {
	dir := Te.TempDir()
	S, err := Open(dir)
	require.NoError(Te, err)
	T := cluster.NewTrajectory(cluster.Meta{Query: "resname SUR", MinSamples: 3})
	require.NoError(Te, S.PutHeader(T))
	//out of order, and more than 255 frames so the key order matters.
	for _, i := range []int{300, 2, 0, 1} {
		F := cluster.NewFrame(float64(i), []int{0, 0, -1}, []int{0}, nil)
		require.NoError(Te, S.Put(i, F))
	}
	assert.Error(Te, S.Put(-1, cluster.NewFrame(0, nil, nil, nil)))
	require.NoError(Te, S.Close())

	//reopen, as after a crash.
	S, err = Open(dir)
	require.NoError(Te, err)
	defer S.Close()
	frames, err := S.Frames()
	require.NoError(Te, err)
	require.Len(Te, frames, 4)
	for i, want := range []float64{0, 1, 2, 300} {
		assert.Equal(Te, want, frames[i].Time)
		assert.Equal(Te, 1, frames[i].NClusters)
		assert.Equal(Te, []int{0, 1}, frames[i].Cluster(0))
	}
	R, err := S.Trajectory()
	require.NoError(Te, err)
	assert.Equal(Te, T.RunID, R.RunID)
	assert.Equal(Te, "resname SUR", R.Meta.Query)
	assert.Equal(Te, 4, R.Len())
}

func TestNewRun(Te *testing.T) {
	dir := Te.TempDir()
	S, err := Open(dir)
	require.NoError(Te, err)
	first := cluster.NewTrajectory(cluster.Meta{Query: "resname SUR"})
	require.NoError(Te, S.PutHeader(first))
	for i := 0; i < 5; i++ {
		require.NoError(Te, S.Put(i, cluster.NewFrame(float64(100+i), []int{0, 0}, []int{0}, nil)))
	}
	//the same run writing its header again keeps its frames.
	require.NoError(Te, S.PutHeader(first))
	frames, err := S.Frames()
	require.NoError(Te, err)
	assert.Len(Te, frames, 5)
	require.NoError(Te, S.Close())

	//a second run in the same directory.
	S, err = Open(dir)
	require.NoError(Te, err)
	defer S.Close()
	second := cluster.NewTrajectory(cluster.Meta{Query: "resname DPC"})
	require.NoError(Te, S.PutHeader(second))
	require.NoError(Te, S.Put(0, cluster.NewFrame(0, []int{0, 0}, []int{0}, nil)))
	R, err := S.Trajectory()
	require.NoError(Te, err)
	assert.Equal(Te, second.RunID, R.RunID)
	assert.Equal(Te, "resname DPC", R.Meta.Query)
	require.Equal(Te, 1, R.Len())
	assert.Equal(Te, 0.0, R.Frame(0).Time)
}

func TestNoHeader(Te *testing.T) {
	S, err := Open(Te.TempDir())
	require.NoError(Te, err)
	defer S.Close()
	_, err = S.Trajectory()
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, ErrNoHeader))
	frames, err := S.Frames()
	require.NoError(Te, err)
	assert.Empty(Te, frames)

	_, err = Open("")
	assert.Error(Te, err)
}
