/*
 * frame.go, part of goagg.
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
	"fmt"
	"sort"

	agg "github.com/rmera/goagg"
	"github.com/tidwall/btree"
)

// Noise is the label of unclustered points.
const Noise = -1

// Frame is the result of clustering one frame of a trajectory. All ids are
// global atom indexes, obtained through the Selection that was clustered.
// A Frame is not modified after it is built.
type Frame struct {
	Time        float64 `msgpack:"time"`
	Labels      []int   `msgpack:"labels"`       //one per selected atom
	CoreIndices []int   `msgpack:"core_indices"` //positions in the selection
	CoreMask    []bool  `msgpack:"core_mask"`
	FringeMask  []bool  `msgpack:"fringe_mask"` //complement of CoreMask, so it includes noise.
	CoreIDs     []int   `msgpack:"core_ids"`
	FringeIDs   []int   `msgpack:"fringe_ids"`
	//One element per cluster, in order of first appearance in Labels. Each
	//element is a 1-element slice that contains the ids in the cluster.
	ClusterIDs [][][]int `msgpack:"cluster_ids"`
	NClusters  int       `msgpack:"n_clusters"`
}

// NewFrame builds the Frame for the clustering given by labels and core, for the
// atoms in sel. sel can be nil, in which case the ids are the positions themselves.
// It panics if sel and labels have different lengths, or if a core index is out
// of range.
func NewFrame(time float64, labels, core []int, sel *agg.Selection) *Frame {
	N := len(labels)
	id := func(pos int) int { return pos }
	if sel != nil {
		if sel.Len() != N {
			panic(fmt.Sprintf("goagg/cluster.NewFrame: %d labels for %d selected atoms", N, sel.Len()))
		}
		id = sel.ID
	}
	F := &Frame{
		Time:        time,
		Labels:      append([]int(nil), labels...),
		CoreIndices: append([]int(nil), core...),
		CoreMask:    make([]bool, N),
		FringeMask:  make([]bool, N),
		CoreIDs:     make([]int, 0, len(core)),
		FringeIDs:   make([]int, 0, N),
	}
	for _, c := range core {
		if c < 0 || c >= N {
			panic(fmt.Sprintf("goagg/cluster.NewFrame: core index %d out of range for %d points", c, N))
		}
		F.CoreMask[c] = true
	}
	for pos := 0; pos < N; pos++ {
		if F.CoreMask[pos] {
			F.CoreIDs = append(F.CoreIDs, id(pos))
		} else {
			F.FringeMask[pos] = true
			F.FringeIDs = append(F.FringeIDs, id(pos))
		}
	}
	//label -> position in ClusterIDs
	var groups btree.Map[int, int]
	for pos, l := range labels {
		if l == Noise {
			continue
		}
		g, ok := groups.Get(l)
		if !ok {
			g = len(F.ClusterIDs)
			groups.Set(l, g)
			F.ClusterIDs = append(F.ClusterIDs, [][]int{nil})
		}
		F.ClusterIDs[g][0] = append(F.ClusterIDs[g][0], id(pos))
	}
	F.NClusters = groups.Len()
	return F
}

// Cluster returns the ids of the atoms in the ith cluster. The slice is not a copy.
func (F *Frame) Cluster(i int) []int {
	return F.ClusterIDs[i][0]
}

// Special is one of the 2 populations in which clustered atoms are split.
type Special int

const (
	Core Special = iota
	Fringe
)

func (s Special) String() string {
	switch s {
	case Core:
		return "core"
	case Fringe:
		return "fringe"
	}
	return fmt.Sprintf("Special(%d)", int(s))
}

// SelectAtoms returns, for each cluster, the indexes of its atoms in top.
// If a grouping other than Atom is given in complete, the clusters are completed
// with every atom of top that shares a residue/molecule with the atoms of the
// first cluster, so all returned groups are equal. Use SelectAtomsPerCluster to
// complete each cluster with its own residues/molecules. Ids not present in
// top are dropped.
func (F *Frame) SelectAtoms(top agg.Atomer, complete ...Grouping) [][]int {
	g := grouping(complete)
	ret := make([][]int, 0, F.NClusters)
	if g == Atom {
		for i := range F.ClusterIDs {
			ret = append(ret, resolve(top, F.Cluster(i)))
		}
		return ret
	}
	var keys map[int]bool
	for i := range F.ClusterIDs {
		if keys == nil {
			keys = g.KeySet(top, resolve(top, F.Cluster(i)))
		}
		ret = append(ret, g.Expand(top, keys))
	}
	return ret
}

// SelectAtomsPerCluster is like SelectAtoms, but each cluster is completed with
// the residues/molecules of its own atoms.
func (F *Frame) SelectAtomsPerCluster(top agg.Atomer, complete Grouping) [][]int {
	if complete == Atom {
		return F.SelectAtoms(top)
	}
	ret := make([][]int, 0, F.NClusters)
	for i := range F.ClusterIDs {
		ret = append(ret, complete.Expand(top, complete.KeySet(top, resolve(top, F.Cluster(i)))))
	}
	return ret
}

// SelectSpecial returns the indexes in top of the core or fringe atoms, in
// topology order. Ids not present in top are dropped.
func (F *Frame) SelectSpecial(top agg.Atomer, kind Special) []int {
	ids := F.CoreIDs
	if kind == Fringe {
		ids = F.FringeIDs
	}
	ret := resolve(top, ids)
	sort.Ints(ret)
	return ret
}

// ClusterSizes returns the size of each cluster: the number of distinct
// residues/molecules in it if a grouping is given in complete, or the number
// of atoms otherwise.
func (F *Frame) ClusterSizes(top agg.Atomer, complete ...Grouping) []int {
	g := grouping(complete)
	ret := make([]int, 0, F.NClusters)
	for i := range F.ClusterIDs {
		ret = append(ret, len(g.KeySet(top, resolve(top, F.Cluster(i)))))
	}
	return ret
}

// resolve returns the ids that are valid indexes in top.
func resolve(top agg.Atomer, ids []int) []int {
	ret := make([]int, 0, len(ids))
	n := top.Len()
	for _, v := range ids {
		if v >= 0 && v < n {
			ret = append(ret, v)
		}
	}
	return ret
}

func grouping(complete []Grouping) Grouping {
	if len(complete) > 0 {
		return complete[0]
	}
	return Atom
}
