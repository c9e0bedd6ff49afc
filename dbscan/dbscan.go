/*
 * dbscan.go, part of goagg.
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

// Package dbscan implements density-based clustering (DBSCAN) over
// precomputed distances.
//
// A point is a core point if at least MinSamples points, itself included, lie
// within Eps of it. Core points within Eps of each other belong to the same
// cluster, and every point within Eps of a core point joins the cluster of
// that core point. Points reachable from no core point are noise, labeled -1.
//
// Clusters are numbered from 0 in the order of their lowest core point, and a
// point reachable from more than one cluster goes to the lowest-numbered one,
// so the labeling is deterministic.
package dbscan

import (
	"errors"
	"fmt"
	"sort"

	agg "github.com/rmera/goagg"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Noise is the label of points that belong to no cluster.
const Noise = -1

// ErrDimension is returned when the distance representation is not square.
var ErrDimension = errors.New("dbscan: distance matrix is not square")

// Precomputed is a square representation of the distances between N points.
type Precomputed interface {
	Dims() (r, c int)

	//Neighbors appends to dst[:0] the indexes j with distance(i,j)<=eps, i included.
	Neighbors(i int, eps float64, dst []int) []int
}

// Clusterer is anything that can cluster points given their distances.
type Clusterer interface {
	Fit(d Precomputed) (*Result, error)
}

// Result of a clustering.
type Result struct {
	Labels      []int //one per point, in input order
	CoreIndices []int //ascending
}

// NClusters returns the number of clusters in the result.
func (R *Result) NClusters() int {
	max := Noise
	for _, l := range R.Labels {
		if l > max {
			max = l
		}
	}
	return max + 1
}

// Engine clusters points with DBSCAN.
type Engine struct {
	eps        float64
	minSamples int
}

// New returns an Engine with neighborhood radius eps, where core points need
// minSamples neighbors (themselves included).
func New(eps float64, minSamples int) *Engine {
	return &Engine{eps: eps, minSamples: minSamples}
}

// Eps returns the neighborhood radius.
func (E *Engine) Eps() float64 { return E.eps }

// MinSamples returns the minimum number of neighbors for a core point.
func (E *Engine) MinSamples() int { return E.minSamples }

// Fit clusters the points whose distances are given in d.
func (E *Engine) Fit(d Precomputed) (*Result, error) {
	if !(E.eps > 0) {
		return nil, agg.NewError(fmt.Sprintf("dbscan: eps must be positive, got %v", E.eps), "Fit")
	}
	if E.minSamples < 1 {
		return nil, agg.NewError(fmt.Sprintf("dbscan: min samples must be at least 1, got %d", E.minSamples), "Fit")
	}
	r, c := d.Dims()
	if r != c {
		return nil, agg.WrapError(fmt.Errorf("%w: %dx%d", ErrDimension, r, c), "Fit")
	}
	n := r
	neighbors := make([][]int, n)
	core := make([]bool, n)
	coreIndices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		neighbors[i] = d.Neighbors(i, E.eps, nil)
		if len(neighbors[i]) >= E.minSamples {
			core[i] = true
			coreIndices = append(coreIndices, i)
		}
	}
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	for label, comp := range coreComponents(neighbors, core, coreIndices) {
		for _, i := range comp {
			labels[i] = label
		}
	}
	//border points
	for i := 0; i < n; i++ {
		if core[i] {
			continue
		}
		for _, j := range neighbors[i] {
			if core[j] && (labels[i] == Noise || labels[j] < labels[i]) {
				labels[i] = labels[j]
			}
		}
	}
	return &Result{Labels: labels, CoreIndices: coreIndices}, nil
}

// coreComponents returns the connected components of the graph of core points,
// where 2 core points are joined if they are neighbors. The components are
// sorted by their lowest member.
func coreComponents(neighbors [][]int, core []bool, coreIndices []int) [][]int {
	g := simple.NewUndirectedGraph()
	for _, i := range coreIndices {
		g.AddNode(simple.Node(i))
	}
	for _, i := range coreIndices {
		for _, j := range neighbors[i] {
			if j > i && core[j] {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}
	comps := topo.ConnectedComponents(g)
	ret := make([][]int, 0, len(comps))
	for _, comp := range comps {
		ret = append(ret, nodeIDs(comp))
	}
	sort.Slice(ret, func(a, b int) bool { return ret[a][0] < ret[b][0] })
	return ret
}

// nodeIDs returns the sorted IDs of the nodes.
func nodeIDs(nodes []graph.Node) []int {
	ret := make([]int, 0, len(nodes))
	for _, v := range nodes {
		ret = append(ret, int(v.ID()))
	}
	sort.Ints(ret)
	return ret
}
