/*
 * cellgrid.go, part of goagg.
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

package dist

import (
	"math"

	agg "github.com/rmera/goagg"
	v3 "github.com/rmera/goagg/v3"
)

// limits the memory used by the grid in large, sparsely populated boxes.
const cellsPerPoint = 8

type grid struct {
	n      [3]int     //cells along each axis
	size   [3]float64 //cell edge along each axis, never smaller than the cutoff
	origin [3]float64
	L      [3]float64 //box edges, or zeros without periodicity
	head   []int      //first point in each cell, or -1
	next   []int      //next point in the same cell, or -1
}

// CellGrid returns a Sparse matrix with the minimum-image distances between
// all pairs of points in coords that are within cutoff of each other.
// Points are binned into cells with edges no shorter than the cutoff, so only
// points in the same or adjacent cells need to be compared.
func CellGrid(coords *v3.Matrix, box []float64, cutoff float64) (*Sparse, error) {
	if err := checkInput(coords, box, "CellGrid"); err != nil {
		return nil, err
	}
	if !(cutoff > 0) || math.IsInf(cutoff, 1) {
		return nil, agg.NewError("CellGrid needs a positive, finite cutoff", "CellGrid")
	}
	n := coords.NVecs()
	rows := make([][]Entry, n)
	if n == 0 {
		return fromRows(0, 0, rows), nil
	}
	p := flatten(coords)
	g := newGrid(p, boxEdges(box), cutoff)
	var nb [3][]int
	for cx := 0; cx < g.n[0]; cx++ {
		nb[0] = g.adjacent(0, cx)
		for cy := 0; cy < g.n[1]; cy++ {
			nb[1] = g.adjacent(1, cy)
			for cz := 0; cz < g.n[2]; cz++ {
				nb[2] = g.adjacent(2, cz)
				c := g.index(cx, cy, cz)
				if g.head[c] < 0 {
					continue
				}
				for _, ox := range nb[0] {
					for _, oy := range nb[1] {
						for _, oz := range nb[2] {
							c2 := g.index(ox, oy, oz)
							if c2 < c { //each pair of cells is visited once
								continue
							}
							g.pairs(p, c, c2, cutoff, rows)
						}
					}
				}
			}
		}
	}
	return fromRows(n, n, rows), nil
}

func newGrid(p []float64, L [3]float64, cutoff float64) *grid {
	g := &grid{L: L}
	npoints := len(p) / 3
	var extent [3]float64
	for k := 0; k < 3; k++ {
		if L[k] > 0 {
			extent[k] = L[k]
			continue
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < npoints; i++ {
			lo = math.Min(lo, p[3*i+k])
			hi = math.Max(hi, p[3*i+k])
		}
		g.origin[k] = lo
		extent[k] = hi - lo
	}
	for k := 0; k < 3; k++ {
		g.n[k] = int(extent[k] / cutoff)
		if g.n[k] < 1 {
			g.n[k] = 1
		}
	}
	maxcells := cellsPerPoint*npoints + 27
	for g.n[0]*g.n[1]*g.n[2] > maxcells {
		k := 0
		for j := 1; j < 3; j++ {
			if g.n[j] > g.n[k] {
				k = j
			}
		}
		g.n[k] = (g.n[k] + 1) / 2
	}
	for k := 0; k < 3; k++ {
		g.size[k] = extent[k] / float64(g.n[k])
	}
	g.head = make([]int, g.n[0]*g.n[1]*g.n[2])
	for i := range g.head {
		g.head[i] = -1
	}
	g.next = make([]int, npoints)
	for i := 0; i < npoints; i++ {
		var c [3]int
		for k := 0; k < 3; k++ {
			c[k] = g.cell(k, p[3*i+k])
		}
		ci := g.index(c[0], c[1], c[2])
		g.next[i] = g.head[ci]
		g.head[ci] = i
	}
	return g
}

// cell returns the cell along axis k for the coordinate x.
func (g *grid) cell(k int, x float64) int {
	if g.L[k] > 0 {
		x -= g.L[k] * math.Floor(x/g.L[k])
	} else {
		x -= g.origin[k]
	}
	if g.size[k] <= 0 {
		return 0
	}
	c := int(x / g.size[k])
	if c >= g.n[k] {
		c = g.n[k] - 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

func (g *grid) index(x, y, z int) int {
	return (x*g.n[1]+y)*g.n[2] + z
}

// adjacent returns the distinct cells along axis k that neighbor c, c included,
// wrapping around if the axis is periodic.
func (g *grid) adjacent(k, c int) []int {
	ret := make([]int, 0, 3)
	for o := -1; o <= 1; o++ {
		a := c + o
		if g.L[k] > 0 {
			a = (a + g.n[k]) % g.n[k]
		} else if a < 0 || a >= g.n[k] {
			continue
		}
		dup := false
		for _, v := range ret {
			if v == a {
				dup = true
			}
		}
		if !dup {
			ret = append(ret, a)
		}
	}
	return ret
}

// pairs stores, in both directions, all pairs within cutoff with one point in
// cell c1 and the other in c2.
func (g *grid) pairs(p []float64, c1, c2 int, cutoff float64, rows [][]Entry) {
	for i := g.head[c1]; i >= 0; i = g.next[i] {
		start := g.head[c2]
		if c1 == c2 {
			start = g.next[i]
		}
		for j := start; j >= 0; j = g.next[j] {
			d := pair(p[3*i:3*i+3], p[3*j:3*j+3], g.L)
			if d <= cutoff {
				rows[i] = append(rows[i], Entry{Row: i, Col: j, D: d})
				rows[j] = append(rows[j], Entry{Row: j, Col: i, D: d})
			}
		}
	}
}
