/*
 * sparse.go, part of goagg.
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
	"fmt"
	"math"
	"sort"

	agg "github.com/rmera/goagg"
)

// Entry is one stored element of a sparse matrix.
type Entry struct {
	Row, Col int
	D        float64
}

// Sparse is a distance matrix in compressed sparse row format. Only the
// pairs within some cutoff are stored; the diagonal is not stored.
// Row i holds the columns Indices[Indptr[i]:Indptr[i+1]], in ascending
// order, with the distances in the same positions of Data.
type Sparse struct {
	R, C    int
	Indptr  []int
	Indices []int
	Data    []float64
}

// NewSparse builds an r x c Sparse from a list of entries. Entries on the
// diagonal are dropped, and repeated entries keep the last value.
func NewSparse(r, c int, entries []Entry) (*Sparse, error) {
	rows := make([][]Entry, r)
	for _, e := range entries {
		if e.Row < 0 || e.Row >= r || e.Col < 0 || e.Col >= c {
			return nil, agg.NewError(fmt.Sprintf("Entry (%d,%d) out of a %dx%d matrix", e.Row, e.Col, r, c), "NewSparse")
		}
		if e.Row == e.Col {
			continue
		}
		rows[e.Row] = append(rows[e.Row], e)
	}
	return fromRows(r, c, rows), nil
}

func fromRows(r, c int, rows [][]Entry) *Sparse {
	S := &Sparse{R: r, C: c, Indptr: make([]int, r+1)}
	nnz := 0
	for _, row := range rows {
		nnz += len(row)
	}
	S.Indices = make([]int, 0, nnz)
	S.Data = make([]float64, 0, nnz)
	for i, row := range rows {
		sort.SliceStable(row, func(a, b int) bool { return row[a].Col < row[b].Col })
		for k, e := range row {
			if k+1 < len(row) && row[k+1].Col == e.Col {
				continue //repeated, the last one wins
			}
			S.Indices = append(S.Indices, e.Col)
			S.Data = append(S.Data, e.D)
		}
		S.Indptr[i+1] = len(S.Indices)
	}
	return S
}

func (S *Sparse) Dims() (int, int) {
	return S.R, S.C
}

// NNZ returns the number of stored elements.
func (S *Sparse) NNZ() int {
	return len(S.Data)
}

// Row returns the columns and distances stored for row i. The slices
// are views of the matrix data and must not be modified.
func (S *Sparse) Row(i int) ([]int, []float64) {
	a, b := S.Indptr[i], S.Indptr[i+1]
	return S.Indices[a:b], S.Data[a:b]
}

// At returns the distance between i and j: 0 on the diagonal, +Inf if the pair is not stored.
func (S *Sparse) At(i, j int) float64 {
	if i < 0 || i >= S.R || j < 0 || j >= S.C {
		panic("goagg/dist: index out of range")
	}
	if i == j {
		return 0
	}
	cols, data := S.Row(i)
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return data[k]
	}
	return math.Inf(1)
}

// Neighbors implements Matrix. The point itself is always a neighbor.
func (S *Sparse) Neighbors(i int, eps float64, dst []int) []int {
	dst = dst[:0]
	cols, data := S.Row(i)
	self := false
	for k, j := range cols {
		if !self && j > i {
			dst = append(dst, i)
			self = true
		}
		if data[k] <= eps {
			dst = append(dst, j)
		}
	}
	if !self {
		dst = append(dst, i)
	}
	return dst
}
