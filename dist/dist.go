/*
 * dist.go, part of goagg.
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

	agg "github.com/rmera/goagg"
	v3 "github.com/rmera/goagg/v3"
	"gonum.org/v1/gonum/mat"
)

// Mode selects the kind of distance representation to build.
type Mode int

const (
	ModeDense    Mode = iota //all N^2 distances
	ModeCellGrid             //only pairs within the cutoff, via a cell grid
)

func (m Mode) String() string {
	switch m {
	case ModeDense:
		return "dense"
	case ModeCellGrid:
		return "cellgrid"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Matrix is a pairwise-distance representation for N points.
type Matrix interface {
	//Dims returns the number of rows and columns. Both should equal the number of points.
	Dims() (r, c int)

	//At returns the distance between i and j. Pairs absent from a sparse
	//representation are +Inf.
	At(i, j int) float64

	//Neighbors appends to dst[:0], in ascending order, the indexes j such that
	//At(i,j)<=eps, including i itself, and returns the resulting slice.
	Neighbors(i int, eps float64, dst []int) []int
}

// Options for the distance calculation.
type Options struct {
	cutoff float64
	mode   Mode
}

// DefaultOptions returns Options for a dense matrix and a 10 A cutoff.
func DefaultOptions() *Options {
	return &Options{cutoff: 10, mode: ModeDense}
}

// Cutoff returns the cutoff, and sets it to a new value, if given and positive.
func (O *Options) Cutoff(cutoff ...float64) float64 {
	if len(cutoff) > 0 && cutoff[0] > 0 {
		O.cutoff = cutoff[0]
	}
	return O.cutoff
}

// Mode returns the distance mode, and sets it to a new value, if given.
func (O *Options) Mode(mode ...Mode) Mode {
	if len(mode) > 0 {
		O.mode = mode[0]
	}
	return O.mode
}

// Build computes the distance representation for coords in the box, following
// the options given (or DefaultOptions).
func Build(coords *v3.Matrix, box []float64, options ...*Options) (Matrix, error) {
	o := DefaultOptions()
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	}
	switch o.mode {
	case ModeDense:
		d, err := DenseMatrix(coords, box)
		if err != nil {
			return nil, agg.ErrDecorate(err, "Build")
		}
		return d, nil
	case ModeCellGrid:
		s, err := CellGrid(coords, box, o.cutoff)
		if err != nil {
			return nil, agg.ErrDecorate(err, "Build")
		}
		return s, nil
	}
	return nil, agg.NewError(fmt.Sprintf("Unknown distance mode %v", o.mode), "Build")
}

// Periodic returns true if box describes a periodic box.
func Periodic(box []float64) bool {
	if len(box) < 3 {
		return false
	}
	for _, v := range box[:3] {
		if v <= 0 {
			return false
		}
	}
	return true
}

// MinImage returns the component d of a distance vector, folded
// into [-L/2,L/2] if L>0.
func MinImage(d, L float64) float64 {
	if L <= 0 {
		return d
	}
	return d - L*math.Round(d/L)
}

// Pair returns the minimum-image distance between the ith and jth vectors of coords.
func Pair(coords *v3.Matrix, i, j int, box []float64) float64 {
	var a, b [3]float64
	for k := 0; k < 3; k++ {
		a[k] = coords.At(i, k)
		b[k] = coords.At(j, k)
	}
	return pair(a[:], b[:], boxEdges(box))
}

func pair(a, b []float64, L [3]float64) float64 {
	var sq float64
	for k := 0; k < 3; k++ {
		d := MinImage(a[k]-b[k], L[k])
		sq += d * d
	}
	return math.Sqrt(sq)
}

// boxEdges returns the box edges, or zeros if box is not periodic.
func boxEdges(box []float64) [3]float64 {
	var L [3]float64
	if Periodic(box) {
		copy(L[:], box[:3])
	}
	return L
}

func checkInput(coords *v3.Matrix, box []float64, caller string) error {
	if coords == nil {
		return agg.NewError("Given nil coordinates", caller)
	}
	if box != nil && len(box) < 3 {
		return agg.NewError(fmt.Sprintf("Box needs 3 edge lengths, got %d", len(box)), caller)
	}
	return nil
}

// flatten copies the coordinates into a row-major slice.
func flatten(coords *v3.Matrix) []float64 {
	n := coords.NVecs()
	ret := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		coords.Vec(ret[3*i:3*i+3], i)
	}
	return ret
}

// Dense is a dense, symmetric distance matrix.
type Dense struct {
	*mat.SymDense
}

// DenseMatrix returns all the minimum-image distances between the vectors in coords.
func DenseMatrix(coords *v3.Matrix, box []float64) (*Dense, error) {
	if err := checkInput(coords, box, "DenseMatrix"); err != nil {
		return nil, err
	}
	n := coords.NVecs()
	if n == 0 {
		return &Dense{}, nil
	}
	L := boxEdges(box)
	p := flatten(coords)
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s.SetSym(i, j, pair(p[3*i:3*i+3], p[3*j:3*j+3], L))
		}
	}
	return &Dense{s}, nil
}

// Dims returns the dimensions of the matrix. An empty Dense is 0x0.
func (D *Dense) Dims() (int, int) {
	if D.SymDense == nil {
		return 0, 0
	}
	return D.SymDense.Dims()
}

// Neighbors implements Matrix.
func (D *Dense) Neighbors(i int, eps float64, dst []int) []int {
	dst = dst[:0]
	_, c := D.Dims()
	for j := 0; j < c; j++ {
		if j == i || D.At(i, j) <= eps {
			dst = append(dst, j)
		}
	}
	return dst
}
