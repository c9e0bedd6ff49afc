/*
 * gyration.go, part of goagg.
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
	"math"

	agg "github.com/rmera/goagg"
	"github.com/rmera/goagg/dist"
	v3 "github.com/rmera/goagg/v3"
)

// RadiusOfGyration returns the radius of gyration of the points in coords,
// with all points weighted equally and distances taken with the minimum image
// convention if box is periodic: sqrt(sum_ij d_ij^2 / 2N^2).
func RadiusOfGyration(coords *v3.Matrix, box []float64) (float64, error) {
	D, err := dist.DenseMatrix(coords, box)
	if err != nil {
		return 0, errDecorate(err, "RadiusOfGyration")
	}
	n, _ := D.Dims()
	if n == 0 {
		return 0, nil
	}
	var sum float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := D.At(i, j)
			sum += d * d
		}
	}
	//the sum above covers i<j only, half of sum_ij.
	return math.Sqrt(sum / float64(n*n)), nil
}

// Gyration returns the radius of gyration of each cluster, taking the positions
// of the atoms from coords, which must contain the whole system (clusters hold
// global ids).
func (F *Frame) Gyration(coords *v3.Matrix, box []float64) ([]float64, error) {
	ret := make([]float64, 0, F.NClusters)
	for i := range F.ClusterIDs {
		sel, err := agg.NewSelection(coords, F.Cluster(i))
		if err != nil {
			return nil, errDecorate(err, "Frame.Gyration")
		}
		rg, err := RadiusOfGyration(sel.Coords, box)
		if err != nil {
			return nil, errDecorate(err, "Frame.Gyration")
		}
		ret = append(ret, rg)
	}
	return ret, nil
}
