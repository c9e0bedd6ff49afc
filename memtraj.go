/*
 * memtraj.go, part of goagg.
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

package agg

import (
	"fmt"

	v3 "github.com/rmera/goagg/v3"
)

// MemTraj is a trajectory held in memory. It implements Traj and Timer.
type MemTraj struct {
	Frames []*v3.Matrix
	Boxes  [][]float64 //optional, one per frame
	Times  []float64   //optional, one per frame
	natoms int
	curr   int
	time   float64
}

// NewMemTraj returns a MemTraj with the given frames, which must all have the
// same number of vectors. boxes and times can be nil.
func NewMemTraj(frames []*v3.Matrix, boxes [][]float64, times []float64) (*MemTraj, error) {
	M := &MemTraj{Frames: frames, Boxes: boxes, Times: times, natoms: -1}
	for i, f := range frames {
		if M.natoms < 0 {
			M.natoms = f.NVecs()
		}
		if f.NVecs() != M.natoms {
			return nil, NewError(fmt.Sprintf("Frame %d has %d atoms, %d expected", i, f.NVecs(), M.natoms), "NewMemTraj")
		}
	}
	if boxes != nil && len(boxes) != len(frames) {
		return nil, NewError("Number of boxes and frames differ", "NewMemTraj")
	}
	if times != nil && len(times) != len(frames) {
		return nil, NewError("Number of times and frames differ", "NewMemTraj")
	}
	if M.natoms < 0 {
		M.natoms = 0
	}
	return M, nil
}

func (M *MemTraj) Readable() bool {
	return M.curr < len(M.Frames)
}

func (M *MemTraj) Len() int {
	return M.natoms
}

// Time returns the time of the last frame read, or its index if no times were given.
func (M *MemTraj) Time() float64 {
	return M.time
}

// Next copies the next frame into output, and the box into box[0], if given.
func (M *MemTraj) Next(output *v3.Matrix, box ...[]float64) error {
	if !M.Readable() {
		return newLastFrameError("", "MemTraj.Next")
	}
	i := M.curr
	M.curr++
	if M.Times != nil {
		M.time = M.Times[i]
	} else {
		M.time = float64(i)
	}
	if output != nil {
		if output.NVecs() != M.natoms {
			return NewError(fmt.Sprintf("Output matrix has %d vectors, %d expected", output.NVecs(), M.natoms), "MemTraj.Next")
		}
		if M.natoms > 0 {
			output.Copy(M.Frames[i])
		}
	}
	if len(box) > 0 && M.Boxes != nil {
		copy(box[0], M.Boxes[i])
	}
	return nil
}
