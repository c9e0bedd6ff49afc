/*
 * dcd_write.go, part of goagg.
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

package dcd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rmera/goagg/traj"
	v3 "github.com/rmera/goagg/v3"
)

// DCDW is a DCD trajectory open for writing. The file is little-endian,
// CHARMM-flavored, and only complete after Close, which writes the number
// of frames in the header.
type DCDW struct {
	f        *os.File
	w        *bufio.Writer
	filename string
	natoms   int32
	frames   int32
	unitCell bool
	fields   [3][]float32
	writable bool
}

// NewWriter creates the DCD file name for frames of natoms atoms, dt ps
// apart. If unitCell is true, every frame must be written with its box.
func NewWriter(name string, natoms int, dt float64, unitCell bool) (*DCDW, error) {
	if natoms <= 0 {
		return nil, traj.NewError(format, name, fmt.Sprintf("Can't write frames of %d atoms", natoms), "dcd.NewWriter")
	}
	if !(dt > 0) {
		return nil, traj.NewError(format, name, fmt.Sprintf("Time step must be positive, got %v", dt), "dcd.NewWriter")
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, traj.NewError(format, name, traj.UnableToOpen+": "+err.Error(), "dcd.NewWriter")
	}
	D := &DCDW{f: f, w: bufio.NewWriter(f), filename: name, natoms: int32(natoms), unitCell: unitCell}
	for i := range D.fields {
		D.fields[i] = make([]float32, natoms)
	}
	if err := D.initWrite(dt); err != nil {
		f.Close()
		return nil, err
	}
	D.writable = true
	return D, nil
}

func (D *DCDW) write(data ...any) error {
	for _, d := range data {
		if err := binary.Write(D.w, binary.LittleEndian, d); err != nil {
			return traj.NewError(format, D.filename, err.Error(), "write")
		}
	}
	return nil
}

func (D *DCDW) initWrite(dt float64) error {
	h := header{End: 84}
	copy(h.Magic[:], "CORD")
	//frames (0 until Close), first step and steps between frames
	h.ICntrl[0], h.ICntrl[1], h.ICntrl[2] = 0, 0, 1
	h.ICntrl[9] = int32(math.Float32bits(float32(dt / akma2ps)))
	if D.unitCell {
		h.ICntrl[10] = 1
	}
	h.ICntrl[19] = 24 //CHARMM version
	title := make([]byte, 2*maxTitle)
	for i := range title {
		title[i] = ' '
	}
	copy(title, "Created by goagg")
	return D.write(
		int32(84), &h,
		int32(4+2*maxTitle), int32(2), title, int32(4+2*maxTitle),
		int32(4), D.natoms, int32(4),
	)
}

// WNext writes coord as the next frame. If the file has a unit cell, box
// must have the 3 box edges.
func (D *DCDW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return traj.NewError(format, D.filename, traj.TrajUnIniWrite, "WNext")
	}
	if coord == nil {
		return traj.NewError(format, D.filename, traj.NilCoordinates, "WNext")
	}
	if coord.NVecs() != int(D.natoms) {
		return traj.NewError(format, D.filename, fmt.Sprintf("Matrix with %d vectors for %d atoms", coord.NVecs(), D.natoms), "WNext")
	}
	if D.unitCell {
		if len(box) == 0 || len(box[0]) < 3 {
			return traj.NewError(format, D.filename, "The trajectory needs a box for each frame", "WNext")
		}
		b := box[0]
		cell := [6]float64{b[0], 90, b[1], 90, 90, b[2]}
		if err := D.write(int32(cellBlock), &cell, int32(cellBlock)); err != nil {
			return err
		}
	}
	for i := 0; i < int(D.natoms); i++ {
		for k := 0; k < 3; k++ {
			D.fields[k][i] = float32(coord.At(i, k))
		}
	}
	size := 4 * D.natoms
	for k := range D.fields {
		if err := D.write(size, D.fields[k], size); err != nil {
			return err
		}
	}
	D.frames++
	return nil
}

// Len returns the number of atoms per frame.
func (D *DCDW) Len() int {
	return int(D.natoms)
}

// Close flushes the data, writes the number of frames in the header and
// closes the file.
func (D *DCDW) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	err := D.finish()
	if cerr := D.f.Close(); cerr != nil && err == nil {
		err = traj.NewError(format, D.filename, cerr.Error(), "Close")
	}
	return err
}

func (D *DCDW) finish() error {
	if err := D.w.Flush(); err != nil {
		return traj.NewError(format, D.filename, err.Error(), "Close")
	}
	//the frame count goes right after the magic number
	if _, err := D.f.Seek(8, io.SeekStart); err != nil {
		return traj.NewError(format, D.filename, err.Error(), "Close")
	}
	if err := binary.Write(D.f, binary.LittleEndian, D.frames); err != nil {
		return traj.NewError(format, D.filename, err.Error(), "Close")
	}
	return nil
}
