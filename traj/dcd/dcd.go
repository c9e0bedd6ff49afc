/*
 * dcd.go, part of goagg.
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

// Package dcd reads and writes CHARMM/NAMD DCD trajectories. Only the
// CHARMM flavor (which NAMD also writes) is supported, without fixed atoms.
// Coordinates and box edges are in A.
package dcd

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	agg "github.com/rmera/goagg"
	"github.com/rmera/goagg/traj"
	v3 "github.com/rmera/goagg/v3"
)

const (
	format   = "dcd"
	maxTitle = 80
	//The time unit of CHARMM (AKMA), in ps
	akma2ps = 0.04888821
	//bytes in the unit cell block: 6 float64
	cellBlock = 48
)

// header is the first record of the file, after its leading size.
type header struct {
	Magic  [4]byte
	ICntrl [20]int32 //ICntrl[9] is a float32
	End    int32
}

// DCDR is a DCD trajectory open for reading. It implements agg.Traj and agg.Timer.
type DCDR struct {
	f        *os.File
	dec      io.ReadCloser
	r        *bufio.Reader
	endian   binary.ByteOrder
	filename string
	natoms   int32
	nset     int32 //frames, as given in the header. Not always reliable.
	istart   int32
	nsavc    int32
	delta    float32 //in AKMA units
	unitCell bool
	fourDim  bool
	fields   [3][]float32
	frame    int //frames read so far
	time     float64
	readable bool
}

// New opens the DCD file name for reading. Files ending in .gz or .zst are
// decompressed on the fly.
func New(name string) (*DCDR, error) {
	D := &DCDR{filename: name}
	var err error
	D.f, err = os.Open(name)
	if err != nil {
		return nil, traj.NewError(format, name, traj.UnableToOpen+": "+err.Error(), "dcd.New")
	}
	D.dec, err = decompressor(name)(D.f)
	if err != nil {
		D.f.Close()
		return nil, traj.NewError(format, name, traj.UnableToOpen+": "+err.Error(), "dcd.New")
	}
	D.r = bufio.NewReader(D.dec)
	if err := D.initRead(); err != nil {
		D.Close()
		return nil, agg.ErrDecorate(err, "dcd.New")
	}
	for i := range D.fields {
		D.fields[i] = make([]float32, D.natoms)
	}
	D.readable = true
	return D, nil
}

func (D *DCDR) wrongFormat(msg, caller string) error {
	return traj.NewError(format, D.filename, traj.WrongFormat+": "+msg, caller)
}

func (D *DCDR) readErr(err error, caller string) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return traj.NewError(format, D.filename, traj.ReadError+": "+err.Error(), caller)
}

// initRead reads the header, figuring out the byte order from its first
// record, which must be 84 bytes long.
func (D *DCDR) initRead() error {
	var lead [4]byte
	if _, err := io.ReadFull(D.r, lead[:]); err != nil {
		return D.readErr(err, "initRead")
	}
	D.endian = binary.LittleEndian
	if binary.LittleEndian.Uint32(lead[:]) != 84 {
		D.endian = binary.BigEndian
		if binary.BigEndian.Uint32(lead[:]) != 84 {
			return D.wrongFormat("not a DCD file", "initRead")
		}
	}
	var h header
	if err := binary.Read(D.r, D.endian, &h); err != nil {
		return D.readErr(err, "initRead")
	}
	if string(h.Magic[:]) != "CORD" {
		return D.wrongFormat("wrong magic number", "initRead")
	}
	if h.End != 84 {
		return D.wrongFormat("bad header record", "initRead")
	}
	//X-plor sets the last value to zero, charmm to its version number.
	if h.ICntrl[19] == 0 {
		return D.wrongFormat("X-plor DCD not supported", "initRead")
	}
	if h.ICntrl[8] != 0 {
		return D.wrongFormat("fixed atoms not supported", "initRead")
	}
	D.nset, D.istart, D.nsavc = h.ICntrl[0], h.ICntrl[1], h.ICntrl[2]
	D.delta = math.Float32frombits(uint32(h.ICntrl[9]))
	D.unitCell = h.ICntrl[10] != 0
	D.fourDim = h.ICntrl[11] == 1

	//title
	var size, ntitle int32
	if err := D.read(&size, &ntitle); err != nil {
		return D.readErr(err, "initRead")
	}
	if ntitle < 0 || size != 4+maxTitle*ntitle {
		return D.wrongFormat("bad title record", "initRead")
	}
	if _, err := D.r.Discard(int(maxTitle * ntitle)); err != nil {
		return D.readErr(err, "initRead")
	}
	if err := D.check(size, "initRead"); err != nil {
		return err
	}
	//number of atoms
	if err := D.read(&size, &D.natoms); err != nil {
		return D.readErr(err, "initRead")
	}
	if size != 4 || D.natoms < 0 {
		return D.wrongFormat("bad atom number record", "initRead")
	}
	return D.check(4, "initRead")
}

func (D *DCDR) read(data ...any) error {
	for _, d := range data {
		if err := binary.Read(D.r, D.endian, d); err != nil {
			return err
		}
	}
	return nil
}

// check reads the size that closes a record, and compares it with the
// one that opened it.
func (D *DCDR) check(size int32, caller string) error {
	var end int32
	if err := D.read(&end); err != nil {
		return D.readErr(err, caller)
	}
	if end != size {
		return D.wrongFormat(fmt.Sprintf("record closed with size %d, %d expected", end, size), caller)
	}
	return nil
}

// Readable returns true if there are frames left to read.
func (D *DCDR) Readable() bool {
	return D.readable
}

// Len returns the number of atoms per frame.
func (D *DCDR) Len() int {
	return int(D.natoms)
}

// Frames returns the number of frames declared in the header.
func (D *DCDR) Frames() int {
	return int(D.nset)
}

// Time returns the time in ps of the last frame read. If the file gives no
// time step, the frame index is returned.
func (D *DCDR) Time() float64 {
	return D.time
}

// Next reads the next frame into c, which can be nil to skip the frame, and,
// if the file has a unit cell and box is given, the box edges into box[0].
// The end of the trajectory is signaled with an agg.LastFrameError.
func (D *DCDR) Next(c *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return traj.NewError(format, D.filename, traj.TrajUnIniRead, "Next")
	}
	var size int32
	if err := D.read(&size); err != nil {
		D.readable = false
		if errors.Is(err, io.EOF) {
			return traj.NewLastFrameError(format, D.filename, "Next")
		}
		return D.readErr(err, "Next")
	}
	var cell [6]float64
	hasCell := false
	//Some programs write the unit cell flag but not the cell in every frame,
	//in which case this record is already the X block.
	if D.unitCell && size == cellBlock {
		if err := D.read(&cell); err != nil {
			return D.readErr(err, "Next")
		}
		if err := D.check(size, "Next"); err != nil {
			return err
		}
		hasCell = true
		if err := D.read(&size); err != nil {
			return D.readErr(err, "Next")
		}
	}
	for k := 0; k < 3; k++ {
		if k > 0 {
			if err := D.read(&size); err != nil {
				return D.readErr(err, "Next")
			}
		}
		if size != 4*D.natoms {
			return D.wrongFormat(fmt.Sprintf("coordinate block of %d bytes for %d atoms", size, D.natoms), "Next")
		}
		if err := D.read(D.fields[k]); err != nil {
			return D.readErr(err, "Next")
		}
		if err := D.check(size, "Next"); err != nil {
			return err
		}
	}
	if D.fourDim {
		if err := D.skipBlock(); err != nil {
			return err
		}
	}
	D.frame++
	D.time = float64(D.frame - 1)
	if D.nsavc > 0 && D.delta > 0 {
		D.time = float64(D.istart+int32(D.frame-1)*D.nsavc) * float64(D.delta) * akma2ps
	}
	if c != nil {
		if c.NVecs() != int(D.natoms) {
			return traj.NewError(format, D.filename, fmt.Sprintf("Matrix with %d vectors for %d atoms", c.NVecs(), D.natoms), "Next")
		}
		for i := 0; i < int(D.natoms); i++ {
			for k := 0; k < 3; k++ {
				c.Set(i, k, float64(D.fields[k][i]))
			}
		}
	}
	if hasCell && len(box) > 0 && len(box[0]) >= 3 {
		//A, gamma, B, beta, alpha, C
		box[0][0], box[0][1], box[0][2] = cell[0], cell[2], cell[5]
	}
	return nil
}

// skipBlock discards a record. The last frame may lack it.
func (D *DCDR) skipBlock() error {
	var size int32
	if err := D.read(&size); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return D.readErr(err, "skipBlock")
	}
	if _, err := D.r.Discard(int(size)); err != nil {
		return D.readErr(err, "skipBlock")
	}
	return D.check(size, "skipBlock")
}

// Close closes the file. The object can't be used after this.
func (D *DCDR) Close() {
	if D.f == nil {
		return
	}
	if D.dec != nil {
		D.dec.Close()
	}
	D.f.Close()
	D.f = nil
	D.readable = false
}
