/*
 * gro/gro.go, part of goagg.
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

// Package gro reads GROMACS .gro files, both as a topology (from the first
// frame) and as a multi-frame trajectory. Coordinates and box edges are
// converted from nm to A, times are given in ps.
package gro

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	agg "github.com/rmera/goagg"
	"github.com/rmera/goagg/traj"
	v3 "github.com/rmera/goagg/v3"
)

const (
	format   = "gro"
	nm2A     = 10.0
	defWidth = 8 //default width of a coordinate field
)

// GroR is a .gro trajectory open for reading. It implements agg.Traj and agg.Timer.
type GroR struct {
	f        *os.File
	h        *bufio.Reader
	filename string
	natoms   int
	width    int //width of the coordinate fields, 0 until known
	readable bool
	frame    int     //frames read so far
	nextTime float64 //from the title of the frame to be read
	time     float64 //of the last frame read
	hasTime  bool
}

// New opens the .gro file name for reading, and reads the header of its first frame.
func New(name string) (*GroR, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, traj.NewError(format, name, traj.UnableToOpen+": "+err.Error(), "gro.New")
	}
	G := &GroR{f: f, h: bufio.NewReader(f), filename: name, natoms: -1}
	if err := G.readHeader(); err != nil {
		f.Close()
		if err == io.EOF {
			return nil, traj.NewError(format, name, "Empty file", "gro.New")
		}
		return nil, agg.ErrDecorate(err, "gro.New")
	}
	G.readable = true
	return G, nil
}

// Readable returns true if there are frames left to read.
func (G *GroR) Readable() bool {
	return G.readable
}

// Len returns the number of atoms per frame.
func (G *GroR) Len() int {
	return G.natoms
}

// Time returns the time in ps of the last frame read. If the title of the
// frame has no "t=" field, the frame index is returned.
func (G *GroR) Time() float64 {
	return G.time
}

// Close closes the file. The object can't be used after this.
func (G *GroR) Close() {
	if G.f == nil {
		return
	}
	G.f.Close()
	G.f = nil
	G.readable = false
}

// Next reads the next frame into c, which can be nil to skip the frame, and,
// if given, the box edges into box[0]. The end of the trajectory is signaled
// with an agg.LastFrameError.
func (G *GroR) Next(c *v3.Matrix, box ...[]float64) error {
	var b []float64
	if len(box) > 0 {
		b = box[0]
	}
	return G.next(c, b, nil)
}

func (G *GroR) next(c *v3.Matrix, box []float64, top *agg.Topology) error {
	if !G.readable {
		return traj.NewLastFrameError(format, G.filename, "Next")
	}
	if c != nil && c.NVecs() != G.natoms {
		return traj.NewError(format, G.filename, fmt.Sprintf("Matrix with %d vectors given for %d atoms", c.NVecs(), G.natoms), "Next")
	}
	G.time = float64(G.frame)
	if G.hasTime {
		G.time = G.nextTime
	}
	for i := 0; i < G.natoms; i++ {
		line, err := G.readLine()
		if err != nil {
			return traj.NewError(format, G.filename, fmt.Sprintf("Frame %d truncated at atom %d: %v", G.frame, i, err), "Next")
		}
		if c == nil && top == nil {
			continue
		}
		at, xyz, err := G.parseAtom(line)
		if err != nil {
			return traj.NewError(format, G.filename, fmt.Sprintf("Frame %d, atom %d: %v", G.frame, i, err), "Next")
		}
		if c != nil {
			for j, v := range xyz {
				c.Set(i, j, v)
			}
		}
		if top != nil {
			top.AddAtom(at)
		}
	}
	line, err := G.readLine()
	if err != nil {
		return traj.NewError(format, G.filename, fmt.Sprintf("Frame %d has no box line: %v", G.frame, err), "Next")
	}
	edges, err := parseBox(line)
	if err != nil {
		return traj.NewError(format, G.filename, fmt.Sprintf("Frame %d: %v", G.frame, err), "Next")
	}
	copy(box, edges[:])
	G.frame++
	if err := G.readHeader(); err != nil {
		if err != io.EOF {
			return agg.ErrDecorate(err, "Next")
		}
		G.readable = false
	}
	return nil
}

// readHeader reads the title and atom-count lines of the next frame.
// It returns io.EOF if there are no more frames.
func (G *GroR) readHeader() error {
	title, err := G.readLine()
	for err == nil && strings.TrimSpace(title) == "" {
		title, err = G.readLine() //trailing blank lines
	}
	if err != nil {
		return err
	}
	G.nextTime, G.hasTime = parseTime(title)
	line, err := G.readLine()
	if err != nil {
		return traj.NewError(format, G.filename, fmt.Sprintf("No atom count after title of frame %d", G.frame), "readHeader")
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 0 {
		return traj.NewError(format, G.filename, fmt.Sprintf("Can't read atom count from %q", line), "readHeader")
	}
	if G.natoms >= 0 && n != G.natoms {
		return traj.NewError(format, G.filename, fmt.Sprintf("Frame %d has %d atoms, %d expected", G.frame, n, G.natoms), "readHeader")
	}
	G.natoms = n
	return nil
}

// readLine returns the next line without its line terminator. A last line
// without terminator is returned without error.
func (G *GroR) readLine() (string, error) {
	s, err := G.h.ReadString('\n')
	if err == io.EOF && s != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// parseAtom reads an atom line: residue number, residue name, atom name and
// atom number in 5-character fields, then the coordinates.
func (G *GroR) parseAtom(line string) (*agg.Atom, [3]float64, error) {
	var xyz [3]float64
	if G.width == 0 {
		G.width = fieldWidth(line)
	}
	w := G.width
	if len(line) < 20+3*w {
		return nil, xyz, fmt.Errorf("line too short: %q", line)
	}
	resid, err := strconv.Atoi(strings.TrimSpace(line[0:5]))
	if err != nil {
		return nil, xyz, fmt.Errorf("bad residue number in %q", line)
	}
	id, err := strconv.Atoi(strings.TrimSpace(line[15:20]))
	if err != nil {
		return nil, xyz, fmt.Errorf("bad atom number in %q", line)
	}
	for k := 0; k < 3; k++ {
		field := strings.TrimSpace(line[20+k*w : 20+(k+1)*w])
		xyz[k], err = strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, xyz, fmt.Errorf("bad coordinate %q", field)
		}
		xyz[k] *= nm2A
	}
	name := strings.TrimSpace(line[10:15])
	at := &agg.Atom{
		Name:    name,
		ID:      id,
		MolName: strings.TrimSpace(line[5:10]),
		MolID:   resid,
		Symbol:  symbol(name),
	}
	return at, xyz, nil
}

// fieldWidth returns the width of the coordinate fields, which is the distance
// between the decimal points of 2 consecutive coordinates.
func fieldWidth(line string) int {
	if len(line) <= 20 {
		return defWidth
	}
	p1 := strings.IndexByte(line[20:], '.')
	if p1 < 0 {
		return defWidth
	}
	p2 := strings.IndexByte(line[20+p1+1:], '.')
	if p2 < 0 {
		return defWidth
	}
	return p2 + 1
}

// parseTime returns the value after "t=" in title.
func parseTime(title string) (float64, bool) {
	i := strings.Index(title, "t=")
	if i < 0 {
		return 0, false
	}
	f := strings.Fields(title[i+2:])
	if len(f) == 0 {
		return 0, false
	}
	t, err := strconv.ParseFloat(f[0], 64)
	if err != nil {
		return 0, false
	}
	return t, true
}

// parseBox returns the box edges (the diagonal of the box vectors) in A.
func parseBox(line string) ([3]float64, error) {
	var ret [3]float64
	f := strings.Fields(line)
	if len(f) < 3 {
		return ret, fmt.Errorf("bad box line %q", line)
	}
	for i := range ret {
		v, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return ret, fmt.Errorf("bad box line %q", line)
		}
		ret[i] = v * nm2A
	}
	return ret, nil
}

// symbol guesses the element from an atom name: its first letter.
func symbol(name string) string {
	for _, r := range name {
		if unicode.IsLetter(r) {
			return string(unicode.ToUpper(r))
		}
	}
	return ""
}

// ReadTopology reads the atoms, coordinates and box of the first frame of the
// .gro file name. Each residue is assigned its own molecule.
func ReadTopology(name string) (*agg.Topology, *v3.Matrix, []float64, error) {
	G, err := New(name)
	if err != nil {
		return nil, nil, nil, agg.ErrDecorate(err, "ReadTopology")
	}
	defer G.Close()
	top := agg.NewTopology()
	c := v3.Zeros(G.Len())
	box := make([]float64, 3)
	if err := G.next(c, box, top); err != nil {
		return nil, nil, nil, agg.ErrDecorate(err, "ReadTopology")
	}
	top.ResidueMolecules()
	return top, c, box, nil
}
