/*
 * topology.go, part of goagg.
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

// Atom contains the information of an atom, except for the coordinates,
// which live in a v3.Matrix.
type Atom struct {
	Name     string
	ID       int //1-based serial, as read from the file
	index    int //0-based position in the topology
	MolName  string
	MolID    int //residue number, as read from the file
	Residue  int //0-based index of the residue, unique in the topology
	Chain    string
	Molecule int //0-based index of the molecule the atom belongs to
	Mass     float64
	Symbol   string
}

// Index returns the position of the atom in its topology.
func (A *Atom) Index() int {
	return A.index
}

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	ret := *A
	return &ret
}

// Topology contains the ordered atoms of a system.
type Topology struct {
	Atoms []*Atom
}

// NewTopology returns a topology containing the given atoms. The atoms' indexes
// are set to their position in the slice.
func NewTopology(ats ...*Atom) *Topology {
	T := &Topology{Atoms: make([]*Atom, 0, len(ats))}
	for _, a := range ats {
		T.AddAtom(a)
	}
	return T
}

// AddAtom appends at to the topology, setting its index.
func (T *Topology) AddAtom(at *Atom) {
	at.index = len(T.Atoms)
	T.Atoms = append(T.Atoms, at)
}

// Atom returns the ith atom. Panics if out of range.
func (T *Topology) Atom(i int) *Atom {
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// Select returns the indexes, in topology order, of the atoms matched by query.
// See ParseQuery for the syntax.
func (T *Topology) Select(query string) ([]int, error) {
	q, err := ParseQuery(query)
	if err != nil {
		return nil, ErrDecorate(err, "Topology.Select")
	}
	ret := make([]int, 0, 64)
	for i, at := range T.Atoms {
		if q(at) {
			ret = append(ret, i)
		}
	}
	return ret, nil
}

// NumberResidues sets the Residue index of every atom. A new residue starts
// wherever MolID or MolName change, so residue numbers that wrap around or
// repeat further down the file still give distinct residues.
func (T *Topology) NumberResidues() {
	res := -1
	prevID, prevName := 0, ""
	for i, at := range T.Atoms {
		if i == 0 || at.MolID != prevID || at.MolName != prevName {
			res++
			prevID, prevName = at.MolID, at.MolName
		}
		at.Residue = res
	}
}

// ResidueMolecules numbers the residues of the topology and makes each of
// them its own molecule.
func (T *Topology) ResidueMolecules() {
	T.NumberResidues()
	for _, at := range T.Atoms {
		at.Molecule = at.Residue
	}
}

// Selection is an ordered set of atoms, given by their indexes in a topology,
// with their coordinates for one frame.
type Selection struct {
	Indices []int
	Coords  *v3.Matrix
}

// NewSelection copies the vectors in indices from coords into a new Selection.
func NewSelection(coords *v3.Matrix, indices []int) (*Selection, error) {
	c := v3.Zeros(len(indices))
	if err := c.SomeVecsSafe(coords, indices); err != nil {
		return nil, ErrDecorate(err, "NewSelection")
	}
	return &Selection{Indices: indices, Coords: c}, nil
}

// Len returns the number of atoms in the selection.
func (S *Selection) Len() int {
	if S == nil {
		return 0
	}
	return len(S.Indices)
}

// ID returns the global index of the atom in the ith position of the selection.
func (S *Selection) ID(i int) int {
	return S.Indices[i]
}

// Corrupted is a convenience function to check that a reference and a trajectory have the same number of atoms
func Corrupted(R Atomer, X Traj) error {
	if X.Len() != R.Len() {
		return NewError(fmt.Sprintf("Mismatched number of atoms/coordinates: %d topology, %d trajectory", R.Len(), X.Len()), "Corrupted")
	}
	return nil
}

func isInInt(container []int, test int) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
