/*
 * grouping.go, part of goagg.
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
	"fmt"
	"strings"

	agg "github.com/rmera/goagg"
)

// Grouping is the unit by which clusters can be completed or counted.
type Grouping int

const (
	Atom Grouping = iota
	Residue
	Molecule
)

// ParseGrouping returns the Grouping named by s: atom, res/residue or mol/molecule.
func ParseGrouping(s string) (Grouping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "atom":
		return Atom, nil
	case "res", "residue":
		return Residue, nil
	case "mol", "molecule":
		return Molecule, nil
	}
	return Atom, agg.NewError(fmt.Sprintf("Unknown grouping %q, use atom, res or mol", s), "ParseGrouping")
}

func (g Grouping) String() string {
	switch g {
	case Atom:
		return "atom"
	case Residue:
		return "res"
	case Molecule:
		return "mol"
	}
	return fmt.Sprintf("Grouping(%d)", int(g))
}

// Key returns the value that identifies the group of at.
func (g Grouping) Key(at *agg.Atom) int {
	switch g {
	case Residue:
		return at.Residue
	case Molecule:
		return at.Molecule
	}
	return at.Index()
}

// KeySet returns the set of keys of the atoms with the given indexes in top.
func (g Grouping) KeySet(top agg.Atomer, indexes []int) map[int]bool {
	ret := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		ret[g.Key(top.Atom(i))] = true
	}
	return ret
}

// Expand returns the indexes, in topology order, of all atoms in top whose key
// is in keys.
func (g Grouping) Expand(top agg.Atomer, keys map[int]bool) []int {
	ret := make([]int, 0, len(keys))
	for i := 0; i < top.Len(); i++ {
		if keys[g.Key(top.Atom(i))] {
			ret = append(ret, i)
		}
	}
	return ret
}
