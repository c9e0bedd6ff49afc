/*
 * top/top.go, part of goagg.
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

// Package top reads the molecule definitions of GROMACS topologies (.top/.itp),
// which tell which atoms of a system belong to which molecule.
package top

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	agg "github.com/rmera/goagg"
	"go.uber.org/zap"
)

// AtomEntry is a line of the [ atoms ] section of a molecule type.
type AtomEntry struct {
	ID      int
	Type    string
	ResNr   int
	ResName string
	Name    string
	Charge  float64
	Mass    float64 //0 if not given
}

// MolType is a molecule type, from a [ moleculetype ] section.
type MolType struct {
	Name  string
	Atoms []AtomEntry
}

// MolCount is a line of the [ molecules ] section.
type MolCount struct {
	Name  string
	Count int
}

// Topology contains the molecule types defined in a topology and the
// composition of the system.
type Topology struct {
	Types     map[string]*MolType
	Molecules []MolCount //in system order
}

// NAtoms returns the number of atoms in the system.
func (T *Topology) NAtoms() (int, error) {
	n := 0
	for _, m := range T.Molecules {
		t, ok := T.Types[m.Name]
		if !ok {
			return 0, fmt.Errorf("molecule type %s not defined", m.Name)
		}
		n += m.Count * len(t.Atoms)
	}
	return n, nil
}

type cond struct {
	reading []bool //one per nested #ifdef
}

// read returns true if line is to be read, given the defined flags.
// It also processes the conditional directives.
func (c *cond) read(line string, defines []string) bool {
	f := strings.Fields(line)
	switch f[0] {
	case "#ifdef", "#ifndef":
		def := len(f) > 1 && slices.Contains(defines, f[1])
		c.reading = append(c.reading, def == (f[0] == "#ifdef"))
		return false
	case "#else":
		if n := len(c.reading); n > 0 {
			c.reading[n-1] = !c.reading[n-1]
		}
		return false
	case "#endif":
		if n := len(c.reading); n > 0 {
			c.reading = c.reading[:n-1]
		}
		return false
	}
	return !slices.Contains(c.reading, false)
}

// Returns a string without gromacs comments (sequences starting with ';'),
// trailing and leading spaces, tabs and newlines
func cleanString(s string) string {
	f := strings.Split(s, ";")[0]
	return strings.Trim(f, "\r\n\t ")
}

// header returns the name of the section if s is a section header.
func header(s string) (string, bool) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return "", false
	}
	return strings.TrimSpace(s[1 : len(s)-1]), true
}

type reader struct {
	T       *Topology
	current *MolType
	section string
	cond    cond
	defines []string
}

// ReadMolecules reads the GROMACS topology name. #include directives are
// followed if the included file exists relative to the including file, and
// skipped otherwise (force-field files usually live elsewhere). The names in
// defines are taken as defined for #ifdef directives.
func ReadMolecules(name string, defines ...string) (*Topology, error) {
	r := &reader{T: &Topology{Types: make(map[string]*MolType)}, defines: defines}
	if err := r.file(name, 0); err != nil {
		return nil, agg.ErrDecorate(err, "ReadMolecules")
	}
	return r.T, nil
}

const maxIncludeDepth = 16

func (r *reader) file(name string, depth int) error {
	if depth > maxIncludeDepth {
		return agg.NewError("Too many nested includes", "top.file").InFile(name)
	}
	f, err := os.Open(name)
	if err != nil {
		return agg.WrapError(err, "top.file").InFile(name)
	}
	defer f.Close()
	if err := r.fill(bufio.NewReader(f), filepath.Dir(name), depth); err != nil {
		if e, ok := err.(*agg.CError); ok && e.FileName() == "" {
			e.InFile(name)
		}
		return err
	}
	return nil
}

func (r *reader) fill(in *bufio.Reader, dir string, depth int) error {
	var err error
	var s string
	lineno := 0
	for s, err = in.ReadString('\n'); err == nil || (errors.Is(err, io.EOF) && s != ""); s, err = in.ReadString('\n') {
		lineno++
		s = cleanString(s)
		if s == "" {
			if err != nil {
				break
			}
			continue
		}
		if !r.cond.read(s, r.defines) {
			continue
		}
		if strings.HasPrefix(s, "#include") {
			fl := strings.Fields(s)
			incl := strings.Trim(fl[len(fl)-1], "\"'<>")
			if !filepath.IsAbs(incl) {
				incl = filepath.Join(dir, incl)
			}
			if _, serr := os.Stat(incl); serr != nil {
				zap.L().Debug("skipping include", zap.String("file", incl), zap.Error(serr))
				continue
			}
			if ierr := r.file(incl, depth+1); ierr != nil {
				return ierr
			}
			continue
		}
		if strings.HasPrefix(s, "#") {
			continue //#define and friends
		}
		if h, ok := header(s); ok {
			r.section = h
			continue
		}
		if perr := r.line(s); perr != nil {
			return agg.NewError(fmt.Sprintf("Line %d, section %s: %v", lineno, r.section, perr), "top.fill")
		}
		if err != nil {
			break
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return agg.WrapError(err, "top.fill")
	}
	return nil
}

func (r *reader) line(s string) error {
	f := strings.Fields(s)
	switch r.section {
	case "moleculetype":
		r.current = &MolType{Name: f[0]}
		r.T.Types[f[0]] = r.current
	case "atoms":
		if r.current == nil {
			return fmt.Errorf("atoms outside a moleculetype")
		}
		at, err := atomEntry(f)
		if err != nil {
			return err
		}
		r.current.Atoms = append(r.current.Atoms, at)
	case "molecules":
		if len(f) < 2 {
			return fmt.Errorf("ill-formatted molecules line: %s", s)
		}
		n, err := strconv.Atoi(f[1])
		if err != nil || n < 0 {
			return fmt.Errorf("ill-formatted molecules line: %s", s)
		}
		r.T.Molecules = append(r.T.Molecules, MolCount{Name: f[0], Count: n})
	}
	return nil
}

// atomEntry parses the fields of an atoms line:
// id type resnr resname name cgnr [charge [mass]]
func atomEntry(f []string) (AtomEntry, error) {
	var at AtomEntry
	var err error
	if len(f) < 5 {
		return at, fmt.Errorf("ill-formatted atoms line: %v", f)
	}
	if at.ID, err = strconv.Atoi(f[0]); err != nil {
		return at, fmt.Errorf("bad atom id %s", f[0])
	}
	if at.ResNr, err = strconv.Atoi(f[2]); err != nil {
		return at, fmt.Errorf("bad residue number %s", f[2])
	}
	at.Type, at.ResName, at.Name = f[1], f[3], f[4]
	if len(f) > 6 {
		if at.Charge, err = strconv.ParseFloat(f[6], 64); err != nil {
			return at, fmt.Errorf("bad charge %s", f[6])
		}
	}
	if len(f) > 7 {
		if at.Mass, err = strconv.ParseFloat(f[7], 64); err != nil {
			return at, fmt.Errorf("bad mass %s", f[7])
		}
	}
	return at, nil
}

// AssignMolecules sets the Molecule of each atom of top (and its mass, if
// the topology gives one) following the composition of mols. The atoms of top
// must be in the same order as in mols, and their number must match.
func AssignMolecules(top *agg.Topology, mols *Topology) error {
	n, err := mols.NAtoms()
	if err != nil {
		return agg.WrapError(err, "AssignMolecules")
	}
	if n != top.Len() {
		return agg.NewError(fmt.Sprintf("Topology has %d atoms, structure has %d", n, top.Len()), "AssignMolecules")
	}
	i, mol := 0, 0
	for _, m := range mols.Molecules {
		t := mols.Types[m.Name]
		for c := 0; c < m.Count; c++ {
			for _, e := range t.Atoms {
				at := top.Atom(i)
				at.Molecule = mol
				if e.Mass > 0 {
					at.Mass = e.Mass
				}
				i++
			}
			mol++
		}
	}
	return nil
}
