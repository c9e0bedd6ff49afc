/*
 * query.go, part of goagg.
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
	"strconv"
	"strings"
)

// Query reports whether an atom is part of a selection.
type Query func(*Atom) bool

// ResnameQuery builds the query that selects every atom whose residue name
// is one of names, i.e. "resname A or resname B ...".
func ResnameQuery(names []string) string {
	terms := make([]string, 0, len(names))
	for _, n := range names {
		terms = append(terms, "resname "+n)
	}
	return strings.Join(terms, " or ")
}

// ParseQuery compiles a selection query. A query is one or more terms joined
// by "or". Each term is a keyword followed by one or more values:
//
//	resname SOL NA     residue name
//	name C1 C2         atom name
//	resid 1 5 7        residue number
//	molecule 0 3       molecule index
//	all
//
// An atom is selected if any term matches it.
func ParseQuery(query string) (Query, error) {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil, NewError("Empty selection query", "ParseQuery")
	}
	terms := make([]Query, 0, 2)
	for i := 0; i < len(fields); {
		key := strings.ToLower(fields[i])
		i++
		values := make([]string, 0, 1)
		for ; i < len(fields) && strings.ToLower(fields[i]) != "or"; i++ {
			values = append(values, fields[i])
		}
		if i < len(fields) {
			i++ //skip the "or"
			if i == len(fields) {
				return nil, NewError(fmt.Sprintf("Query %q ends in 'or'", query), "ParseQuery")
			}
		}
		t, err := term(key, values)
		if err != nil {
			return nil, ErrDecorate(err, "ParseQuery")
		}
		terms = append(terms, t)
	}
	return func(at *Atom) bool {
		for _, t := range terms {
			if t(at) {
				return true
			}
		}
		return false
	}, nil
}

func term(key string, values []string) (Query, error) {
	if key == "all" {
		if len(values) != 0 {
			return nil, NewError("'all' takes no values", "term")
		}
		return func(*Atom) bool { return true }, nil
	}
	if len(values) == 0 {
		return nil, NewError(fmt.Sprintf("Keyword %q needs at least one value", key), "term")
	}
	switch key {
	case "resname":
		return func(at *Atom) bool { return isInString(values, at.MolName) }, nil
	case "name":
		return func(at *Atom) bool { return isInString(values, at.Name) }, nil
	case "resid", "molecule":
		ints := make([]int, 0, len(values))
		for _, v := range values {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, NewError(fmt.Sprintf("Can't parse %s value %q: %v", key, v, err), "term")
			}
			ints = append(ints, n)
		}
		if key == "resid" {
			return func(at *Atom) bool { return isInInt(ints, at.MolID) }, nil
		}
		return func(at *Atom) bool { return isInInt(ints, at.Molecule) }, nil
	}
	return nil, NewError(fmt.Sprintf("Unknown selection keyword %q", key), "term")
}

func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
