/*
 * options.go, part of goagg.
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

package pipeline

import (
	"fmt"

	agg "github.com/rmera/goagg"
	"github.com/rmera/goagg/cluster"
	"github.com/rmera/goagg/dist"
)

// Options for a clustering run.
type Options struct {
	residues   []string
	query      string
	cutoff     float64
	minSamples int
	mode       dist.Mode
	dt         float64
	grouping   cluster.Grouping
	sources    []string
}

// DefaultOptions returns options for a dense-matrix run with a 10 A cutoff,
// 3 samples per core point and 1 ps between frames. A query or residues must
// still be given.
func DefaultOptions() *Options {
	return &Options{cutoff: 10, minSamples: 3, mode: dist.ModeDense, dt: 1, grouping: cluster.Atom}
}

// Residues returns the names of the residues to cluster, and sets them to
// new values, if given.
func (O *Options) Residues(names ...[]string) []string {
	if len(names) > 0 {
		O.residues = names[0]
	}
	return O.residues
}

// Query returns the selection query, and sets it to a new value, if given.
// If no query has been set, it is built from the residue names.
func (O *Options) Query(query ...string) string {
	if len(query) > 0 {
		O.query = query[0]
	}
	if O.query == "" && len(O.residues) > 0 {
		return agg.ResnameQuery(O.residues)
	}
	return O.query
}

// Cutoff returns the cutoff used for the distances and as the DBSCAN eps,
// and sets it to a new value, if given.
func (O *Options) Cutoff(cutoff ...float64) float64 {
	if len(cutoff) > 0 {
		O.cutoff = cutoff[0]
	}
	return O.cutoff
}

// MinSamples returns the number of neighbors (itself included) a core point
// needs, and sets it to a new value, if given.
func (O *Options) MinSamples(n ...int) int {
	if len(n) > 0 {
		O.minSamples = n[0]
	}
	return O.minSamples
}

// Mode returns the way distances are computed, and sets it to a new value, if given.
func (O *Options) Mode(mode ...dist.Mode) dist.Mode {
	if len(mode) > 0 {
		O.mode = mode[0]
	}
	return O.mode
}

// DT returns the time between frames, used when the trajectory doesn't
// give times, and sets it to a new value, if given.
func (O *Options) DT(dt ...float64) float64 {
	if len(dt) > 0 {
		O.dt = dt[0]
	}
	return O.dt
}

// Grouping returns the grouping used for cluster sizes, and sets it to a
// new value, if given.
func (O *Options) Grouping(g ...cluster.Grouping) cluster.Grouping {
	if len(g) > 0 {
		O.grouping = g[0]
	}
	return O.grouping
}

// Sources returns the names of the input files, which are recorded in the
// results, and sets them to new values, if given.
func (O *Options) Sources(names ...string) []string {
	if len(names) > 0 {
		O.sources = names
	}
	return O.sources
}

// Check returns an error if the options can't be used for a run.
func (O *Options) Check() error {
	if O.Query() == "" {
		return agg.NewError("No residues or query given", "Options.Check")
	}
	if !(O.cutoff > 0) {
		return agg.NewError(fmt.Sprintf("The cutoff must be positive, got %v", O.cutoff), "Options.Check")
	}
	if O.minSamples < 1 {
		return agg.NewError(fmt.Sprintf("The minimum number of samples must be at least 1, got %d", O.minSamples), "Options.Check")
	}
	if O.mode != dist.ModeDense && O.mode != dist.ModeCellGrid {
		return agg.NewError(fmt.Sprintf("Unknown distance mode %v", O.mode), "Options.Check")
	}
	return nil
}

// meta returns the description of a run with these options.
func (O *Options) meta() cluster.Meta {
	return cluster.Meta{
		Query:      O.Query(),
		Cutoff:     O.cutoff,
		MinSamples: O.minSamples,
		Mode:       O.mode.String(),
		Grouping:   O.grouping.String(),
		Sources:    O.sources,
	}
}

func (O *Options) distOptions() *dist.Options {
	d := dist.DefaultOptions()
	d.Cutoff(O.cutoff)
	d.Mode(O.mode)
	return d
}
