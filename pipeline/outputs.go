/*
 * outputs.go, part of goagg.
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
	agg "github.com/rmera/goagg"
	"github.com/rmera/goagg/cluster"
)

// Outputs names the files written after a run. Empty names are skipped.
type Outputs struct {
	Traj     string //the serialized trajectory, compressed by extension
	Summary  string //time and number of clusters for each frame
	Sizes    string //time and the size of each cluster, for each frame
	Grouping cluster.Grouping
	Plot     string //number of clusters vs time
	Metrics  string //Prometheus text format
}

// DefaultOutputs returns Outputs with the default trajectory and summary names.
func DefaultOutputs() Outputs {
	return Outputs{Traj: cluster.DefaultFile, Summary: cluster.DefaultSummaryFile}
}

// WriteOutputs writes the results of a run to the files in out. top is
// needed only for the sizes file, and M only for the metrics file.
func WriteOutputs(T *cluster.Trajectory, top agg.Atomer, M *Metrics, out Outputs) error {
	if T == nil {
		return agg.NewError("No trajectory to write", "pipeline.WriteOutputs")
	}
	if out.Traj != "" {
		if err := T.SaveFile(out.Traj); err != nil {
			return errDecorate(err, "WriteOutputs")
		}
	}
	if out.Summary != "" {
		if err := T.WriteSummaryFile(out.Summary); err != nil {
			return errDecorate(err, "WriteOutputs")
		}
	}
	if out.Sizes != "" {
		if top == nil {
			return agg.NewError("A topology is needed to write cluster sizes", "pipeline.WriteOutputs")
		}
		if err := T.WriteSizesFile(out.Sizes, top, out.Grouping); err != nil {
			return errDecorate(err, "WriteOutputs")
		}
	}
	if out.Plot != "" {
		if err := T.PlotClusterCount(out.Plot); err != nil {
			return errDecorate(err, "WriteOutputs")
		}
	}
	if out.Metrics != "" && M != nil {
		if err := M.WriteFile(out.Metrics); err != nil {
			return errDecorate(err, "WriteOutputs")
		}
	}
	return nil
}
