/*
 * plot.go, part of goagg.
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

	agg "github.com/rmera/goagg"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotClusterCount plots the number of clusters against time, and saves the
// plot to the file name. The format is taken from the extension (png, svg, pdf...).
func (T *Trajectory) PlotClusterCount(name string, title ...string) error {
	p := plot.New()
	p.Title.Text = "Clusters"
	if len(title) > 0 {
		p.Title.Text = title[0]
	}
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "Time (ps)"
	p.Y.Label.Text = "Number of clusters"
	p.Add(plotter.NewGrid())
	pts := make(plotter.XYs, T.Len())
	for i, F := range T.Frames {
		pts[i].X = F.Time
		pts[i].Y = float64(F.NClusters)
	}
	if len(pts) > 0 {
		l, s, err := plotter.NewLinePoints(pts)
		if err != nil {
			return agg.WrapError(err, "Trajectory.PlotClusterCount")
		}
		s.Radius = vg.Points(1.5)
		p.Add(l, s)
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, name); err != nil {
		return agg.WrapError(fmt.Errorf("saving plot: %w", err), "Trajectory.PlotClusterCount").InFile(name)
	}
	return nil
}
