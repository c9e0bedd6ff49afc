/*
 * summary.go, part of goagg.
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
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	agg "github.com/rmera/goagg"
	"github.com/rmera/goagg/histo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultSummaryFile is the default name for the file written by WriteSummary.
const DefaultSummaryFile = "n_clusters.dat"

// WriteSummary writes one line per frame with the time and the number of clusters.
func (T *Trajectory) WriteSummary(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, F := range T.Frames {
		if _, err := fmt.Fprintf(bw, "%-8.6f %-8.6f\n", F.Time, float64(F.NClusters)); err != nil {
			return agg.WrapError(err, "Trajectory.WriteSummary")
		}
	}
	if err := bw.Flush(); err != nil {
		return agg.WrapError(err, "Trajectory.WriteSummary")
	}
	return nil
}

// WriteSizes writes one line per frame with the time followed by the size of
// each cluster, measured with the given grouping (see Frame.ClusterSizes).
func (T *Trajectory) WriteSizes(w io.Writer, top agg.Atomer, g Grouping) error {
	bw := bufio.NewWriter(w)
	fields := make([]string, 0, 16)
	for _, F := range T.Frames {
		fields = append(fields[:0], strconv.FormatFloat(F.Time, 'f', 6, 64))
		for _, s := range F.ClusterSizes(top, g) {
			fields = append(fields, strconv.Itoa(s))
		}
		if _, err := bw.WriteString(strings.Join(fields, " ") + "\n"); err != nil {
			return agg.WrapError(err, "Trajectory.WriteSizes")
		}
	}
	if err := bw.Flush(); err != nil {
		return agg.WrapError(err, "Trajectory.WriteSizes")
	}
	return nil
}

// writeFile calls f on a newly created file name.
func writeFile(name string, f func(io.Writer) error) error {
	fout, err := os.Create(name)
	if err != nil {
		return agg.WrapError(err, "writeFile").InFile(name)
	}
	if err = f(fout); err != nil {
		fout.Close()
		return errDecorate(err, "writeFile "+name)
	}
	if err = fout.Close(); err != nil {
		return agg.WrapError(err, "writeFile").InFile(name)
	}
	return nil
}

// WriteSummaryFile writes the summary (see WriteSummary) to the file name.
func (T *Trajectory) WriteSummaryFile(name string) error {
	return writeFile(name, T.WriteSummary)
}

// WriteSizesFile writes the cluster sizes (see WriteSizes) to the file name.
func (T *Trajectory) WriteSizesFile(name string, top agg.Atomer, g Grouping) error {
	return writeFile(name, func(w io.Writer) error { return T.WriteSizes(w, top, g) })
}

// Stats summarizes a trajectory.
type Stats struct {
	Frames      int
	MeanCount   float64 //mean number of clusters per frame
	StdCount    float64
	MaxCount    int
	Sizes       *histo.Data //distribution of cluster sizes over all frames
	MeanSize    float64
	LargestSize int
}

// Stats returns the statistics of the number of clusters and of the
// cluster sizes, measured with the grouping g.
func (T *Trajectory) Stats(top agg.Atomer, g Grouping) *Stats {
	S := &Stats{Frames: T.Len(), MeanCount: math.NaN(), StdCount: math.NaN(), MeanSize: math.NaN()}
	counts := make([]float64, 0, T.Len())
	sizes := make([]float64, 0, 4*T.Len())
	for _, F := range T.Frames {
		counts = append(counts, float64(F.NClusters))
		for _, s := range F.ClusterSizes(top, g) {
			sizes = append(sizes, float64(s))
		}
	}
	if len(counts) > 0 {
		S.MeanCount, S.StdCount = stat.MeanStdDev(counts, nil)
		if len(counts) == 1 {
			S.StdCount = 0
		}
		S.MaxCount = int(floats.Max(counts))
	}
	if len(sizes) == 0 {
		S.Sizes = histo.NewData(histo.IntDividers(0, 0), nil)
		return S
	}
	S.MeanSize = stat.Mean(sizes, nil)
	S.LargestSize = int(floats.Max(sizes))
	S.Sizes = histo.NewData(histo.IntDividers(1, S.LargestSize), sizes)
	return S
}

func (S *Stats) String() string {
	return fmt.Sprintf("frames: %d\nclusters per frame: %.3f +/- %.3f (max %d)\ncluster size: mean %.3f, largest %d\nsize distribution:\n%s",
		S.Frames, S.MeanCount, S.StdCount, S.MaxCount, S.MeanSize, S.LargestSize, S.Sizes.String())
}
