/*
 * driver.go, part of goagg.
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
	"time"

	agg "github.com/rmera/goagg"
	"github.com/rmera/goagg/cluster"
	"github.com/rmera/goagg/dbscan"
	"github.com/rmera/goagg/dist"
	v3 "github.com/rmera/goagg/v3"
	"go.uber.org/zap"
)

// Sink receives each accepted frame, with its index in the source
// trajectory, as soon as it is accepted.
type Sink interface {
	Put(i int, F *cluster.Frame) error
}

// HeaderSink is a Sink that also stores the run description, which it
// receives before any frame.
type HeaderSink interface {
	Sink
	PutHeader(T *cluster.Trajectory) error
}

// Driver runs the clustering over all the frames of a trajectory.
type Driver struct {
	Engine  dbscan.Clusterer //if nil, dbscan.New with the cutoff and MinSamples of the options
	Logger  *zap.Logger      //if nil, nothing is logged
	Sink    Sink             //optional
	Metrics *Metrics         //optional
	source  agg.Traj
	top     agg.Querier
	o       *Options
}

// New returns a Driver that reads frames from source and selects atoms
// from top, following the options o (or DefaultOptions, if o is nil).
func New(source agg.Traj, top agg.Querier, o *Options) *Driver {
	if o == nil {
		o = DefaultOptions()
	}
	return &Driver{source: source, top: top, o: o}
}

// Options returns the options of the driver.
func (D *Driver) Options() *Options {
	return D.o
}

// Verdict is the result of validating a clustered frame.
type Verdict struct {
	Accepted bool
	Reason   string //empty for accepted frames
}

// Validate checks that res can be stored as the clustering of sel.
func Validate(sel *agg.Selection, res *dbscan.Result) Verdict {
	if res == nil {
		return Verdict{Reason: "no clustering result"}
	}
	if sel.Len() != len(res.Labels) {
		return Verdict{Reason: fmt.Sprintf("%d labels for %d selected atoms", len(res.Labels), sel.Len())}
	}
	for _, c := range res.CoreIndices {
		if c < 0 || c >= len(res.Labels) {
			return Verdict{Reason: fmt.Sprintf("core index %d out of range for %d points", c, len(res.Labels))}
		}
	}
	return Verdict{Accepted: true}
}

func (D *Driver) prepare() error {
	if D.source == nil || D.top == nil {
		return agg.NewError("Driver needs a trajectory and a topology", "Driver.Run")
	}
	if err := D.o.Check(); err != nil {
		return errDecorate(err, "Driver.Run")
	}
	if err := agg.Corrupted(D.top, D.source); err != nil {
		return errDecorate(err, "Driver.Run")
	}
	if D.Logger == nil {
		D.Logger = zap.NewNop()
	}
	if D.Engine == nil {
		D.Engine = dbscan.New(D.o.Cutoff(), D.o.MinSamples())
	}
	return nil
}

// Run reads the trajectory until its end, clustering the selected atoms in
// each frame, and returns the accepted frames. Frames whose clustering
// doesn't match the selection are skipped with a warning. Errors reading,
// selecting, computing distances or clustering end the run, and are
// returned along with the frames accepted so far.
func (D *Driver) Run() (*cluster.Trajectory, error) {
	if err := D.prepare(); err != nil {
		return nil, err
	}
	T := cluster.NewTrajectory(D.o.meta())
	if hs, ok := D.Sink.(HeaderSink); ok {
		if err := hs.PutHeader(T); err != nil {
			return nil, errDecorate(err, "Driver.Run")
		}
	}
	query := D.o.Query()
	dopts := D.o.distOptions()
	timer, hasTime := D.source.(agg.Timer)
	coords := v3.Zeros(D.source.Len())
	box := make([]float64, 3)
	D.Logger.Info("starting run",
		zap.String("run_id", T.RunID),
		zap.String("query", query),
		zap.Float64("cutoff", D.o.Cutoff()),
		zap.Int("min_samples", D.o.MinSamples()),
		zap.Stringer("mode", D.o.Mode()),
		zap.Int("atoms", D.source.Len()),
	)
	var rejected int
	for frame := 0; ; frame++ {
		for i := range box {
			box[i] = 0
		}
		if err := D.source.Next(coords, box); err != nil {
			if _, ok := err.(agg.LastFrameError); ok {
				break
			}
			return T, errDecorate(err, "Driver.Run")
		}
		t := float64(frame) * D.o.DT()
		if hasTime {
			t = timer.Time()
		}
		start := time.Now()
		sel, res, err := D.cluster(coords, box, query, dopts)
		if err != nil {
			return T, errDecorate(err, fmt.Sprintf("Driver.Run(frame %d)", frame))
		}
		elapsed := time.Since(start)
		v := Validate(sel, res)
		if !v.Accepted {
			rejected++
			D.Logger.Warn("frame rejected",
				zap.Int("frame", frame),
				zap.Float64("time", t),
				zap.String("reason", v.Reason),
			)
			D.Metrics.observe(StatusRejected, elapsed, sel.Len(), 0)
			continue
		}
		F := T.AddFrame(t, res.Labels, res.CoreIndices, sel)
		if D.Sink != nil {
			if err := D.Sink.Put(frame, F); err != nil {
				return T, errDecorate(err, "Driver.Run")
			}
		}
		D.Metrics.observe(StatusAccepted, elapsed, sel.Len(), F.NClusters)
		D.Logger.Debug("frame clustered",
			zap.Int("frame", frame),
			zap.Float64("time", t),
			zap.Int("selected", sel.Len()),
			zap.Int("clusters", F.NClusters),
			zap.Duration("elapsed", elapsed),
		)
	}
	D.Logger.Info("run finished", zap.Int("accepted", T.Len()), zap.Int("rejected", rejected))
	return T, nil
}

// cluster selects the atoms for the current frame, and clusters them.
func (D *Driver) cluster(coords *v3.Matrix, box []float64, query string, dopts *dist.Options) (*agg.Selection, *dbscan.Result, error) {
	indices, err := D.top.Select(query)
	if err != nil {
		return nil, nil, err
	}
	sel, err := agg.NewSelection(coords, indices)
	if err != nil {
		return nil, nil, err
	}
	d, err := dist.Build(sel.Coords, box, dopts)
	if err != nil {
		return nil, nil, err
	}
	res, err := D.Engine.Fit(d)
	if err != nil {
		return nil, nil, err
	}
	return sel, res, nil
}

func errDecorate(err error, caller string) error {
	return agg.ErrDecorate(err, "pipeline."+caller)
}
