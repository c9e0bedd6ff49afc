/*
 * trajectory.go, part of goagg.
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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	agg "github.com/rmera/goagg"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultFile is the default name for a saved Trajectory.
const DefaultFile = "clustered_traj.msgpack.zst"

// Meta describes the run that produced a Trajectory.
type Meta struct {
	Query      string    `msgpack:"query" yaml:"query"`
	Cutoff     float64   `msgpack:"cutoff" yaml:"cutoff"`
	MinSamples int       `msgpack:"min_samples" yaml:"min_samples"`
	Mode       string    `msgpack:"mode" yaml:"mode"`
	Grouping   string    `msgpack:"grouping" yaml:"grouping"`
	Sources    []string  `msgpack:"sources" yaml:"sources"`
	Created    time.Time `msgpack:"created" yaml:"created"`
}

// Trajectory is the ordered sequence of Frames obtained from a run.
// Frames are only appended.
type Trajectory struct {
	RunID  string   `msgpack:"run_id"`
	Meta   Meta     `msgpack:"meta"`
	Frames []*Frame `msgpack:"frames"`
}

// NewTrajectory returns an empty Trajectory with a new run ID. If meta has no
// creation time, the current time is used.
func NewTrajectory(meta Meta) *Trajectory {
	if meta.Created.IsZero() {
		meta.Created = time.Now().UTC()
	}
	return &Trajectory{RunID: uuid.NewString(), Meta: meta, Frames: make([]*Frame, 0, 64)}
}

// AddFrame builds a Frame with NewFrame, appends it and returns it.
func (T *Trajectory) AddFrame(time float64, labels, core []int, sel *agg.Selection) *Frame {
	F := NewFrame(time, labels, core, sel)
	T.Append(F)
	return F
}

// Append adds F at the end of the trajectory.
func (T *Trajectory) Append(F *Frame) {
	T.Frames = append(T.Frames, F)
}

// Len returns the number of frames.
func (T *Trajectory) Len() int {
	if T == nil {
		return 0
	}
	return len(T.Frames)
}

// Frame returns the ith frame.
func (T *Trajectory) Frame(i int) *Frame {
	return T.Frames[i]
}

// Encode writes the trajectory to w in msgpack format.
func (T *Trajectory) Encode(w io.Writer) error {
	if err := msgpack.NewEncoder(w).Encode(T); err != nil {
		return agg.WrapError(err, "Trajectory.Encode")
	}
	return nil
}

// Decode reads a trajectory in msgpack format from r.
func Decode(r io.Reader) (*Trajectory, error) {
	T := new(Trajectory)
	if err := msgpack.NewDecoder(r).Decode(T); err != nil {
		return nil, agg.WrapError(err, "Decode")
	}
	return T, nil
}

// compression of a file, by extension.
func compression(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// SaveFile writes the trajectory to the file name, compressed with zstd if
// the name ends in .zst, with gzip if it ends in .gz, uncompressed otherwise.
func (T *Trajectory) SaveFile(name string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return agg.WrapError(err, "Trajectory.SaveFile").InFile(name)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = agg.WrapError(cerr, "Trajectory.SaveFile").InFile(name)
		}
	}()
	bw := bufio.NewWriter(f)
	var w io.WriteCloser
	switch compression(name) {
	case ".zst":
		w, err = zstd.NewWriter(bw)
	case ".gz":
		w = gzip.NewWriter(bw)
	default:
		w = nopCloser{bw}
	}
	if err != nil {
		return agg.WrapError(err, "Trajectory.SaveFile").InFile(name)
	}
	if err = T.Encode(w); err != nil {
		w.Close()
		return errDecorate(err, "Trajectory.SaveFile")
	}
	if err = w.Close(); err != nil {
		return agg.WrapError(err, "Trajectory.SaveFile").InFile(name)
	}
	if err = bw.Flush(); err != nil {
		return agg.WrapError(err, "Trajectory.SaveFile").InFile(name)
	}
	return nil
}

// LoadFile reads a trajectory written by SaveFile.
func LoadFile(name string) (*Trajectory, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, agg.WrapError(err, "LoadFile").InFile(name)
	}
	defer f.Close()
	var r io.Reader = bufio.NewReader(f)
	switch compression(name) {
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, agg.WrapError(err, "LoadFile").InFile(name)
		}
		defer zr.Close()
		r = zr
	case ".gz":
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, agg.WrapError(err, "LoadFile").InFile(name)
		}
		defer gr.Close()
		r = gr
	}
	T, err := Decode(r)
	if err != nil {
		return nil, errDecorate(err, fmt.Sprintf("LoadFile %s", name))
	}
	return T, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func errDecorate(err error, caller string) error {
	return agg.ErrDecorate(err, "cluster."+caller)
}
