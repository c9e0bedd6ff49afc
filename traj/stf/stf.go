/*
 * stf/stf.go, part of goagg.
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

package stf

import (
	"bufio"
	"compress/lzw"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rmera/goagg/traj"
	v3 "github.com/rmera/goagg/v3"
	"go.uber.org/zap"
)

const (
	format      = "stf"
	lzwLitwidth = 8
	defPrec     = 2
)

// StfW is an STF trajectory open for writing.
type StfW struct {
	f         *os.File
	h         io.WriteCloser
	b         *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	prec      int
}

// Close flushes and closes the trajectory.
func (S *StfW) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.b.Flush()
	if e := S.h.Close(); err == nil {
		err = e
	}
	if e := S.f.Close(); err == nil {
		err = e
	}
	if err != nil {
		return traj.NewError(format, S.filename, err.Error(), "Close")
	}
	return nil
}

// Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

// WNext writes coord as the next frame and, if given, the box (3 edges or 9 components).
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return traj.NewError(format, S.filename, traj.TrajUnIniWrite, "WNext")
	}
	if coord == nil {
		return traj.NewError(format, S.filename, traj.NilCoordinates, "WNext")
	}
	v := coord.NVecs()
	if v != S.natoms {
		return traj.NewError(format, S.filename, fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), "WNext")
	}
	var temp [3]int
	var xyz [3]float64
	for i := 0; i < v; i++ {
		coord.Vec(xyz[:], i)
		S.b.WriteString(coordsEncode(xyz, temp, S.prec))
	}
	var err error
	if len(box) > 0 && (len(box[0]) == 3 || len(box[0]) >= 9) {
		n := 3
		if len(box[0]) >= 9 {
			n = 9
		}
		fields := make([]string, 0, n+1)
		fields = append(fields, "*")
		for _, b := range box[0][:n] {
			fields = append(fields, strconv.FormatFloat(b, 'f', 4, 64))
		}
		_, err = S.b.WriteString(strings.Join(fields, " ") + "\n")
	} else {
		_, err = S.b.WriteString("*\n")
	}
	if err != nil {
		return traj.NewError(format, S.filename, err.Error(), "WNext")
	}
	return nil
}

// compressor returns the function that builds a writer for the file name.
func compressor(name string, level int) func(io.Writer) (io.WriteCloser, error) {
	switch name[len(name)-1] {
	case 'l':
		return func(a io.Writer) (io.WriteCloser, error) { return lzw.NewWriter(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		return func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, level) }
	case 'r':
		return func(a io.Writer) (io.WriteCloser, error) { return flate.NewWriter(a, level) }
	}
	return func(a io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	}
}

// NewWriter creates the STF file name for frames of natoms atoms and writes
// the header to it. The compression level defaults to 9.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	level := 9
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	S := &StfW{natoms: natoms, filename: name, prec: defPrec}
	if p, ok := header["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec < 0 {
			return nil, traj.NewError(format, name, fmt.Sprintf("Invalid precision %q", p), "NewWriter")
		}
		S.prec = prec
	}
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, traj.NewError(format, name, traj.UnableToOpen+": "+err.Error(), "NewWriter")
	}
	S.h, err = compressor(strings.ToLower(name), level)(S.f)
	if err != nil {
		S.f.Close()
		return nil, traj.NewError(format, name, "Can't create compressor: "+err.Error(), "NewWriter")
	}
	S.b = bufio.NewWriter(S.h)
	//sorted, so files are reproducible
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(S.b, "%s=%s\n", k, header[k])
	}
	fmt.Fprintf(S.b, "** %d\n", S.natoms)
	S.writeable = true
	return S, nil
}

// zstdReadCloser lets a *zstd.Decoder be used as an io.ReadCloser.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func decompressor(name string) func(io.Reader) (io.ReadCloser, error) {
	switch name[len(name)-1] {
	case 'l':
		return func(a io.Reader) (io.ReadCloser, error) { return lzw.NewReader(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		return func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	case 'r':
		return func(a io.Reader) (io.ReadCloser, error) { return flate.NewReader(a), nil }
	}
	return func(a io.Reader) (io.ReadCloser, error) {
		r, err := zstd.NewReader(a)
		if err != nil {
			return nil, err
		}
		return zstdReadCloser{r}, nil
	}
}

// StfR is an STF trajectory open for reading. It implements agg.Traj and agg.Timer.
type StfR struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	dt, t0   float64
	frame    int //frames read so far
	readable bool
}

// New opens an STF trajectory for reading, and returns a pointer
// to the handle, a map with the header (empty if there is no header)
// and error or nil.
func New(name string) (*StfR, map[string]string, error) {
	S := &StfR{natoms: -1, filename: name, prec: defPrec, dt: 1}
	m := make(map[string]string)
	var err error
	S.f, err = os.Open(name)
	if err != nil {
		return nil, nil, traj.NewError(format, name, traj.UnableToOpen+": "+err.Error(), "New")
	}
	S.dec, err = decompressor(strings.ToLower(name))(bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, traj.NewError(format, name, "Can't read header: "+err.Error(), "New")
	}
	S.h = bufio.NewReader(S.dec)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.close()
			return nil, nil, traj.NewError(format, name, "Can't read header: "+err.Error(), "New")
		}
		str = strings.TrimSpace(str)
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.close()
				return nil, nil, traj.NewError(format, name, fmt.Sprintf("Can't read atom number from '%s'", str), "New")
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil {
				S.close()
				return nil, nil, traj.NewError(format, name, fmt.Sprintf("Can't read atom number from '%s': %s", nat[1], err.Error()), "New")
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			S.close()
			return nil, nil, traj.NewError(format, name, fmt.Sprintf("Malformed header line '%s'", str), "New")
		}
		m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if err := S.setHeader(m); err != nil {
		S.close()
		return nil, nil, err
	}
	S.readable = true
	return S, m, nil
}

// setHeader reads the known keys from the header.
func (S *StfR) setHeader(m map[string]string) error {
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec < 0 {
			return traj.NewError(format, S.filename, fmt.Sprintf("Invalid precision %q", p), "New")
		}
		S.prec = prec
	}
	for key, dest := range map[string]*float64{"dt": &S.dt, "t0": &S.t0} {
		v, ok := m[key]
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return traj.NewError(format, S.filename, fmt.Sprintf("Invalid %s %q", key, v), "New")
		}
		*dest = f
	}
	return nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it).
func (S *StfR) Readable() bool {
	return S.readable
}

// Time returns the time of the last frame read, t0 + i*dt.
func (S *StfR) Time() float64 {
	return S.t0 + float64(S.frame-1)*S.dt
}

func coordsEncode(f [3]float64, temp [3]int, prec int) string {
	p := math.Pow(10.0, float64(prec))
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: %d fields: %s", len(s), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s). Error: %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

// Next puts in the given matrix (c) the coordinates for the next frame of the trajectory
// and, if given and the information is present, the box in box[0]. A 3-element
// box gets the box edges, a box of at least 9 elements gets whatever the file has.
// The end of the trajectory is signaled with an agg.LastFrameError.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return traj.NewLastFrameError(format, S.filename, "Next")
	}
	if c != nil && c.NVecs() != S.natoms {
		return traj.NewError(format, S.filename, fmt.Sprintf("Matrix with %d vectors given for %d atoms", c.NVecs(), S.natoms), "Next")
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			if err == io.EOF && i == 0 && strings.TrimSpace(b) == "" {
				//nothing bad happened here, the trajectory just ended.
				S.close()
				return traj.NewLastFrameError(format, S.filename, "Next")
			}
			return traj.NewError(format, S.filename, traj.ReadError+": "+err.Error(), "Next")
		}
		if err = coordsDecode(b, &temp, S.prec); err != nil {
			return traj.NewError(format, S.filename, err.Error(), "Next")
		}
		if c == nil {
			continue //the frame is still checked
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil && !(err == io.EOF && s != "") {
		if err == io.EOF && S.natoms == 0 {
			S.close()
			return traj.NewLastFrameError(format, S.filename, "Next")
		}
		return traj.NewError(format, S.filename, "Can't read the frame termination mark: "+err.Error(), "Next")
	}
	if !strings.HasPrefix(s, "*") {
		return traj.NewError(format, S.filename, "Wrong number of atoms in frame", "Next")
	}
	S.frame++
	if len(box) > 0 {
		S.readBox(s, box[0])
	}
	return nil
}

// readBox fills box from the frame termination line s. Failures are logged, not returned.
func (S *StfR) readBox(s string, box []float64) {
	fields := strings.Fields(s)[1:]
	if len(fields) != 3 && len(fields) != 9 {
		zap.L().Debug("stf frame without box", zap.String("file", S.filename), zap.Int("frame", S.frame))
		return
	}
	vals := make([]float64, len(fields))
	for i, v := range fields {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			zap.L().Warn("failed to read box", zap.String("file", S.filename), zap.Int("frame", S.frame), zap.Error(err))
			return
		}
		vals[i] = f
	}
	if len(box) >= 9 || len(vals) == 3 {
		copy(box, vals)
		return
	}
	//the diagonal of the box vectors
	for i := 0; i < 3 && i < len(box); i++ {
		box[i] = vals[4*i]
	}
}

func (S *StfR) close() {
	if S.dec != nil {
		S.dec.Close()
	}
	if S.f != nil {
		S.f.Close()
	}
	S.dec, S.f = nil, nil
	S.readable = false
}

// Close closes the object, and marks it as unreadable.
func (S *StfR) Close() {
	S.close()
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}
