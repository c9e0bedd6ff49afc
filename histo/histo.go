/*
 * histo.go, part of goagg.
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

// Package histo implements simple 1D histograms, used for the distributions of
// cluster sizes.
package histo

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Data is a histogram. Bin i counts the values v with dividers[i] <= v < dividers[i+1].
// Values outside the dividers are not counted.
type Data struct {
	normalized bool
	total      int
	dividers   []float64
	histo      []float64
}

// IntDividers returns the dividers for a histogram with one bin per integer
// from lo to hi, both included. Bin k is centered at lo+k.
func IntDividers(lo, hi int) []float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	ret := make([]float64, 0, hi-lo+2)
	for i := lo; i <= hi+1; i++ {
		ret = append(ret, float64(i)-0.5)
	}
	return ret
}

// NewData returns a new histogram from the dividers and rawdata given.
// rawdata can be nil, in which case an empty histogram is created. It panics
// if dividers has less than 2 elements or is not sorted.
func NewData(dividers []float64, rawdata []float64) *Data {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		panic("goagg/histo.NewData: dividers must be sorted and have at least 2 elements")
	}
	d := new(Data)
	//copied so nobody can change them from outside
	d.dividers = append([]float64(nil), dividers...)
	d.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		d.ReHisto(rawdata)
	}
	return d
}

// bin returns the bin for v, or -1 if v is out of range.
func (D *Data) bin(v float64) int {
	last := len(D.dividers) - 1
	if v < D.dividers[0] || v >= D.dividers[last] || math.IsNaN(v) {
		return -1
	}
	//first divider strictly larger than v
	i := sort.Search(len(D.dividers), func(i int) bool { return D.dividers[i] > v })
	return i - 1
}

// AddData adds the given data point(s) to the histogram. Only the points within
// the dividers are counted in the total.
func (D *Data) AddData(point ...float64) {
	norma := D.normalized
	if norma {
		D.UnNormalize()
	}
	for _, v := range point {
		if b := D.bin(v); b >= 0 {
			D.histo[b]++
			D.total++
		}
	}
	if norma {
		D.Normalize()
	}
}

// ReHisto replaces the contents of the histogram with those from rawdata.
// rawdata is sorted in place.
func (D *Data) ReHisto(rawdata []float64) {
	sort.Float64s(rawdata)
	//stat.Histogram panics instead of omitting the values that are off limits
	//so we remove them here before the call.
	maxi := sort.SearchFloat64s(rawdata, D.dividers[len(D.dividers)-1])
	mini := sort.SearchFloat64s(rawdata, D.dividers[0])
	rawdata = rawdata[mini:maxi]
	D.total = len(rawdata)
	D.histo = stat.Histogram(nil, D.dividers, rawdata, nil)
	if D.normalized {
		D.normalized = false
		D.Normalize()
	}
}

// Total returns the number of points in the histogram.
func (D *Data) Total() int {
	return D.total
}

// Normalized returns true if the histogram is normalized.
func (D *Data) Normalized() bool {
	return D.normalized
}

// Normalize normalizes the histogram so it sums to 1.
func (D *Data) Normalize() {
	D.normaunnorma(true)
}

// UnNormalize returns the histogram to counts.
func (D *Data) UnNormalize() {
	D.normaunnorma(false)
}

func (D *Data) normaunnorma(normalize bool) {
	if D.total <= 0 || D.normalized == normalize {
		return
	}
	n := float64(D.total)
	if normalize {
		n = 1 / n
	}
	D.normalized = normalize
	floats.Scale(n, D.histo)
}

// Dividers returns a copy of the dividers of the histogram, in dest[0] if given
// and large enough.
func (D *Data) Dividers(dest ...[]float64) []float64 {
	d := getCopySlice(len(D.dividers), dest...)
	copy(d, D.dividers)
	return d
}

// Copy returns a copy of the bins, in dest[0] if given and large enough.
func (D *Data) Copy(dest ...[]float64) []float64 {
	d := getCopySlice(len(D.histo), dest...)
	copy(d, D.histo)
	return d
}

// View returns the bins themselves, not a copy.
func (D *Data) View() []float64 {
	return D.histo
}

// Sum returns the sum of all bins.
func (D *Data) Sum() float64 {
	return floats.Sum(D.histo)
}

// Mode returns the center of the most populated bin, and its value. Ties go
// to the lowest bin. Returns NaN for an empty histogram.
func (D *Data) Mode() (float64, float64) {
	if D.total == 0 {
		return math.NaN(), 0
	}
	i := floats.MaxIdx(D.histo)
	return (D.dividers[i] + D.dividers[i+1]) / 2, D.histo[i]
}

// Add adds the histograms a and b putting the result in the receiver.
// It panics if their dividers differ.
func (D *Data) Add(a, b *Data) {
	if !floats.Equal(a.dividers, b.dividers) {
		panic("goagg/histo.Data.Add: Dividers must match in added histograms")
	}
	if a.normalized || b.normalized {
		panic("goagg/histo.Data.Add: can't add normalized histograms")
	}
	D.dividers = a.Dividers(D.dividers)
	D.histo = getCopySlice(len(a.histo), D.histo)
	floats.AddTo(D.histo, a.histo, b.histo)
	D.total = a.total + b.total
	D.normalized = false
}

// String returns a 2-line representation of the histogram: the bin limits,
// and the bin values.
func (D *Data) String() string {
	ret := fmt.Sprintf("Normalized: %v, TotalData: %d\n", D.normalized, D.total)
	d := make([]string, 0, len(D.histo))
	h := make([]string, 0, len(D.histo))
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", D.dividers[i], D.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return ret + fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

type jsonData struct {
	Normalized bool      `json:"normalized"`
	Total      int       `json:"total"`
	Dividers   []float64 `json:"dividers"`
	Histo      []float64 `json:"histo"`
}

func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonData{
		Normalized: D.normalized,
		Total:      D.total,
		Dividers:   D.dividers,
		Histo:      D.histo,
	})
}

func (D *Data) UnmarshalJSON(b []byte) error {
	var a jsonData
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Dividers) != len(a.Histo)+1 {
		return fmt.Errorf("goagg/histo: %d dividers for %d bins", len(a.Dividers), len(a.Histo))
	}
	D.normalized = a.Normalized
	D.total = a.Total
	D.dividers = a.Dividers
	D.histo = a.Histo
	return nil
}

func getCopySlice(N int, dest ...[]float64) []float64 {
	if len(dest) > 0 && cap(dest[0]) >= N {
		return dest[0][:N]
	}
	return make([]float64, N)
}
