/*
 * metrics.go, part of goagg.
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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	agg "github.com/rmera/goagg"
)

// Frame statuses, used as label values.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Metrics collects the progress of a run on its own registry, so several
// runs in a process don't collide.
type Metrics struct {
	Registry     *prometheus.Registry
	Frames       *prometheus.CounterVec
	FrameSeconds prometheus.Histogram
	Clusters     prometheus.Gauge
	Selected     prometheus.Gauge
}

// NewMetrics returns Metrics registered in a new registry.
func NewMetrics() *Metrics {
	M := &Metrics{
		Registry: prometheus.NewRegistry(),
		Frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goagg_frames_total",
				Help: "Frames processed, by status",
			},
			[]string{"status"},
		),
		FrameSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "goagg_frame_seconds",
				Help:    "Time spent computing distances and clustering one frame",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
		),
		Clusters: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goagg_clusters",
			Help: "Number of clusters in the last accepted frame",
		}),
		Selected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goagg_selected_atoms",
			Help: "Number of selected atoms in the last frame",
		}),
	}
	M.Registry.MustRegister(M.Frames, M.FrameSeconds, M.Clusters, M.Selected)
	//so both series exist from the start
	M.Frames.WithLabelValues(StatusAccepted)
	M.Frames.WithLabelValues(StatusRejected)
	return M
}

// observe records a processed frame. It does nothing on a nil receiver.
func (M *Metrics) observe(status string, elapsed time.Duration, selected, clusters int) {
	if M == nil {
		return
	}
	M.Frames.WithLabelValues(status).Inc()
	M.FrameSeconds.Observe(elapsed.Seconds())
	M.Selected.Set(float64(selected))
	if status == StatusAccepted {
		M.Clusters.Set(float64(clusters))
	}
}

// WriteFile writes the metrics in the Prometheus text format to the file name.
func (M *Metrics) WriteFile(name string) error {
	if err := prometheus.WriteToTextfile(name, M.Registry); err != nil {
		return agg.WrapError(err, "Metrics.WriteFile").InFile(name)
	}
	return nil
}
