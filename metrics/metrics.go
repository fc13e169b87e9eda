// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics exposes Prometheus counters and gauges for channel
// health: dropped events/samples (WatchDropped) and periodic arena/queue
// occupancy snapshots (WatchOccupancy), peripheral to the core per §1 but
// wired for operational visibility (C9/C10 ambient stack). Both watchers
// are meant to run in their own goroutine per channel, polling the
// channel's own accessor methods rather than reaching into its internals.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every tracefab metric, namespaced "tracefab_". Callers
// typically construct one Registry per process and register it with
// their own prometheus.Registerer.
type Registry struct {
	DroppedEvents  *prometheus.CounterVec
	DroppedSamples *prometheus.CounterVec
	ArenaBytesUsed *prometheus.GaugeVec
	QueueDepth     *prometheus.GaugeVec
}

// NewRegistry constructs a Registry; call MustRegister (or Register) on
// the returned value's members, or use RegisterAll.
func NewRegistry() *Registry {
	return &Registry{
		DroppedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tracefab",
			Name:      "dropped_events_total",
			Help:      "Events dropped under PolicyDrop, by channel label.",
		}, []string{"channel"}),
		DroppedSamples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tracefab",
			Name:      "dropped_samples_total",
			Help:      "Samples dropped under PolicyDrop, by channel label.",
		}, []string{"channel"}),
		ArenaBytesUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tracefab",
			Name:      "arena_bytes_in_use",
			Help:      "Bytes currently reserved in a channel's argument arena.",
		}, []string{"channel"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tracefab",
			Name:      "queue_depth",
			Help:      "Outstanding descriptors in a channel's queue, sampled periodically.",
		}, []string{"channel"}),
	}
}

// RegisterAll registers every metric in r with reg.
func (r *Registry) RegisterAll(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{r.DroppedEvents, r.DroppedSamples, r.ArenaBytesUsed, r.QueueDepth} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// DroppedCounter is satisfied by EventChannel.DroppedEvents/
// SampleChannel.DroppedSamples: a monotonic dropped-count accessor.
type DroppedCounter interface {
	DroppedCount() uint64
}

// OccupancySource is satisfied by EventChannel/SampleChannel: a periodic
// snapshot of arena and queue occupancy, for the gauges WatchOccupancy
// publishes.
type OccupancySource interface {
	ArenaBytesInUse() uint32
	QueueDepth() int64
}

// WatchDropped polls counter every interval and republishes its
// monotonic total as a delta against target (r.DroppedEvents for an
// EventChannel, r.DroppedSamples for a SampleChannel), until stop is
// closed. It is meant to run in its own goroutine.
func (r *Registry) WatchDropped(channel string, counter DroppedCounter, target *prometheus.CounterVec, interval time.Duration, stop <-chan struct{}) {
	var last uint64
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cur := counter.DroppedCount()
			if cur > last {
				target.WithLabelValues(channel).Add(float64(cur - last))
				last = cur
			}
		case <-stop:
			return
		}
	}
}

// WatchOccupancy polls src every interval and publishes its arena/queue
// occupancy as channel's gauges, until stop is closed. It is meant to
// run in its own goroutine, alongside WatchDropped.
func (r *Registry) WatchOccupancy(channel string, src OccupancySource, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.ArenaBytesUsed.WithLabelValues(channel).Set(float64(src.ArenaBytesInUse()))
			r.QueueDepth.WithLabelValues(channel).Set(float64(src.QueueDepth()))
		case <-stop:
			return
		}
	}
}
