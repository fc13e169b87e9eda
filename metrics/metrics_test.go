// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"

	"code.hybscloud.com/tracefab/metrics"
)

type fakeCounter struct{ n uint64 }

func (f *fakeCounter) DroppedCount() uint64 { return f.n }

type fakeOccupancy struct {
	arenaBytes uint32
	depth      int64
}

func (f *fakeOccupancy) ArenaBytesInUse() uint32 { return f.arenaBytes }
func (f *fakeOccupancy) QueueDepth() int64       { return f.depth }

func TestRegisterAll(t *testing.T) {
	reg := metrics.NewRegistry()
	promReg := prometheus.NewRegistry()
	if err := reg.RegisterAll(promReg); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
}

func TestWatchDroppedPublishesDeltaToEvents(t *testing.T) {
	reg := metrics.NewRegistry()
	counter := &fakeCounter{}
	stop := make(chan struct{})

	done := make(chan struct{})
	go func() {
		reg.WatchDropped("test-channel", counter, reg.DroppedEvents, 5*time.Millisecond, stop)
		close(done)
	}()

	counter.n = 3
	time.Sleep(30 * time.Millisecond)
	close(stop)
	<-done

	assertCounterValue(t, reg.DroppedEvents, "test-channel", 3)
}

func TestWatchDroppedPublishesDeltaToSamples(t *testing.T) {
	reg := metrics.NewRegistry()
	counter := &fakeCounter{}
	stop := make(chan struct{})

	done := make(chan struct{})
	go func() {
		reg.WatchDropped("sample-channel", counter, reg.DroppedSamples, 5*time.Millisecond, stop)
		close(done)
	}()

	counter.n = 5
	time.Sleep(30 * time.Millisecond)
	close(stop)
	<-done

	// DroppedSamples, not DroppedEvents, must carry the published delta:
	// this is the class of bug a hardcoded target vec would hide.
	assertCounterValue(t, reg.DroppedSamples, "sample-channel", 5)
	if v, err := reg.DroppedEvents.GetMetricWithLabelValues("sample-channel"); err == nil {
		m := &io_prometheus_client.Metric{}
		if writeErr := v.Write(m); writeErr == nil && m.GetCounter().GetValue() != 0 {
			t.Fatalf("dropped_events_total leaked a sample-channel delta: %v", m.GetCounter().GetValue())
		}
	}
}

func TestWatchOccupancyPublishesGauges(t *testing.T) {
	reg := metrics.NewRegistry()
	src := &fakeOccupancy{}
	stop := make(chan struct{})

	done := make(chan struct{})
	go func() {
		reg.WatchOccupancy("test-channel", src, 5*time.Millisecond, stop)
		close(done)
	}()

	src.arenaBytes = 4096
	src.depth = 7
	time.Sleep(30 * time.Millisecond)
	close(stop)
	<-done

	assertGaugeValue(t, reg.ArenaBytesUsed, "test-channel", 4096)
	assertGaugeValue(t, reg.QueueDepth, "test-channel", 7)
}

func assertCounterValue(t *testing.T, vec *prometheus.CounterVec, label string, want float64) {
	t.Helper()
	metric, err := vec.GetMetricWithLabelValues(label)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues(%q): %v", label, err)
	}
	m := &io_prometheus_client.Metric{}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := m.GetCounter().GetValue(); got != want {
		t.Fatalf("counter[%q] = %v, want %v", label, got, want)
	}
}

func assertGaugeValue(t *testing.T, vec *prometheus.GaugeVec, label string, want float64) {
	t.Helper()
	metric, err := vec.GetMetricWithLabelValues(label)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues(%q): %v", label, err)
	}
	m := &io_prometheus_client.Metric{}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := m.GetGauge().GetValue(); got != want {
		t.Fatalf("gauge[%q] = %v, want %v", label, got, want)
	}
}
