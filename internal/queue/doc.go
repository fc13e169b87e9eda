// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package queue provides bounded lock-free FIFO queue implementations used
// by the channel layer to hand event and sample descriptors from producer
// goroutines to the consumer goroutine without blocking on a mutex.
//
// Two variants are provided, matching the producer/consumer patterns the
// channel layer actually needs:
//
//   - SPSC: Single-Producer Single-Consumer (default channel configuration)
//   - MPSC: Multi-Producer Single-Consumer (WithMultiProducer)
//
// # Basic Usage
//
// Both queues share the same Enqueue/Dequeue interface:
//
//	q := queue.NewSPSC[Event](1024)
//
//	// Enqueue (non-blocking)
//	value := Event{}
//	err := q.Enqueue(&value)
//	if queue.IsWouldBlock(err) {
//	    // Queue is full - handle backpressure
//	}
//
//	// Dequeue (non-blocking)
//	elem, err := q.Dequeue()
//	if queue.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// # Pipeline Stage (SPSC)
//
//	q := queue.NewSPSC[Data](1024)
//
//	go func() { // Producer
//	    backoff := iox.Backoff{}
//	    for data := range input {
//	        for q.Enqueue(&data) != nil {
//	            backoff.Wait()
//	        }
//	        backoff.Reset()
//	    }
//	}()
//
//	go func() { // Consumer
//	    backoff := iox.Backoff{}
//	    for {
//	        data, err := q.Dequeue()
//	        if err != nil {
//	            backoff.Wait()
//	            continue
//	        }
//	        backoff.Reset()
//	        process(data)
//	    }
//	}()
//
// # Event Aggregation (MPSC)
//
//	q := queue.NewMPSC[Event](4096)
//
//	for sensor := range slices.Values(sensors) {
//	    go func(s Sensor) {
//	        for ev := range s.Events() {
//	            q.Enqueue(&ev)
//	        }
//	    }(sensor)
//	}
//
//	go func() {
//	    for {
//	        ev, err := q.Dequeue()
//	        if err == nil {
//	            aggregate(ev)
//	        }
//	    }
//	}()
//
// # Algorithms
//
//	SPSC: Lamport ring buffer with cached-index optimization (n slots).
//	MPSC: FAA-based SCQ-style algorithm (2n physical slots for capacity n).
//
// # Capacity
//
// Capacity rounds up to the next power of 2. Minimum capacity is 2.
// Panics if capacity < 2.
//
// Length is intentionally not provided because accurate counts in lock-free
// algorithms require expensive cross-core synchronization. Track counts in
// application logic when needed.
//
// # Thread Safety
//
//   - SPSC: one producer goroutine, one consumer goroutine.
//   - MPSC: multiple producer goroutines, one consumer goroutine.
//
// Violating these constraints (e.g., multiple producers on SPSC) causes
// undefined behavior including data corruption and races.
//
// # Graceful Shutdown
//
// MPSC implements [Drainer]; its Drain records a drain flag that its
// Dequeue does not consult, so it is a shutdown hint only. SPSC does not
// implement Drainer.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channels, WaitGroup) but cannot observe happens-before relationships
// established through atomic memory orderings. These algorithms use
// sequence numbers with acquire-release semantics to protect non-atomic
// data fields. The RaceEnabled constant reports whether the race detector
// is active; none of this package's tests currently consult it.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit memory
// ordering, and [code.hybscloud.com/spin] for CPU pause instructions in
// MPSC's producer retry loop.
package queue
