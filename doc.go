// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tracefab provides a low-overhead structured diagnostics fabric:
// typed event occurrences and fixed-schema samples, carried over a
// lock-free descriptor queue and a circular byte arena, with pluggable
// sinks and formatters.
//
// # Events vs samples
//
// An EventChannel carries discrete, variadic occurrences tied to a call
// site (EventSite): each site's attributes (message format, file, line,
// argument count) are registered once, lazily, on first use, then every
// subsequent occurrence only carries argument values.
//
// A SampleChannel carries fixed-schema tuples: the schema is fixed for
// the channel's lifetime and published once to the consumer, after which
// every LogSample call is checked against it.
//
// # Quick start
//
//	sk := sink.NewStream(os.Stdout)
//	ch, err := tracefab.NewEventChannel(sk, format.PlainText{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var site = tracefab.NewEventSite("request failed: {}", 1)
//
//	func handle(err error) {
//		ch.LogEvent(site, tracefab.ArgString(err.Error()))
//	}
//
//	// On the consumer side, typically its own goroutine. ProcessLoop
//	// returns once the queue is empty, so the goroutine calls it again:
//	go func() {
//		for {
//			if err := ch.ProcessLoop(); err != nil {
//				log.Print(err)
//				return
//			}
//			runtime.Gosched()
//		}
//	}()
//
// # Backpressure
//
// Every channel is constructed with an OverflowPolicy (WithOverflowPolicy):
// PolicyBlock spins until room is available, PolicyDrop counts and
// discards, PolicyFail returns ErrArenaFull/ErrQueueFull immediately.
// Producers never block indefinitely under any policy but Block.
//
// # Network transport
//
// Package net carries the same events and samples over UDP using a
// bit-exact wire format (marked attribute and occurrence frames, a
// once-only schema frame for samples); package format's formatters and
// package sink's sinks are shared between the in-process and network
// paths. Command tracefab-relay wires a UDP listener straight to a
// configured sink and formatter.
package tracefab
